package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"campusnet/internal/service"
)

func TestWatcherDetectsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "campus.yaml")
	if err := os.WriteFile(path, []byte("nodes: []\n"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	other := filepath.Join(dir, "notes.txt")

	changed := make(chan string, 10)
	w := New(func(p string) { changed <- p }, path).WithDebounce(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- w.Watch(ctx) }()

	// Give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(other, []byte("ignored"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("nodes: []\nedges: []\n"), 0o644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
	}

	want, _ := filepath.Abs(path)
	select {
	case got := <-changed:
		if got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change notification")
	}

	// Rapid writes collapse into one call
	select {
	case got := <-changed:
		t.Errorf("unexpected second notification for %s", got)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestWatcherMissingDirectory(t *testing.T) {
	w := New(func(string) {}, filepath.Join(t.TempDir(), "missing", "campus.json"))
	if err := w.Watch(context.Background()); err == nil {
		t.Error("expected error for a missing directory")
	}
}

type fakeImporter struct {
	paths    []string
	strategy string
	err      error
}

func (f *fakeImporter) ImportFile(ctx context.Context, path, strategy string) (*service.ImportResult, error) {
	f.paths = append(f.paths, path)
	f.strategy = strategy
	if f.err != nil {
		return nil, f.err
	}
	return &service.ImportResult{NodesCreated: 5, EdgesCreated: 7, Strategy: strategy}, nil
}

func TestImportOnChange(t *testing.T) {
	imp := &fakeImporter{}
	onChange := ImportOnChange(context.Background(), imp, service.StrategyReplace)

	onChange("/srv/campus.yaml")
	imp.err = errors.New("bad file")
	onChange("/srv/campus.yaml")

	if len(imp.paths) != 2 || imp.strategy != service.StrategyReplace {
		t.Errorf("unexpected calls %v with strategy %q", imp.paths, imp.strategy)
	}
}
