package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"campusnet/internal/domain"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// seedRepo stores the sample campus and returns it
func seedRepo(t *testing.T, repo *Repository) *domain.GraphFragment {
	t.Helper()
	sample := domain.SampleCampus()
	assertNoError(t, repo.ReplaceGraph(context.Background(), sample))
	return sample
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

// ============================================================================
// Helper Function Tests
// ============================================================================

func TestNullFloatConversions(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p := nullToFloatPtr(sql.NullFloat64{Float64: 40.8, Valid: true})
		if p == nil || *p != 40.8 {
			t.Fatalf("expected 40.8, got %v", p)
		}
		assertEqual(t, sql.NullFloat64{Float64: 40.8, Valid: true}, floatPtrToNull(p))
	})

	t.Run("null", func(t *testing.T) {
		if p := nullToFloatPtr(sql.NullFloat64{}); p != nil {
			t.Fatalf("expected nil, got %v", *p)
		}
		assertEqual(t, sql.NullFloat64{}, floatPtrToNull(nil))
	})
}

func TestMarshalToNull(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		v, err := marshalToNull(nil)
		assertNoError(t, err)
		assertEqual(t, sql.NullString{}, v)
	})

	t.Run("value", func(t *testing.T) {
		v, err := marshalToNull(map[string]int{"a": 1})
		assertNoError(t, err)
		assertEqual(t, sql.NullString{String: `{"a":1}`, Valid: true}, v)
	})
}

func TestUnmarshalJSONField(t *testing.T) {
	var target map[string]any
	assertNoError(t, unmarshalJSONField(sql.NullString{}, &target))
	if target != nil {
		t.Fatalf("expected untouched target, got %v", target)
	}

	if err := unmarshalJSONField(sql.NullString{String: `{invalid}`, Valid: true}, &target); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

// ============================================================================
// Row Scanner Tests
// ============================================================================

func TestNodeRowToDomain(t *testing.T) {
	t.Run("with location", func(t *testing.T) {
		row := nodeRow{
			ID:   "1",
			Name: "Butler Library",
			Lat:  sql.NullFloat64{Float64: 40.8064, Valid: true},
			Lng:  sql.NullFloat64{Float64: -73.9631, Valid: true},
		}
		node := row.toDomain()
		assertEqual(t, "1", node.ID)
		assertEqual(t, "Butler Library", node.Name)
		if !node.HasLocation() || *node.Lat != 40.8064 || *node.Lng != -73.9631 {
			t.Fatalf("unexpected location %v %v", node.Lat, node.Lng)
		}
	})

	t.Run("without location", func(t *testing.T) {
		row := nodeRow{ID: "2", Name: "Annex"}
		node := row.toDomain()
		if node.HasLocation() {
			t.Fatal("expected no location")
		}
	})
}

func TestEdgeRowToDomain(t *testing.T) {
	row := edgeRow{ID: "1-2", SourceID: "1", TargetID: "2", Weight: 250}
	assertEqual(t, domain.Edge{ID: "1-2", Source: "1", Target: "2", Weight: 250}, row.toDomain())
}

// ============================================================================
// Node Tests
// ============================================================================

func TestUpsertAndGetNode(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	node := domain.NewNode("hall", "Hall")
	node.SetLocation(1.5, 2.5)
	assertNoError(t, repo.UpsertNode(ctx, node))

	got, err := repo.GetNode(ctx, "hall")
	assertNoError(t, err)
	assertEqual(t, *node, *got)

	t.Run("update keeps order", func(t *testing.T) {
		assertNoError(t, repo.UpsertNode(ctx, domain.NewNode("annex", "Annex")))
		node.Name = "Great Hall"
		node.Lat, node.Lng = nil, nil
		assertNoError(t, repo.UpsertNode(ctx, node))

		nodes, err := repo.ListNodes(ctx)
		assertNoError(t, err)
		assertEqual(t, 2, len(nodes))
		assertEqual(t, "hall", nodes[0].ID)
		assertEqual(t, "Great Hall", nodes[0].Name)
		if nodes[0].HasLocation() {
			t.Fatal("expected location to be cleared")
		}
	})

	t.Run("missing returns nil", func(t *testing.T) {
		got, err := repo.GetNode(ctx, "nope")
		assertNoError(t, err)
		if got != nil {
			t.Fatalf("expected nil, got %+v", got)
		}
	})
}

func TestDeleteNodeCascades(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedRepo(t, repo)

	assertNoError(t, repo.DeleteNode(ctx, "3"))

	edges, err := repo.ListEdges(ctx)
	assertNoError(t, err)
	for _, e := range edges {
		if e.Connects("3") {
			t.Fatalf("edge %s should have been removed with node 3", e.ID)
		}
	}
	assertEqual(t, 3, len(edges))

	nodes, err := repo.ListNodes(ctx)
	assertNoError(t, err)
	assertEqual(t, 4, len(nodes))
}

// ============================================================================
// Edge Tests
// ============================================================================

func TestEdgeCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedRepo(t, repo)

	t.Run("get", func(t *testing.T) {
		e, err := repo.GetEdge(ctx, "2-4")
		assertNoError(t, err)
		assertEqual(t, domain.Weight(120), e.Weight)
	})

	t.Run("update weight", func(t *testing.T) {
		e, err := repo.GetEdge(ctx, "2-4")
		assertNoError(t, err)
		e.Weight = 999
		assertNoError(t, repo.UpsertEdge(ctx, e))

		edges, err := repo.ListEdges(ctx)
		assertNoError(t, err)
		assertEqual(t, "2-4", edges[3].ID)
		assertEqual(t, domain.Weight(999), edges[3].Weight)
	})

	t.Run("delete", func(t *testing.T) {
		assertNoError(t, repo.DeleteEdge(ctx, "2-4"))
		e, err := repo.GetEdge(ctx, "2-4")
		assertNoError(t, err)
		if e != nil {
			t.Fatalf("expected edge to be deleted, got %+v", e)
		}
	})

	t.Run("unknown endpoint violates foreign key", func(t *testing.T) {
		err := repo.UpsertEdge(ctx, domain.NewEdge("1", "ghost", 1))
		if err == nil {
			t.Fatal("expected foreign key error")
		}
	})
}

// ============================================================================
// Whole Graph Tests
// ============================================================================

func TestReplaceGraphPreservesOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	sample := seedRepo(t, repo)

	fragment, err := repo.LoadFragment(ctx)
	assertNoError(t, err)
	assertEqual(t, sample.Nodes, fragment.Nodes)
	assertEqual(t, sample.Edges, fragment.Edges)
	assertEqual(t, sample.Fingerprint(), fragment.Fingerprint())

	last, err := repo.LastImport(ctx)
	assertNoError(t, err)
	if last == nil || time.Since(*last) > time.Minute {
		t.Fatalf("expected a recent import timestamp, got %v", last)
	}
}

func TestReplaceGraphRollsBack(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedRepo(t, repo)

	bad := domain.NewGraphFragment()
	bad.AddNode(*domain.NewNode("a", "A"))
	bad.AddEdge(*domain.NewEdge("a", "missing", 1))

	if err := repo.ReplaceGraph(ctx, bad); err == nil {
		t.Fatal("expected error for dangling edge")
	}

	nodes, err := repo.ListNodes(ctx)
	assertNoError(t, err)
	assertEqual(t, 5, len(nodes))
}

func TestClearGraph(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedRepo(t, repo)

	assertNoError(t, repo.SaveTree(ctx, &domain.StoredTree{Fingerprint: "x", Tree: []domain.Edge{}}))
	assertNoError(t, repo.ClearGraph(ctx))

	fragment, err := repo.LoadFragment(ctx)
	assertNoError(t, err)
	assertEqual(t, 0, len(fragment.Nodes))
	assertEqual(t, 0, len(fragment.Edges))

	tree, err := repo.GetTree(ctx)
	assertNoError(t, err)
	if tree != nil {
		t.Fatalf("expected stored tree to be cleared, got %+v", tree)
	}
}

func TestStoredTree(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	sample := seedRepo(t, repo)

	t.Run("none saved", func(t *testing.T) {
		tree, err := repo.GetTree(ctx)
		assertNoError(t, err)
		if tree != nil {
			t.Fatalf("expected nil, got %+v", tree)
		}
	})

	computed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	stored := &domain.StoredTree{
		Fingerprint: sample.Fingerprint(),
		Tree:        []domain.Edge{sample.Edges[5], sample.Edges[4]},
		TotalCost:   190,
		ComputedAt:  computed,
	}
	assertNoError(t, repo.SaveTree(ctx, stored))

	t.Run("round trip", func(t *testing.T) {
		got, err := repo.GetTree(ctx)
		assertNoError(t, err)
		assertEqual(t, stored.Fingerprint, got.Fingerprint)
		assertEqual(t, stored.Tree, got.Tree)
		assertEqual(t, stored.TotalCost, got.TotalCost)
		if !got.ComputedAt.Equal(computed) {
			t.Fatalf("expected %v, got %v", computed, got.ComputedAt)
		}
	})

	t.Run("attached when fingerprint matches", func(t *testing.T) {
		fragment, err := repo.LoadFragment(ctx)
		assertNoError(t, err)
		assertEqual(t, 2, len(fragment.MST))
		assertEqual(t, domain.Weight(190), *fragment.TotalCost)
	})

	t.Run("ignored once graph changes", func(t *testing.T) {
		assertNoError(t, repo.DeleteEdge(ctx, "1-3"))
		fragment, err := repo.LoadFragment(ctx)
		assertNoError(t, err)
		if fragment.MST != nil || fragment.TotalCost != nil {
			t.Fatal("expected stale tree to be ignored")
		}
	})
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campus.db")
	ctx := context.Background()

	repo, err := New(path)
	assertNoError(t, err)
	sample := seedRepo(t, repo)
	assertNoError(t, repo.Close())

	repo, err = New(path)
	assertNoError(t, err)
	defer repo.Close()

	fragment, err := repo.LoadFragment(ctx)
	assertNoError(t, err)
	assertEqual(t, sample.Fingerprint(), fragment.Fingerprint())
}
