package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
)

func TestNewGraphFragment(t *testing.T) {
	f := NewGraphFragment()
	if f.Nodes == nil || f.Edges == nil {
		t.Fatal("expected initialized collections")
	}
	if len(f.Nodes) != 0 || len(f.Edges) != 0 {
		t.Error("expected empty fragment")
	}
}

func TestGraphFragmentValidate(t *testing.T) {
	t.Run("sample campus is valid", func(t *testing.T) {
		if err := SampleCampus().Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("empty fragment is valid", func(t *testing.T) {
		if err := NewGraphFragment().Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("reports every problem", func(t *testing.T) {
		f := NewGraphFragment()
		f.AddNode(*NewNode("a", "A"))
		f.AddNode(*NewNode("a", "A again"))
		f.AddNode(Node{Name: "no id"})
		f.AddNode(*NewNode("b", "B"))
		f.AddEdge(*NewEdge("a", "a", 1))
		f.AddEdge(*NewEdge("a", "ghost", 1))
		f.AddEdge(*NewEdge("a", "b", 1))
		f.AddEdge(*NewEdge("b", "a", 2))

		err := f.Validate()
		if err == nil {
			t.Fatal("expected validation error")
		}

		var merr *multierror.Error
		if !errors.As(err, &merr) {
			t.Fatalf("expected multierror, got %T", err)
		}
		if len(merr.Errors) != 5 {
			t.Errorf("expected 5 problems, got %d: %v", len(merr.Errors), err)
		}

		for _, target := range []error{ErrAlreadyExists, ErrInvalidNode, ErrSelfLoop, ErrNotFound, ErrDuplicatePair} {
			if !errors.Is(err, target) {
				t.Errorf("expected error to contain %v", target)
			}
		}
	})

	t.Run("duplicate edge IDs", func(t *testing.T) {
		f := NewGraphFragment()
		f.AddNode(*NewNode("a", "A"))
		f.AddNode(*NewNode("b", "B"))
		f.AddNode(*NewNode("c", "C"))
		f.AddEdge(Edge{ID: "x", Source: "a", Target: "b"})
		f.AddEdge(Edge{ID: "x", Source: "b", Target: "c"})

		err := f.Validate()
		if !errors.Is(err, ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
		if !strings.Contains(err.Error(), "edge x") {
			t.Errorf("expected message to name edge x, got %v", err)
		}
	})
}

func TestGraphFragmentFingerprint(t *testing.T) {
	t.Run("identical content gives identical fingerprint", func(t *testing.T) {
		if SampleCampus().Fingerprint() != SampleCampus().Fingerprint() {
			t.Error("expected stable fingerprint")
		}
	})

	t.Run("tree does not change fingerprint", func(t *testing.T) {
		f := SampleCampus()
		before := f.Fingerprint()
		f.SetTree(f.Edges[:2], 10)
		if f.Fingerprint() != before {
			t.Error("expected fingerprint to ignore tree")
		}
	})

	t.Run("weight change changes fingerprint", func(t *testing.T) {
		f := SampleCampus()
		before := f.Fingerprint()
		f.Edges[0].Weight++
		if f.Fingerprint() == before {
			t.Error("expected fingerprint to change with weight")
		}
	})

	t.Run("edge order changes fingerprint", func(t *testing.T) {
		f := SampleCampus()
		before := f.Fingerprint()
		f.Edges[0], f.Edges[1] = f.Edges[1], f.Edges[0]
		if f.Fingerprint() == before {
			t.Error("expected fingerprint to depend on edge order")
		}
	})
}

func TestGraphFragmentSetTree(t *testing.T) {
	f := SampleCampus()
	tree := []Edge{f.Edges[0]}
	f.SetTree(tree, 250)

	tree[0].Weight = 1
	if f.MST[0].Weight != 250 {
		t.Error("expected SetTree to copy edges")
	}
	if f.TotalCost == nil || *f.TotalCost != 250 {
		t.Errorf("expected total cost 250, got %v", f.TotalCost)
	}
}
