package domain

import (
	"testing"
)

func TestNewNode(t *testing.T) {
	t.Run("creates node with given ID", func(t *testing.T) {
		node := NewNode("lib", "Library")

		if node.ID != "lib" {
			t.Errorf("expected ID 'lib', got %s", node.ID)
		}
		if node.Name != "Library" {
			t.Errorf("expected name 'Library', got %s", node.Name)
		}
		if node.HasLocation() {
			t.Error("expected new node to have no location")
		}
	})

	t.Run("generates ID when empty", func(t *testing.T) {
		a := NewNode("", "A")
		b := NewNode("", "B")

		if a.ID == "" {
			t.Error("expected ID to be generated")
		}
		if a.ID == b.ID {
			t.Error("expected generated IDs to be unique")
		}
	})
}

func TestDefaultNodeName(t *testing.T) {
	if got := DefaultNodeName(0); got != "Building 1" {
		t.Errorf("expected 'Building 1', got %s", got)
	}
	if got := DefaultNodeName(4); got != "Building 5" {
		t.Errorf("expected 'Building 5', got %s", got)
	}
}

func TestNodeLocation(t *testing.T) {
	t.Run("set location", func(t *testing.T) {
		node := NewNode("a", "A")
		node.SetLocation(40.8, -73.9)

		if !node.HasLocation() {
			t.Fatal("expected node to have location")
		}
		if *node.Lat != 40.8 || *node.Lng != -73.9 {
			t.Errorf("unexpected coordinates %v,%v", *node.Lat, *node.Lng)
		}
	})

	t.Run("partial location is not a location", func(t *testing.T) {
		lat := 1.0
		node := Node{ID: "a", Lat: &lat}
		if node.HasLocation() {
			t.Error("expected node with only latitude to have no location")
		}
	})
}

func TestNodeClone(t *testing.T) {
	node := NewNode("a", "A")
	node.SetLocation(1, 2)

	clone := node.Clone()
	*clone.Lat = 99
	clone.Name = "Changed"

	if *node.Lat != 1 {
		t.Error("expected clone to own its coordinates")
	}
	if node.Name != "A" {
		t.Error("expected clone to be independent of original")
	}
}

func TestNodeValidate(t *testing.T) {
	if err := (Node{ID: "x"}).Validate(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := (Node{Name: "no id"}).Validate(); err == nil {
		t.Error("expected error for empty ID")
	}
}
