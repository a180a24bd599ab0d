package codec

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"campusnet/internal/domain"
)

func TestForFormat(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"json", "json"},
		{"JSON", "json"},
		{"yaml", "yaml"},
		{"yml", "yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			c, err := ForFormat(tt.format)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Format() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, c.Format())
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		if _, err := ForFormat("xml"); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("expected ErrUnknownFormat, got %v", err)
		}
	})
}

func TestForPath(t *testing.T) {
	c, err := ForPath("/tmp/campus.yml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Format() != "yaml" {
		t.Errorf("expected yaml, got %s", c.Format())
	}
	if ContentType(c) != "application/x-yaml" {
		t.Errorf("unexpected content type %s", ContentType(c))
	}

	if _, err := ForPath("campus.txt"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, c := range []Codec{NewJSONCodec(), NewYAMLCodec()} {
		t.Run(c.Format(), func(t *testing.T) {
			sample := domain.SampleCampus()
			sample.SetTree(sample.Edges[:2], 650)

			var buf bytes.Buffer
			if err := c.Export(sample, &buf); err != nil {
				t.Fatalf("export failed: %v", err)
			}

			parsed, err := c.Parse(&buf)
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}

			if !reflect.DeepEqual(sample.Nodes, parsed.Nodes) {
				t.Errorf("nodes differ:\n%+v\n%+v", sample.Nodes, parsed.Nodes)
			}
			if !reflect.DeepEqual(sample.Edges, parsed.Edges) {
				t.Errorf("edges differ:\n%+v\n%+v", sample.Edges, parsed.Edges)
			}
			if parsed.Fingerprint() != sample.Fingerprint() {
				t.Error("expected identical fingerprint after round trip")
			}
		})
	}
}

func TestJSONParse(t *testing.T) {
	c := NewJSONCodec()

	t.Run("fills edge IDs and normalizes weights", func(t *testing.T) {
		doc := `{"nodes":[{"id":"a","name":"A"},{"id":"b","name":"B"}],
			"edges":[{"source":"a","target":"b","weight":"12.9"}]}`
		f, err := c.Parse(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Edges[0].ID != "a-b" {
			t.Errorf("expected generated ID a-b, got %q", f.Edges[0].ID)
		}
		if f.Edges[0].Weight != 12 {
			t.Errorf("expected weight 12, got %d", f.Edges[0].Weight)
		}
	})

	t.Run("missing weight", func(t *testing.T) {
		doc := `{"nodes":[],"edges":[{"id":"x","source":"a","target":"b"}]}`
		_, err := c.Parse(strings.NewReader(doc))
		if !errors.Is(err, domain.ErrInvalidWeight) || !errors.Is(err, ErrParse) {
			t.Errorf("expected ErrInvalidWeight and ErrParse, got %v", err)
		}
	})

	t.Run("null collections", func(t *testing.T) {
		f, err := c.Parse(strings.NewReader(`{"nodes":null}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Nodes == nil || f.Edges == nil {
			t.Error("expected non-nil collections")
		}
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := c.Parse(strings.NewReader(`{"nodes":[`))
		if !errors.Is(err, ErrParse) {
			t.Errorf("expected ErrParse, got %v", err)
		}
	})
}

func TestYAMLParse(t *testing.T) {
	c := NewYAMLCodec()

	t.Run("campus document", func(t *testing.T) {
		doc := `
nodes:
  - id: lib
    name: Library
    lat: 40.8064
    lng: -73.9631
  - id: lab
    name: Lab
edges:
  - source: lib
    target: lab
    weight: 99.7
`
		f, err := c.Parse(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(f.Nodes) != 2 || !f.Nodes[0].HasLocation() || f.Nodes[1].HasLocation() {
			t.Fatalf("unexpected nodes %+v", f.Nodes)
		}
		want := domain.Edge{ID: "lib-lab", Source: "lib", Target: "lab", Weight: 99}
		if f.Edges[0] != want {
			t.Errorf("expected %+v, got %+v", want, f.Edges[0])
		}
	})

	t.Run("missing weight", func(t *testing.T) {
		doc := "edges:\n  - source: a\n    target: b\n"
		_, err := c.Parse(strings.NewReader(doc))
		if !errors.Is(err, domain.ErrInvalidWeight) || !errors.Is(err, ErrParse) {
			t.Errorf("expected ErrInvalidWeight and ErrParse, got %v", err)
		}
	})

	t.Run("non-numeric weight", func(t *testing.T) {
		doc := "edges:\n  - source: a\n    target: b\n    weight: far\n"
		_, err := c.Parse(strings.NewReader(doc))
		if !errors.Is(err, domain.ErrInvalidWeight) || !errors.Is(err, ErrParse) {
			t.Errorf("expected ErrInvalidWeight and ErrParse, got %v", err)
		}
	})

	t.Run("empty document", func(t *testing.T) {
		f, err := c.Parse(strings.NewReader(""))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(f.Nodes) != 0 || len(f.Edges) != 0 {
			t.Error("expected empty fragment")
		}
	})
}
