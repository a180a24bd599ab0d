package domain

import (
	"encoding/json"
	"fmt"
)

// Edge represents an undirected candidate connection between two nodes
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Weight Weight `json:"weight"`
}

// NewEdge creates a new edge with a generated ID
func NewEdge(source, target string, weight Weight) *Edge {
	edge := &Edge{
		Source: source,
		Target: target,
		Weight: weight,
	}
	edge.ID = edge.GenerateID()
	return edge
}

// GenerateID returns the conventional "<source>-<target>" identifier
func (e *Edge) GenerateID() string {
	return fmt.Sprintf("%s-%s", e.Source, e.Target)
}

// PairKey returns an order-independent key for the endpoints, so A-B and B-A
// map to the same connection.
func (e Edge) PairKey() string {
	from, to := e.Source, e.Target
	if from > to {
		from, to = to, from
	}
	return from + "\x00" + to
}

// IsSelfLoop reports whether the edge connects a node to itself
func (e Edge) IsSelfLoop() bool {
	return e.Source == e.Target
}

// Connects reports whether the edge touches the given node
func (e Edge) Connects(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// UnmarshalJSON decodes an edge and rejects a missing weight. Without this a
// missing field would silently decode as a zero cost.
func (e *Edge) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID     string          `json:"id"`
		Source string          `json:"source"`
		Target string          `json:"target"`
		Weight json.RawMessage `json:"weight"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var w Weight
	if err := w.UnmarshalJSON(raw.Weight); err != nil {
		return fmt.Errorf("edge %q: %w", raw.ID, err)
	}

	*e = Edge{
		ID:     raw.ID,
		Source: raw.Source,
		Target: raw.Target,
		Weight: w,
	}
	return nil
}
