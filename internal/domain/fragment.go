package domain

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"lukechampine.com/blake3"
)

// GraphFragment represents a graph document for import/export operations.
// MST and TotalCost carry the last computed spanning tree when exporting.
type GraphFragment struct {
	Nodes     []Node     `json:"nodes"`
	Edges     []Edge     `json:"edges"`
	MST       []Edge     `json:"mst,omitempty"`
	TotalCost *Weight    `json:"total_cost,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// NewGraphFragment creates an empty graph fragment
func NewGraphFragment() *GraphFragment {
	return &GraphFragment{
		Nodes: make([]Node, 0),
		Edges: make([]Edge, 0),
	}
}

// AddNode adds a node to the fragment
func (g *GraphFragment) AddNode(node Node) {
	g.Nodes = append(g.Nodes, node)
}

// AddEdge adds an edge to the fragment
func (g *GraphFragment) AddEdge(edge Edge) {
	g.Edges = append(g.Edges, edge)
}

// SetTree attaches a computed spanning tree to the fragment
func (g *GraphFragment) SetTree(tree []Edge, total Weight) {
	g.MST = make([]Edge, len(tree))
	copy(g.MST, tree)
	g.TotalCost = &total
}

// Validate checks the fragment could be loaded into a Network and reports
// every problem found rather than stopping at the first.
func (g *GraphFragment) Validate() error {
	var result *multierror.Error

	nodes := make(map[string]struct{}, len(g.Nodes))
	for i, node := range g.Nodes {
		if err := node.Validate(); err != nil {
			result = multierror.Append(result, fmt.Errorf("node #%d: %w", i, err))
			continue
		}
		if _, dup := nodes[node.ID]; dup {
			result = multierror.Append(result, fmt.Errorf("node %s: %w", node.ID, ErrAlreadyExists))
			continue
		}
		nodes[node.ID] = struct{}{}
	}

	edgeIDs := make(map[string]struct{}, len(g.Edges))
	pairs := make(map[string]string, len(g.Edges))
	for i, edge := range g.Edges {
		id := edge.ID
		if id == "" {
			id = fmt.Sprintf("#%d", i)
		} else if _, dup := edgeIDs[id]; dup {
			result = multierror.Append(result, fmt.Errorf("edge %s: %w", id, ErrAlreadyExists))
		} else {
			edgeIDs[id] = struct{}{}
		}

		if edge.IsSelfLoop() {
			result = multierror.Append(result, fmt.Errorf("edge %s: %w", id, ErrSelfLoop))
			continue
		}
		if _, ok := nodes[edge.Source]; !ok {
			result = multierror.Append(result, fmt.Errorf("edge %s source %q: %w", id, edge.Source, ErrNotFound))
		}
		if _, ok := nodes[edge.Target]; !ok {
			result = multierror.Append(result, fmt.Errorf("edge %s target %q: %w", id, edge.Target, ErrNotFound))
		}
		if first, dup := pairs[edge.PairKey()]; dup {
			result = multierror.Append(result, fmt.Errorf("edge %s duplicates %s: %w", id, first, ErrDuplicatePair))
		} else {
			pairs[edge.PairKey()] = id
		}
	}

	return result.ErrorOrNil()
}

// Fingerprint returns a stable digest of the nodes and edges in order. The
// tree, cost and timestamp are not part of it.
func (g *GraphFragment) Fingerprint() string {
	h := blake3.New(32, nil)
	for _, n := range g.Nodes {
		fmt.Fprintf(h, "n\x00%s\x00%s\x00%s\x00%s\n", n.ID, n.Name, formatCoord(n.Lat), formatCoord(n.Lng))
	}
	for _, e := range g.Edges {
		fmt.Fprintf(h, "e\x00%s\x00%s\x00%s\x00%d\n", e.ID, e.Source, e.Target, e.Weight)
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

func formatCoord(c *float64) string {
	if c == nil {
		return "-"
	}
	return strconv.FormatFloat(*c, 'g', -1, 64)
}
