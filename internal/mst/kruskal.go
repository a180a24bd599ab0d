package mst

import (
	"sort"

	"campusnet/internal/domain"
)

// Compute returns the minimum spanning forest of the given nodes and edges
// using Kruskal's algorithm.
//
// Every edge endpoint must name a node, otherwise an error matching
// ErrUnknownNodeReference is returned and no tree is built. Self-loops and
// edges that would close a cycle are skipped. Parallel edges are considered
// independently. Negative weights are allowed. A total cost outside the int64
// range is an error matching ErrCostOverflow. Inputs are not modified.
func Compute(nodes []domain.Node, edges []domain.Edge) (*Result, error) {
	return ComputeWith(nodes, edges)
}

// ComputeWith is Compute with options
func ComputeWith(nodes []domain.Node, edges []domain.Edge, opts ...Option) (*Result, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if _, dup := index[n.ID]; dup {
			return nil, &DuplicateNodeError{NodeID: n.ID}
		}
		index[n.ID] = i
	}

	type candidate struct {
		edge   domain.Edge
		source int
		target int
	}
	candidates := make([]candidate, len(edges))
	for i, e := range edges {
		if e.Source == "" || e.Target == "" {
			return nil, &InvalidEdgeError{EdgeID: e.ID, Reason: "source and target are required"}
		}
		s, ok := index[e.Source]
		if !ok {
			return nil, &UnknownNodeError{EdgeID: e.ID, NodeID: e.Source, Field: "source"}
		}
		t, ok := index[e.Target]
		if !ok {
			return nil, &UnknownNodeError{EdgeID: e.ID, NodeID: e.Target, Field: "target"}
		}
		candidates[i] = candidate{edge: e, source: s, target: t}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].edge.Weight < candidates[j].edge.Weight
	})

	ds := NewDisjointSet(len(nodes))
	result := &Result{Tree: make([]domain.Edge, 0)}
	for _, c := range candidates {
		merged, err := ds.Union(c.source, c.target)
		if err != nil {
			return nil, err
		}
		if !merged {
			continue
		}
		total, ok := addCost(result.TotalCost, c.edge.Weight)
		if !ok {
			return nil, &CostOverflowError{EdgeID: c.edge.ID, Total: result.TotalCost, Weight: c.edge.Weight}
		}
		result.Tree = append(result.Tree, c.edge)
		result.TotalCost = total
	}

	if o.RequireConnected && !result.Spanning(len(nodes)) {
		return nil, ErrDisconnected
	}
	return result, nil
}

// addCost returns a+b and false if the sum overflows
func addCost(a, b domain.Weight) (domain.Weight, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}
