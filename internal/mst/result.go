package mst

import "campusnet/internal/domain"

// Result is a minimum spanning tree (or forest) and its cost.
//
// Tree holds copies of the accepted edges in acceptance order, which is
// ascending weight with ties in input order. It is never nil.
type Result struct {
	Tree      []domain.Edge
	TotalCost domain.Weight
}

// Spanning reports whether the tree connects all nodeCount nodes
func (r *Result) Spanning(nodeCount int) bool {
	if nodeCount <= 1 {
		return len(r.Tree) == 0
	}
	return len(r.Tree) == nodeCount-1
}

// Components returns the number of connected components among nodeCount
// nodes. Each accepted edge merges two components.
func (r *Result) Components(nodeCount int) int {
	return nodeCount - len(r.Tree)
}
