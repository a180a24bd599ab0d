package domain

import "time"

// StoredTree is the last spanning tree computed for the stored graph, keyed
// by the fingerprint of the graph it was computed for
type StoredTree struct {
	Fingerprint string    `json:"fingerprint"`
	Tree        []Edge    `json:"tree"`
	TotalCost   Weight    `json:"total_cost"`
	ComputedAt  time.Time `json:"computed_at"`
}
