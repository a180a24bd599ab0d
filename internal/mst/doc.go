// Package mst computes minimum spanning trees of campus networks.
//
// Compute runs Kruskal's algorithm: edges are stable-sorted by weight and
// accepted in ascending order whenever they join two different components,
// tracked with a DisjointSet. When the graph is disconnected the result is a
// minimum spanning forest. The package is pure: it keeps no state between
// calls and never modifies its inputs, so a single Compute call may run
// concurrently with any number of others.
package mst
