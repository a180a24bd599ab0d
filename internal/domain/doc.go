// Package domain defines the core domain types for the campusnet network planner.
//
// This package contains the entities and value objects that describe a campus
// layout: buildings (nodes), candidate connections between them (edges) and
// the documents used to move a layout in and out of the system.
//
// # Core Types
//
// Node represents a building with a unique identifier, a display name and an
// optional latitude/longitude. Coordinates are only used to suggest connection
// costs; the spanning tree solver never looks at them.
//
// Edge represents an undirected candidate connection between two buildings
// with an integer Weight (cost).
//
// Weight is the normalized edge cost. All decoding paths (JSON, YAML, CLI
// input) go through ParseWeight, so fractional costs are truncated toward zero
// exactly once and malformed costs are rejected before they can reach any
// computation.
//
// # Graph State
//
// Network is the owned, concurrency-safe graph state for a planning session.
// It enforces the invariants the UI used to check ad hoc: no self-loops, no
// duplicate connection between the same pair of buildings, no dangling edges.
//
// Fragment is the import/export document: nodes, edges and optionally the
// last computed minimum spanning tree.
//
// # Geometry
//
// Distance computes great-circle distances between located nodes, and
// SuggestWeight rounds them to whole meters for use as a default edge cost.
package domain
