// Package service implements the business logic of campusnet.
//
// This package sits between the HTTP handlers (and the CLI) and the
// repository, implementing validation, caching and event publishing.
//
// # Services
//
// Optimizer is the stateless adapter around the spanning tree engine. It
// serves POST /api/optimize and the solve command: callers hand it nodes and
// edges and get back the minimum spanning tree and its cost.
//
// GraphService manages the stored campus graph: building and connection
// CRUD, import/export through the codec package, the sample campus, and the
// spanning tree of the stored graph, cached by graph fingerprint.
//
// # Event System
//
// GraphService publishes events via EventBus for real-time updates to
// connected clients over Server-Sent Events and WebSocket. Event types
// cover node and edge changes, bulk graph updates and network_optimized.
package service
