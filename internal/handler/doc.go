// Package handler implements the HTTP API of the campus network planner.
//
// # Handlers
//
// OptimizeHandler serves POST /api/optimize, which computes the minimum
// spanning tree of the graph in the request body without storing anything.
//
// GraphHandler serves the stored graph: nodes, edges, import/export, the
// distance helper and optimization of the stored graph.
//
// # Response Format
//
// Success responses return JSON data with appropriate status codes (200, 201,
// 204). Error responses return JSON with {error, details} structure. Status
// codes are chosen from the error chain:
//
//   - 400 malformed body, invalid weight, invalid edge or node, duplicate node
//   - 404 unknown node or edge in a CRUD route
//   - 409 duplicate ID or endpoint pair
//   - 413 body larger than the configured limit
//   - 422 edge referencing an unknown node in /api/optimize
//   - 500 anything else
//
// # Middleware
//
// Chain composes Recover, Logger, Metrics, CORS and Gzip.
package handler
