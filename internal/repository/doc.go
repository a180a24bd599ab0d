// Package repository defines the data access interface for campusnet.
//
// The Repository interface covers everything the graph service persists:
// buildings (nodes), candidate connections (edges) and the last computed
// spanning tree. The implementation lives in the sqlite subpackage.
//
// # SQLite Implementation
//
// The sqlite implementation uses the pure Go modernc.org/sqlite driver with
// WAL mode. It handles:
//
// - CRUD operations for nodes and edges
// - Insertion order via an autoincrement seq column, so reloads hand the
//   solver edges in the same order they were created
// - Cascade deletes of edges when a node is removed
// - Transactional bulk replacement for imports
// - JSON metadata for the stored spanning tree and the last bulk import time
//
// # Schema Migration
//
// The schema is migrated on startup, adding new columns as needed while
// preserving existing data.
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
