package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"campusnet/internal/domain"
	"campusnet/internal/repository"

	_ "modernc.org/sqlite"
)

const (
	metaKeyTree       = "mst"
	metaKeyLastImport = "last_import"
)

// Repository persists the campus graph in SQLite
type Repository struct {
	db *sql.DB
}

var _ repository.Repository = (*Repository)(nil)

// New opens (or creates) the database at dbPath and migrates the schema
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serializes writers and keeps ":memory:" databases
	// from being split across pooled connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS nodes (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS edges (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		source_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		weight INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (source_id) REFERENCES nodes(id) ON DELETE CASCADE,
		FOREIGN KEY (target_id) REFERENCES nodes(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value JSON NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);
	CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);
	`

	if _, err := r.db.Exec(schema); err != nil {
		return err
	}

	// Coordinates were added after the first release
	if err := r.addColumnIfNotExists("nodes", "lat", "REAL"); err != nil {
		return err
	}
	return r.addColumnIfNotExists("nodes", "lng", "REAL")
}

// addColumnIfNotExists adds a column to an existing table when missing
func (r *Repository) addColumnIfNotExists(table, column, definition string) error {
	rows, err := r.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return fmt.Errorf("failed to scan column info: %w", err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	if _, err := r.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition)); err != nil {
		return fmt.Errorf("failed to add column %s.%s: %w", table, column, err)
	}
	return nil
}

// ============================================================================
// Nodes
// ============================================================================

// ListNodes returns all nodes in insertion order
func (r *Repository) ListNodes(ctx context.Context) ([]domain.Node, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+nodeColumns+` FROM nodes ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	nodes := make([]domain.Node, 0)
	for rows.Next() {
		var row nodeRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		nodes = append(nodes, row.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}
	return nodes, nil
}

// GetNode retrieves a single node by ID. It returns nil, nil when missing.
func (r *Repository) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	var row nodeRow
	err := r.db.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE id = ?`, id).Scan(row.scanArgs()...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query node: %w", err)
	}

	node := row.toDomain()
	return &node, nil
}

// UpsertNode inserts a node or updates it in place, keeping its position in
// the ordering.
func (r *Repository) UpsertNode(ctx context.Context, node *domain.Node) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO nodes (id, name, lat, lng, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			lat = excluded.lat,
			lng = excluded.lng,
			updated_at = CURRENT_TIMESTAMP
	`, nodeInsertArgs(node)...)
	if err != nil {
		return fmt.Errorf("failed to upsert node: %w", err)
	}
	return nil
}

// DeleteNode removes a node and its edges
func (r *Repository) DeleteNode(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM edges WHERE source_id = ? OR target_id = ?`, id, id); err != nil {
		return fmt.Errorf("failed to delete edges of node: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ============================================================================
// Edges
// ============================================================================

// ListEdges returns all edges in insertion order
func (r *Repository) ListEdges(ctx context.Context) ([]domain.Edge, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+edgeColumns+` FROM edges ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	edges := make([]domain.Edge, 0)
	for rows.Next() {
		var row edgeRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		edges = append(edges, row.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating edges: %w", err)
	}
	return edges, nil
}

// GetEdge retrieves a single edge by ID. It returns nil, nil when missing.
func (r *Repository) GetEdge(ctx context.Context, id string) (*domain.Edge, error) {
	var row edgeRow
	err := r.db.QueryRowContext(ctx, `SELECT `+edgeColumns+` FROM edges WHERE id = ?`, id).Scan(row.scanArgs()...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query edge: %w", err)
	}

	edge := row.toDomain()
	return &edge, nil
}

// UpsertEdge inserts an edge or updates it in place
func (r *Repository) UpsertEdge(ctx context.Context, edge *domain.Edge) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO edges (id, source_id, target_id, weight, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			source_id = excluded.source_id,
			target_id = excluded.target_id,
			weight = excluded.weight,
			updated_at = CURRENT_TIMESTAMP
	`, edgeInsertArgs(edge)...)
	if err != nil {
		return fmt.Errorf("failed to upsert edge: %w", err)
	}
	return nil
}

// DeleteEdge removes an edge
func (r *Repository) DeleteEdge(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM edges WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete edge: %w", err)
	}
	return nil
}

// ============================================================================
// Whole graph
// ============================================================================

// LoadFragment returns the stored graph along with its last spanning tree
func (r *Repository) LoadFragment(ctx context.Context) (*domain.GraphFragment, error) {
	nodes, err := r.ListNodes(ctx)
	if err != nil {
		return nil, err
	}
	edges, err := r.ListEdges(ctx)
	if err != nil {
		return nil, err
	}

	fragment := &domain.GraphFragment{Nodes: nodes, Edges: edges}

	tree, err := r.GetTree(ctx)
	if err != nil {
		return nil, err
	}
	if tree != nil && tree.Fingerprint == fragment.Fingerprint() {
		fragment.SetTree(tree.Tree, tree.TotalCost)
		fragment.Timestamp = &tree.ComputedAt
	}

	return fragment, nil
}

// ReplaceGraph replaces all nodes and edges with the fragment contents in a
// single transaction. The stored tree is dropped.
func (r *Repository) ReplaceGraph(ctx context.Context, fragment *domain.GraphFragment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Order matters due to foreign keys
	for _, stmt := range []string{
		`DELETE FROM edges`,
		`DELETE FROM nodes`,
		`DELETE FROM metadata WHERE key = '` + metaKeyTree + `'`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear graph: %w", err)
		}
	}

	nodeStmt, err := tx.PrepareContext(ctx, `INSERT INTO nodes (id, name, lat, lng) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare node statement: %w", err)
	}
	defer nodeStmt.Close()

	for i := range fragment.Nodes {
		node := &fragment.Nodes[i]
		if _, err := nodeStmt.ExecContext(ctx, nodeInsertArgs(node)...); err != nil {
			return fmt.Errorf("failed to insert node %s: %w", node.ID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `INSERT INTO edges (id, source_id, target_id, weight) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare edge statement: %w", err)
	}
	defer edgeStmt.Close()

	for i := range fragment.Edges {
		edge := &fragment.Edges[i]
		if _, err := edgeStmt.ExecContext(ctx, edgeInsertArgs(edge)...); err != nil {
			return fmt.Errorf("failed to insert edge %s: %w", edge.ID, err)
		}
	}

	if err := setMetadata(ctx, tx, metaKeyLastImport, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ClearGraph removes all nodes, edges and the stored tree
func (r *Repository) ClearGraph(ctx context.Context) error {
	return r.ReplaceGraph(ctx, domain.NewGraphFragment())
}

// ============================================================================
// Metadata
// ============================================================================

// SaveTree stores the spanning tree computed for the graph with the given
// fingerprint.
func (r *Repository) SaveTree(ctx context.Context, tree *domain.StoredTree) error {
	return setMetadata(ctx, r.db, metaKeyTree, tree)
}

// GetTree returns the stored spanning tree or nil if none was saved
func (r *Repository) GetTree(ctx context.Context) (*domain.StoredTree, error) {
	var value sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, metaKeyTree).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query stored tree: %w", err)
	}

	tree := &domain.StoredTree{}
	if err := unmarshalJSONField(value, tree); err != nil {
		return nil, fmt.Errorf("unmarshal stored tree: %w", err)
	}
	return tree, nil
}

// LastImport returns the time of the last bulk import, or nil
func (r *Repository) LastImport(ctx context.Context) (*time.Time, error) {
	var value sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, metaKeyLastImport).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last import: %w", err)
	}

	var stamp string
	if err := unmarshalJSONField(value, &stamp); err != nil {
		return nil, fmt.Errorf("unmarshal last import: %w", err)
	}
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return nil, fmt.Errorf("parse last import: %w", err)
	}
	return &t, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func setMetadata(ctx context.Context, db execer, key string, v interface{}) error {
	value, err := marshalToNull(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
