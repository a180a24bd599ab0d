package sqlite

import (
	"database/sql"
	"encoding/json"

	"campusnet/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToFloatPtr converts sql.NullFloat64 to *float64
func nullToFloatPtr(nf sql.NullFloat64) *float64 {
	if nf.Valid {
		f := nf.Float64
		return &f
	}
	return nil
}

// floatPtrToNull converts *float64 to sql.NullFloat64
func floatPtrToNull(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalJSONField unmarshals JSON from a nullable string into target
func unmarshalJSONField(ns sql.NullString, target interface{}) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// marshalToNull marshals v to a nullable JSON string
func marshalToNull(v interface{}) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a new column to the nodes table:
// 1. Add field to nodeRow struct (below)
// 2. Update scanArgs() - APPEND to end to match column order
// 3. Update nodeColumns constant - APPEND to end
// 4. Update toDomain() to map the new field to domain.Node
// 5. Update nodeInsertArgs() if the column should be writable
// 6. Add a migration in sqlite.go migrate() using addColumnIfNotExists()
//
// CRITICAL: Column order must match between:
// - nodeColumns constant
// - scanArgs() return slice
// - All SELECT queries using nodeColumns
//
// Same pattern applies to edges.

// ============================================================================
// Node Row Scanner
// ============================================================================

// nodeRow holds all columns from a node query for scanning
type nodeRow struct {
	ID   string
	Name string
	Lat  sql.NullFloat64
	Lng  sql.NullFloat64
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match nodeColumns order exactly: id, name, lat, lng
func (r *nodeRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,   // 1
		&r.Name, // 2
		&r.Lat,  // 3
		&r.Lng,  // 4
	}
}

// toDomain converts the scanned row to a domain.Node
func (r *nodeRow) toDomain() domain.Node {
	return domain.Node{
		ID:   r.ID,
		Name: r.Name,
		Lat:  nullToFloatPtr(r.Lat),
		Lng:  nullToFloatPtr(r.Lng),
	}
}

// nodeColumns is the SELECT column list for node queries
const nodeColumns = `id, name, lat, lng`

// ============================================================================
// Edge Row Scanner
// ============================================================================

// edgeRow holds all columns from an edge query for scanning
type edgeRow struct {
	ID       string
	SourceID string
	TargetID string
	Weight   int64
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match edgeColumns order exactly: id, source_id, target_id, weight
func (r *edgeRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,       // 1
		&r.SourceID, // 2
		&r.TargetID, // 3
		&r.Weight,   // 4
	}
}

// toDomain converts the scanned row to a domain.Edge
func (r *edgeRow) toDomain() domain.Edge {
	return domain.Edge{
		ID:     r.ID,
		Source: r.SourceID,
		Target: r.TargetID,
		Weight: domain.Weight(r.Weight),
	}
}

// edgeColumns is the SELECT column list for edge queries
const edgeColumns = `id, source_id, target_id, weight`

// ============================================================================
// Write Helpers
// ============================================================================

// nodeInsertArgs prepares arguments for node INSERT/UPSERT
// Returns: id, name, lat, lng
func nodeInsertArgs(node *domain.Node) []interface{} {
	return []interface{}{
		node.ID,
		node.Name,
		floatPtrToNull(node.Lat),
		floatPtrToNull(node.Lng),
	}
}

// edgeInsertArgs prepares arguments for edge INSERT/UPSERT
// Returns: id, source_id, target_id, weight
func edgeInsertArgs(edge *domain.Edge) []interface{} {
	return []interface{}{
		edge.ID,
		edge.Source,
		edge.Target,
		edge.Weight.Int64(),
	}
}
