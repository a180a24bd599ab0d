package repository

import (
	"context"
	"time"

	"campusnet/internal/domain"
)

// Repository defines the persistence operations the graph service needs
type Repository interface {
	// Read operations
	ListNodes(ctx context.Context) ([]domain.Node, error)
	GetNode(ctx context.Context, id string) (*domain.Node, error)
	ListEdges(ctx context.Context) ([]domain.Edge, error)
	GetEdge(ctx context.Context, id string) (*domain.Edge, error)
	LoadFragment(ctx context.Context) (*domain.GraphFragment, error)

	// Write operations
	UpsertNode(ctx context.Context, node *domain.Node) error
	DeleteNode(ctx context.Context, id string) error
	UpsertEdge(ctx context.Context, edge *domain.Edge) error
	DeleteEdge(ctx context.Context, id string) error

	// Bulk operations
	ReplaceGraph(ctx context.Context, fragment *domain.GraphFragment) error
	ClearGraph(ctx context.Context) error

	// Spanning tree persistence
	SaveTree(ctx context.Context, tree *domain.StoredTree) error
	GetTree(ctx context.Context) (*domain.StoredTree, error)
	LastImport(ctx context.Context) (*time.Time, error)

	// Close releases resources
	Close() error
}
