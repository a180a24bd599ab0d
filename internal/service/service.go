package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"campusnet/internal/codec"
	"campusnet/internal/domain"
	"campusnet/internal/metrics"
	"campusnet/internal/repository"
)

const (
	StrategyMerge   = "merge"
	StrategyReplace = "replace"
)

var (
	// ErrInvalidStrategy is returned for an import strategy other than merge or replace
	ErrInvalidStrategy = errors.New("invalid import strategy")

	// ErrImportRejected wraps the validation problems of an imported graph
	ErrImportRejected = errors.New("import rejected")
)

// GraphService manages the stored campus graph.
//
// The in-memory Network is the working copy; every mutation is written
// through to the repository. Mutations are serialized, reads are not.
type GraphService struct {
	repo      repository.Repository
	eventBus  *EventBus
	optimizer *Optimizer
	metrics   *metrics.Metrics

	network *domain.Network

	mu    sync.Mutex
	cache *cachedTree
}

// cachedTree is the last optimization result and the graph it was computed for
type cachedTree struct {
	fingerprint string
	response    *OptimizeResponse
	computedAt  time.Time
}

// NodeUpdate holds the fields of a node that can change. Nil fields are left
// alone. ClearLocation removes the coordinates.
type NodeUpdate struct {
	Name          *string  `json:"name,omitempty"`
	Lat           *float64 `json:"lat,omitempty"`
	Lng           *float64 `json:"lng,omitempty"`
	ClearLocation bool     `json:"clear_location,omitempty"`
}

// EdgeInput describes an edge to create. A nil Weight is replaced by the
// great-circle distance between the endpoints.
type EdgeInput struct {
	ID     string         `json:"id,omitempty"`
	Source string         `json:"source"`
	Target string         `json:"target"`
	Weight *domain.Weight `json:"weight,omitempty"`
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	NodesCreated int    `json:"nodes_created"`
	NodesUpdated int    `json:"nodes_updated"`
	EdgesCreated int    `json:"edges_created"`
	EdgesUpdated int    `json:"edges_updated"`
	Strategy     string `json:"strategy"`
}

// GraphStatus summarizes the stored graph
type GraphStatus struct {
	Nodes       int            `json:"nodes"`
	Edges       int            `json:"edges"`
	Fingerprint string         `json:"fingerprint"`
	Optimized   bool           `json:"optimized"`
	TotalCost   *domain.Weight `json:"total_cost,omitempty"`
	Spanning    *bool          `json:"spanning,omitempty"`
	LastImport  *time.Time     `json:"last_import,omitempty"`
}

// DistanceResult is the suggested weight between two stored nodes
type DistanceResult struct {
	From            string        `json:"from"`
	To              string        `json:"to"`
	Meters          float64       `json:"meters"`
	SuggestedWeight domain.Weight `json:"suggested_weight"`
}

// NewGraphService loads the stored graph and returns a service for it. m may be nil.
func NewGraphService(ctx context.Context, repo repository.Repository, eventBus *EventBus, m *metrics.Metrics) (*GraphService, error) {
	s := &GraphService{
		repo:      repo,
		eventBus:  eventBus,
		optimizer: NewOptimizer(m, "graph"),
		metrics:   m,
		network:   domain.NewNetwork(),
	}
	if err := s.reload(ctx); err != nil {
		return nil, err
	}

	tree, err := repo.GetTree(ctx)
	if err != nil {
		return nil, err
	}
	if tree != nil && tree.Fingerprint == s.network.Fragment().Fingerprint() {
		nodes, _ := s.network.Len()
		s.cache = &cachedTree{
			fingerprint: tree.Fingerprint,
			response:    responseFromTree(tree, nodes),
			computedAt:  tree.ComputedAt,
		}
	}

	return s, nil
}

// reload replaces the working copy with what is stored
func (s *GraphService) reload(ctx context.Context) error {
	fragment, err := s.repo.LoadFragment(ctx)
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}
	if err := s.network.Load(fragment); err != nil {
		return fmt.Errorf("stored graph is inconsistent: %w", err)
	}
	s.updateSizeMetrics()
	return nil
}

// persistFailed resyncs the working copy after a failed write
func (s *GraphService) persistFailed(ctx context.Context, err error) error {
	if rerr := s.reload(ctx); rerr != nil {
		log.Printf("Failed to resync graph after write error: %v", rerr)
	}
	return err
}

// mutated is called with s.mu held after every successful change
func (s *GraphService) mutated(event Event) {
	s.cache = nil
	s.updateSizeMetrics()
	s.eventBus.Publish(event)
}

func (s *GraphService) updateSizeMetrics() {
	nodes, edges := s.network.Len()
	s.metrics.SetGraphSize(nodes, edges)
}

// ============================================================================
// Graph
// ============================================================================

// GetGraph returns the stored graph. The last spanning tree is attached
// when it is still current.
func (s *GraphService) GetGraph(ctx context.Context) (*domain.GraphFragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fragment := s.network.Fragment()
	if s.cache != nil && s.cache.fingerprint == fragment.Fingerprint() {
		fragment.SetTree(s.cache.response.MinimumSpanningTree, s.cache.response.TotalCost)
		computed := s.cache.computedAt
		fragment.Timestamp = &computed
	}
	return fragment, nil
}

// Status returns the graph size and fingerprint, the cost of the current tree
// if one has been computed, and when the graph was last replaced in bulk
// (import, sample or clear).
func (s *GraphService) Status(ctx context.Context) (*GraphStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lastImport, err := s.repo.LastImport(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fragment := s.network.Fragment()
	status := &GraphStatus{
		Nodes:       len(fragment.Nodes),
		Edges:       len(fragment.Edges),
		Fingerprint: fragment.Fingerprint(),
		LastImport:  lastImport,
	}
	if s.cache != nil && s.cache.fingerprint == status.Fingerprint {
		cost := s.cache.response.TotalCost
		spanning := s.cache.response.Spanning
		status.Optimized = true
		status.TotalCost = &cost
		status.Spanning = &spanning
	}
	return status, nil
}

// Optimize computes the minimum spanning tree of the stored graph, stores it
// and publishes network_optimized. An unchanged graph returns the cached tree.
func (s *GraphService) Optimize(ctx context.Context) (*OptimizeResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fragment := s.network.Fragment()
	fingerprint := fragment.Fingerprint()
	if s.cache != nil && s.cache.fingerprint == fingerprint {
		return s.cache.response, nil
	}

	resp, err := s.optimizer.Optimize(ctx, OptimizeRequest{Nodes: fragment.Nodes, Edges: fragment.Edges})
	if err != nil {
		return nil, err
	}

	computedAt := time.Now().UTC()
	if err := s.repo.SaveTree(ctx, &domain.StoredTree{
		Fingerprint: fingerprint,
		Tree:        resp.MinimumSpanningTree,
		TotalCost:   resp.TotalCost,
		ComputedAt:  computedAt,
	}); err != nil {
		return nil, err
	}

	s.cache = &cachedTree{fingerprint: fingerprint, response: resp, computedAt: computedAt}
	s.metrics.SetTreeCost(resp.TotalCost.Int64())
	s.eventBus.Publish(Event{
		Type: EventNetworkOptimized,
		Payload: map[string]interface{}{
			"total_cost": resp.TotalCost,
			"edges":      len(resp.MinimumSpanningTree),
			"spanning":   resp.Spanning,
			"components": resp.Components,
		},
	})

	return resp, nil
}

func responseFromTree(tree *domain.StoredTree, nodes int) *OptimizeResponse {
	resp := &OptimizeResponse{
		MinimumSpanningTree: tree.Tree,
		TotalCost:           tree.TotalCost,
		Components:          nodes - len(tree.Tree),
	}
	if resp.MinimumSpanningTree == nil {
		resp.MinimumSpanningTree = make([]domain.Edge, 0)
	}
	resp.Spanning = resp.Components <= 1
	return resp
}

// ClearGraph removes all nodes and edges
func (s *GraphService) ClearGraph(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.ClearGraph(ctx); err != nil {
		return err
	}
	s.network.Clear()

	s.mutated(Event{
		Type:    EventGraphUpdated,
		Payload: map[string]string{"action": "cleared"},
	})
	return nil
}

// LoadSample replaces the graph with the sample campus
func (s *GraphService) LoadSample(ctx context.Context) (*ImportResult, error) {
	return s.importFragment(ctx, domain.SampleCampus(), StrategyReplace)
}

// ============================================================================
// Nodes
// ============================================================================

// ListNodes returns all nodes in insertion order
func (s *GraphService) ListNodes(ctx context.Context) ([]domain.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.network.Nodes(), nil
}

// GetNode retrieves a single node by ID
func (s *GraphService) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	node, ok := s.network.Node(id)
	if !ok {
		return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	return &node, nil
}

// CreateNode adds a building. An empty ID is generated and an empty name
// defaults to "Building N".
func (s *GraphService) CreateNode(ctx context.Context, node *domain.Node) error {
	if err := validateLocation(node.Lat, node.Lng); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if node.ID == "" {
		node.ID = domain.NewNodeID()
	}
	if node.Name == "" {
		count, _ := s.network.Len()
		node.Name = domain.DefaultNodeName(count)
	}

	if err := s.network.AddNode(*node); err != nil {
		return err
	}
	if err := s.repo.UpsertNode(ctx, node); err != nil {
		return s.persistFailed(ctx, err)
	}

	s.mutated(Event{
		Type:    EventNodeCreated,
		Payload: map[string]string{"node_id": node.ID, "name": node.Name},
	})
	return nil
}

// UpdateNode changes a node's name or location
func (s *GraphService) UpdateNode(ctx context.Context, id string, update NodeUpdate) (*domain.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.network.Node(id)
	if !ok {
		return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}

	if update.Name != nil {
		node.Name = *update.Name
	}
	if update.ClearLocation {
		node.Lat, node.Lng = nil, nil
	}
	if update.Lat != nil {
		node.Lat = update.Lat
	}
	if update.Lng != nil {
		node.Lng = update.Lng
	}
	if err := validateLocation(node.Lat, node.Lng); err != nil {
		return nil, err
	}

	if err := s.network.UpdateNode(node); err != nil {
		return nil, err
	}
	if err := s.repo.UpsertNode(ctx, &node); err != nil {
		return nil, s.persistFailed(ctx, err)
	}

	s.mutated(Event{
		Type:    EventNodeUpdated,
		Payload: map[string]string{"node_id": id},
	})
	return &node, nil
}

// DeleteNode removes a node and its connections
func (s *GraphService) DeleteNode(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.network.RemoveNode(id); err != nil {
		return err
	}
	if err := s.repo.DeleteNode(ctx, id); err != nil {
		return s.persistFailed(ctx, err)
	}

	s.mutated(Event{
		Type:    EventNodeDeleted,
		Payload: map[string]string{"node_id": id},
	})
	return nil
}

// ============================================================================
// Edges
// ============================================================================

// ListEdges returns all edges in insertion order
func (s *GraphService) ListEdges(ctx context.Context) ([]domain.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.network.Edges(), nil
}

// GetEdge retrieves a single edge by ID
func (s *GraphService) GetEdge(ctx context.Context, id string) (*domain.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, e := range s.network.Edges() {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, fmt.Errorf("edge %s: %w", id, domain.ErrNotFound)
}

// CreateEdge adds a candidate connection
func (s *GraphService) CreateEdge(ctx context.Context, in EdgeInput) (*domain.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	edge := domain.Edge{ID: in.ID, Source: in.Source, Target: in.Target}
	if in.Weight != nil {
		edge.Weight = *in.Weight
	} else {
		w, err := s.suggestWeight(in.Source, in.Target)
		if err != nil {
			return nil, err
		}
		edge.Weight = w
	}
	if edge.ID == "" {
		edge.ID = edge.GenerateID()
	}

	if err := s.network.AddEdge(edge); err != nil {
		return nil, err
	}
	if err := s.repo.UpsertEdge(ctx, &edge); err != nil {
		return nil, s.persistFailed(ctx, err)
	}

	s.mutated(Event{
		Type:    EventEdgeCreated,
		Payload: map[string]string{"edge_id": edge.ID},
	})
	return &edge, nil
}

// UpdateEdge changes an edge's weight
func (s *GraphService) UpdateEdge(ctx context.Context, id string, weight domain.Weight) (*domain.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.network.SetEdgeWeight(id, weight); err != nil {
		return nil, err
	}
	var updated domain.Edge
	for _, e := range s.network.Edges() {
		if e.ID == id {
			updated = e
			break
		}
	}
	if err := s.repo.UpsertEdge(ctx, &updated); err != nil {
		return nil, s.persistFailed(ctx, err)
	}

	s.mutated(Event{
		Type:    EventEdgeUpdated,
		Payload: map[string]interface{}{"edge_id": id, "weight": weight},
	})
	return &updated, nil
}

// DeleteEdge removes an edge
func (s *GraphService) DeleteEdge(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.network.RemoveEdge(id); err != nil {
		return err
	}
	if err := s.repo.DeleteEdge(ctx, id); err != nil {
		return s.persistFailed(ctx, err)
	}

	s.mutated(Event{
		Type:    EventEdgeDeleted,
		Payload: map[string]string{"edge_id": id},
	})
	return nil
}

// Distance returns the great-circle distance and suggested weight between
// two stored nodes
func (s *GraphService) Distance(ctx context.Context, from, to string) (*DistanceResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a, ok := s.network.Node(from)
	if !ok {
		return nil, fmt.Errorf("node %s: %w", from, domain.ErrNotFound)
	}
	b, ok := s.network.Node(to)
	if !ok {
		return nil, fmt.Errorf("node %s: %w", to, domain.ErrNotFound)
	}

	w, err := domain.SuggestWeight(a, b)
	if err != nil {
		return nil, err
	}
	meters, _ := domain.Distance(a, b)
	return &DistanceResult{From: from, To: to, Meters: meters, SuggestedWeight: w}, nil
}

func (s *GraphService) suggestWeight(from, to string) (domain.Weight, error) {
	a, ok := s.network.Node(from)
	if !ok {
		return 0, fmt.Errorf("edge source %s: %w", from, domain.ErrNotFound)
	}
	b, ok := s.network.Node(to)
	if !ok {
		return 0, fmt.Errorf("edge target %s: %w", to, domain.ErrNotFound)
	}
	return domain.SuggestWeight(a, b)
}

func validateLocation(lat, lng *float64) error {
	if (lat == nil) != (lng == nil) {
		return fmt.Errorf("%w: lat and lng must be set together", domain.ErrInvalidNode)
	}
	if lat != nil && (*lat < -90 || *lat > 90 || *lng < -180 || *lng > 180) {
		return fmt.Errorf("%w: location %v,%v out of range", domain.ErrInvalidNode, *lat, *lng)
	}
	return nil
}

// ============================================================================
// Import / Export
// ============================================================================

// Import parses a document in the given format and applies it with the
// given strategy ("merge" by default, or "replace")
func (s *GraphService) Import(ctx context.Context, format string, r io.Reader, strategy string) (*ImportResult, error) {
	c, err := codec.ForFormat(format)
	if err != nil {
		return nil, err
	}
	fragment, err := c.Parse(r)
	if err != nil {
		return nil, err
	}
	return s.importFragment(ctx, fragment, strategy)
}

// ImportFile imports a JSON or YAML file, picking the format from its extension
func (s *GraphService) ImportFile(ctx context.Context, path, strategy string) (*ImportResult, error) {
	c, err := codec.ForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	fragment, err := c.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s.importFragment(ctx, fragment, strategy)
}

// importFragment imports a graph fragment with the specified strategy
func (s *GraphService) importFragment(ctx context.Context, fragment *domain.GraphFragment, strategy string) (*ImportResult, error) {
	if strategy == "" {
		strategy = StrategyMerge
	}
	if strategy != StrategyMerge && strategy != StrategyReplace {
		return nil, fmt.Errorf("%w %q, must be 'merge' or 'replace'", ErrInvalidStrategy, strategy)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range fragment.Edges {
		if fragment.Edges[i].ID == "" {
			fragment.Edges[i].ID = fragment.Edges[i].GenerateID()
		}
	}

	result := &ImportResult{Strategy: strategy}
	target := fragment
	if strategy == StrategyMerge {
		target = mergeFragments(s.network.Fragment(), fragment, result)
	} else {
		result.NodesCreated = len(fragment.Nodes)
		result.EdgesCreated = len(fragment.Edges)
	}

	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImportRejected, err)
	}

	if err := s.repo.ReplaceGraph(ctx, target); err != nil {
		return nil, err
	}
	if err := s.network.Load(target); err != nil {
		return nil, s.persistFailed(ctx, fmt.Errorf("%w: %w", ErrImportRejected, err))
	}

	s.mutated(Event{
		Type:    EventGraphUpdated,
		Payload: result,
	})
	log.Printf("Imported graph (%s): %d/%d nodes created/updated, %d/%d edges created/updated",
		strategy, result.NodesCreated, result.NodesUpdated, result.EdgesCreated, result.EdgesUpdated)

	return result, nil
}

// mergeFragments overlays incoming on current. Nodes match by ID. Edges
// match by ID, then by endpoint pair; a match keeps its position and takes
// the incoming values.
func mergeFragments(current, incoming *domain.GraphFragment, result *ImportResult) *domain.GraphFragment {
	merged := &domain.GraphFragment{
		Nodes: current.Nodes,
		Edges: current.Edges,
	}

	nodeIndex := make(map[string]int, len(merged.Nodes))
	for i, n := range merged.Nodes {
		nodeIndex[n.ID] = i
	}
	for _, n := range incoming.Nodes {
		if i, ok := nodeIndex[n.ID]; ok {
			merged.Nodes[i] = n
			result.NodesUpdated++
			continue
		}
		nodeIndex[n.ID] = len(merged.Nodes)
		merged.Nodes = append(merged.Nodes, n)
		result.NodesCreated++
	}

	edgeIndex := make(map[string]int, len(merged.Edges))
	pairIndex := make(map[string]int, len(merged.Edges))
	for i, e := range merged.Edges {
		edgeIndex[e.ID] = i
		pairIndex[e.PairKey()] = i
	}
	for _, e := range incoming.Edges {
		i, ok := edgeIndex[e.ID]
		if !ok {
			i, ok = pairIndex[e.PairKey()]
			if ok {
				e.ID = merged.Edges[i].ID
			}
		}
		if ok {
			if old := merged.Edges[i].PairKey(); pairIndex[old] == i {
				delete(pairIndex, old)
			}
			pairIndex[e.PairKey()] = i
			merged.Edges[i] = e
			result.EdgesUpdated++
			continue
		}
		edgeIndex[e.ID] = len(merged.Edges)
		pairIndex[e.PairKey()] = len(merged.Edges)
		merged.Edges = append(merged.Edges, e)
		result.EdgesCreated++
	}

	return merged
}

// Export writes the stored graph in the given format, including the current
// spanning tree if one has been computed
func (s *GraphService) Export(ctx context.Context, format string, w io.Writer) error {
	c, err := codec.ForFormat(format)
	if err != nil {
		return err
	}
	fragment, err := s.GetGraph(ctx)
	if err != nil {
		return err
	}
	return c.Export(fragment, w)
}
