package service

import (
	"context"
	"log"
	"time"

	"campusnet/internal/domain"
	"campusnet/internal/metrics"
	"campusnet/internal/mst"
)

// OptimizeRequest is the body of a stateless optimization call
type OptimizeRequest struct {
	Nodes []domain.Node `json:"nodes"`
	Edges []domain.Edge `json:"edges"`
}

// OptimizeResponse is the result of an optimization
type OptimizeResponse struct {
	MinimumSpanningTree []domain.Edge `json:"minimumSpanningTree"`
	TotalCost           domain.Weight `json:"totalCost"`
	Spanning            bool          `json:"spanning"`
	Components          int           `json:"components"`
}

// Optimizer runs the spanning tree engine on caller supplied graphs. It
// keeps no state between calls.
type Optimizer struct {
	metrics *metrics.Metrics
	source  string
	opts    []mst.Option
}

// NewOptimizer creates an optimizer. source labels its metrics (api, graph,
// cli) and m may be nil.
func NewOptimizer(m *metrics.Metrics, source string, opts ...mst.Option) *Optimizer {
	return &Optimizer{
		metrics: m,
		source:  source,
		opts:    opts,
	}
}

// Optimize computes the minimum spanning forest of the request graph.
// Engine errors are returned unchanged.
func (o *Optimizer) Optimize(ctx context.Context, req OptimizeRequest) (*OptimizeResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := mst.ComputeWith(req.Nodes, req.Edges, o.opts...)
	elapsed := time.Since(start)
	o.metrics.ObserveOptimize(o.source, elapsed, err)
	if err != nil {
		log.Printf("Optimize (%s) failed for %d nodes / %d edges: %v", o.source, len(req.Nodes), len(req.Edges), err)
		return nil, err
	}

	resp := &OptimizeResponse{
		MinimumSpanningTree: result.Tree,
		TotalCost:           result.TotalCost,
		Spanning:            result.Spanning(len(req.Nodes)),
		Components:          result.Components(len(req.Nodes)),
	}
	log.Printf("Optimize (%s): %d nodes, %d edges -> %d tree edges, cost %d, %d component(s) in %s",
		o.source, len(req.Nodes), len(req.Edges), len(resp.MinimumSpanningTree), resp.TotalCost, resp.Components, elapsed)

	return resp, nil
}
