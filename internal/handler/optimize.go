package handler

import (
	"errors"
	"net/http"

	"campusnet/internal/mst"
	"campusnet/internal/service"
)

// OptimizeHandler serves the stateless optimization endpoint. Each request
// carries its own graph; nothing is stored.
type OptimizeHandler struct {
	optimizer *service.Optimizer
	maxBody   int64
}

// NewOptimizeHandler creates a new optimize handler. maxBody <= 0 uses DefaultMaxBodyBytes.
func NewOptimizeHandler(optimizer *service.Optimizer, maxBody int64) *OptimizeHandler {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &OptimizeHandler{optimizer: optimizer, maxBody: maxBody}
}

// Register adds the optimize route to mux
func (h *OptimizeHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/optimize", h.Optimize)
}

// Optimize decodes {nodes, edges} and responds with the minimum spanning
// tree and its total cost
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req service.OptimizeRequest
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}

	resp, err := h.optimizer.Optimize(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		writeError(w, optimizeErrorMessage(err, status), err.Error(), status)
		return
	}
	writeJSON(w, resp, http.StatusOK)
}

func optimizeErrorMessage(err error, status int) string {
	switch {
	case errors.Is(err, mst.ErrUnknownNodeReference):
		return "Unknown node reference"
	case errors.Is(err, mst.ErrInvalidEdge):
		return "Invalid edge"
	case errors.Is(err, mst.ErrDuplicateNode):
		return "Duplicate node"
	case errors.Is(err, mst.ErrDisconnected):
		return "Network is disconnected"
	case errors.Is(err, mst.ErrCostOverflow):
		return "Total cost out of range"
	case status >= http.StatusInternalServerError:
		return "Failed to optimize network"
	default:
		return "Invalid request"
	}
}
