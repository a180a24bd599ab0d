package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"campusnet/internal/codec"
	"campusnet/internal/domain"
	"campusnet/internal/mst"
	"campusnet/internal/service"
)

// DefaultMaxBodyBytes limits request bodies when no limit is configured
const DefaultMaxBodyBytes int64 = 10 << 20

var (
	errBadRequestBody = errors.New("invalid request body")
	errEmptyBody      = errors.New("empty body")
)

// GraphHandler handles requests for the stored campus graph
type GraphHandler struct {
	svc     *service.GraphService
	maxBody int64
}

// NewGraphHandler creates a new graph handler. maxBody <= 0 uses DefaultMaxBodyBytes.
func NewGraphHandler(svc *service.GraphService, maxBody int64) *GraphHandler {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &GraphHandler{svc: svc, maxBody: maxBody}
}

// Register adds the graph routes to mux
func (h *GraphHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/graph", h.GetGraph)
	mux.HandleFunc("DELETE /api/graph", h.ClearGraph)
	mux.HandleFunc("GET /api/graph/status", h.GraphStatus)
	mux.HandleFunc("POST /api/graph/sample", h.LoadSample)
	mux.HandleFunc("POST /api/graph/optimize", h.Optimize)

	mux.HandleFunc("GET /api/nodes", h.ListNodes)
	mux.HandleFunc("POST /api/nodes", h.CreateNode)
	mux.HandleFunc("GET /api/nodes/{id}", h.GetNode)
	mux.HandleFunc("PUT /api/nodes/{id}", h.UpdateNode)
	mux.HandleFunc("DELETE /api/nodes/{id}", h.DeleteNode)

	mux.HandleFunc("GET /api/edges", h.ListEdges)
	mux.HandleFunc("POST /api/edges", h.CreateEdge)
	mux.HandleFunc("GET /api/edges/{id}", h.GetEdge)
	mux.HandleFunc("PUT /api/edges/{id}", h.UpdateEdge)
	mux.HandleFunc("DELETE /api/edges/{id}", h.DeleteEdge)

	mux.HandleFunc("POST /api/import/{format}", h.Import)
	mux.HandleFunc("GET /api/export/{format}", h.Export)
	mux.HandleFunc("GET /api/distance", h.Distance)
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// GetGraph returns the complete graph. The ETag changes whenever the nodes,
// edges or attached tree change.
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := h.svc.GetGraph(r.Context())
	if err != nil {
		h.fail(w, "Failed to get graph", err)
		return
	}

	etag := graph.Fingerprint()
	if graph.MST != nil {
		etag += "-mst"
	}
	etag = `"` + etag + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	writeJSON(w, graph, http.StatusOK)
}

// GraphStatus returns the graph size, tree cost and last import time
func (h *GraphHandler) GraphStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.Status(r.Context())
	if err != nil {
		h.fail(w, "Failed to get graph status", err)
		return
	}
	writeJSON(w, status, http.StatusOK)
}

// ClearGraph removes every node and edge
func (h *GraphHandler) ClearGraph(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearGraph(r.Context()); err != nil {
		h.fail(w, "Failed to clear graph", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LoadSample replaces the graph with the sample campus
func (h *GraphHandler) LoadSample(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.LoadSample(r.Context())
	if err != nil {
		h.fail(w, "Failed to load sample", err)
		return
	}
	writeJSON(w, result, http.StatusOK)
}

// Optimize computes the minimum spanning tree of the stored graph
func (h *GraphHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Optimize(r.Context())
	if err != nil {
		h.fail(w, "Failed to optimize network", err)
		return
	}
	writeJSON(w, resp, http.StatusOK)
}

// ListNodes returns all nodes
func (h *GraphHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.svc.ListNodes(r.Context())
	if err != nil {
		h.fail(w, "Failed to list nodes", err)
		return
	}
	writeJSON(w, nodes, http.StatusOK)
}

// GetNode returns a single node
func (h *GraphHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	node, err := h.svc.GetNode(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "Failed to get node", err)
		return
	}
	writeJSON(w, node, http.StatusOK)
}

// CreateNode creates a new node
func (h *GraphHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var node domain.Node
	if !h.decode(w, r, &node) {
		return
	}

	if err := h.svc.CreateNode(r.Context(), &node); err != nil {
		h.fail(w, "Failed to create node", err)
		return
	}
	writeJSON(w, node, http.StatusCreated)
}

// UpdateNode changes a node's name or location
func (h *GraphHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var update service.NodeUpdate
	if !h.decode(w, r, &update) {
		return
	}

	node, err := h.svc.UpdateNode(r.Context(), r.PathValue("id"), update)
	if err != nil {
		h.fail(w, "Failed to update node", err)
		return
	}
	writeJSON(w, node, http.StatusOK)
}

// DeleteNode deletes a node and its edges
func (h *GraphHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteNode(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, "Failed to delete node", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEdges returns all edges
func (h *GraphHandler) ListEdges(w http.ResponseWriter, r *http.Request) {
	edges, err := h.svc.ListEdges(r.Context())
	if err != nil {
		h.fail(w, "Failed to list edges", err)
		return
	}
	writeJSON(w, edges, http.StatusOK)
}

// GetEdge returns a single edge
func (h *GraphHandler) GetEdge(w http.ResponseWriter, r *http.Request) {
	edge, err := h.svc.GetEdge(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "Failed to get edge", err)
		return
	}
	writeJSON(w, edge, http.StatusOK)
}

// CreateEdge creates a new edge. Without a weight the distance between the
// endpoints is used.
func (h *GraphHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var in service.EdgeInput
	if !h.decode(w, r, &in) {
		return
	}

	edge, err := h.svc.CreateEdge(r.Context(), in)
	if err != nil {
		h.fail(w, "Failed to create edge", err)
		return
	}
	writeJSON(w, edge, http.StatusCreated)
}

// UpdateEdge changes an edge's weight
func (h *GraphHandler) UpdateEdge(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Weight *domain.Weight `json:"weight"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	if body.Weight == nil {
		h.fail(w, "Invalid request body", fmt.Errorf("%w: missing", domain.ErrInvalidWeight))
		return
	}

	edge, err := h.svc.UpdateEdge(r.Context(), r.PathValue("id"), *body.Weight)
	if err != nil {
		h.fail(w, "Failed to update edge", err)
		return
	}
	writeJSON(w, edge, http.StatusOK)
}

// DeleteEdge deletes an edge
func (h *GraphHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEdge(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, "Failed to delete edge", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Import reads a JSON or YAML graph document from the body
func (h *GraphHandler) Import(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, h.maxBody)
	defer body.Close()

	result, err := h.svc.Import(r.Context(), r.PathValue("format"), body, r.URL.Query().Get("strategy"))
	if err != nil {
		h.fail(w, "Failed to import graph", err)
		return
	}
	writeJSON(w, result, http.StatusOK)
}

// Export writes the graph as a downloadable JSON or YAML document
func (h *GraphHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")
	c, err := codec.ForFormat(format)
	if err != nil {
		h.fail(w, "Failed to export graph", err)
		return
	}

	w.Header().Set("Content-Type", codec.ContentType(c))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=campus.%s", c.Format()))
	if err := h.svc.Export(r.Context(), format, w); err != nil {
		// Headers are already sent
		log.Printf("Failed to export graph: %v", err)
	}
}

// Distance returns the suggested weight between two stored nodes
func (h *GraphHandler) Distance(w http.ResponseWriter, r *http.Request) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeError(w, "Invalid request", "from and to are required", http.StatusBadRequest)
		return
	}

	result, err := h.svc.Distance(r.Context(), from, to)
	if err != nil {
		h.fail(w, "Failed to compute distance", err)
		return
	}
	writeJSON(w, result, http.StatusOK)
}

func (h *GraphHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	return decodeJSON(w, r, h.maxBody, v)
}

func (h *GraphHandler) fail(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s: %v", msg, err)
	}
	writeError(w, msg, err.Error(), status)
}

// Helper functions

// decodeJSON reads a size limited JSON body into v. It writes the error
// response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, limit)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			err = errEmptyBody
		}
		err = fmt.Errorf("%w: %w", errBadRequestBody, err)
		writeError(w, "Invalid request body", err.Error(), statusFor(err))
		return false
	}
	return true
}

// statusFor maps an error to its HTTP status
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, mst.ErrUnknownNodeReference):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrImportRejected),
		errors.Is(err, service.ErrInvalidStrategy),
		errors.Is(err, codec.ErrUnknownFormat),
		errors.Is(err, domain.ErrInvalidWeight),
		errors.Is(err, domain.ErrInvalidNode),
		errors.Is(err, domain.ErrSelfLoop),
		errors.Is(err, domain.ErrNoLocation),
		errors.Is(err, mst.ErrInvalidEdge),
		errors.Is(err, mst.ErrDuplicateNode),
		errors.Is(err, mst.ErrDisconnected),
		errors.Is(err, mst.ErrCostOverflow),
		errors.Is(err, codec.ErrParse),
		errors.Is(err, errBadRequestBody):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrDuplicatePair):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
