package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveOptimize(t *testing.T) {
	m := New()
	m.ObserveOptimize("api", time.Millisecond, nil)
	m.ObserveOptimize("api", time.Millisecond, nil)
	m.ObserveOptimize("graph", time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(m.optimizeTotal.WithLabelValues("api", "ok")); got != 2 {
		t.Errorf("expected 2 api/ok, got %v", got)
	}
	if got := testutil.ToFloat64(m.optimizeTotal.WithLabelValues("graph", "error")); got != 1 {
		t.Errorf("expected 1 graph/error, got %v", got)
	}
}

func TestGauges(t *testing.T) {
	m := New()
	m.SetTreeCost(560)
	m.SetGraphSize(5, 7)

	if got := testutil.ToFloat64(m.treeCost); got != 560 {
		t.Errorf("expected 560, got %v", got)
	}
	if got := testutil.ToFloat64(m.graphNodes); got != 5 {
		t.Errorf("expected 5 nodes, got %v", got)
	}
	if got := testutil.ToFloat64(m.graphEdges); got != 7 {
		t.Errorf("expected 7 edges, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveRequest("POST", "/api/optimize", 200, 5*time.Millisecond)
	m.EventPublished("node_created")
	m.EventDropped()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{
		`campusnet_http_requests_total{code="200",method="POST",route="/api/optimize"} 1`,
		`campusnet_events_published_total{type="node_created"} 1`,
		`campusnet_events_dropped_total 1`,
		`campusnet_process_start_time_seconds`,
	} {
		if !strings.Contains(body, name) {
			t.Errorf("expected exposition to contain %q", name)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveOptimize("cli", time.Second, nil)
	m.SetTreeCost(1)
	m.SetGraphSize(1, 1)
	m.ObserveRequest("GET", "/", 200, time.Second)
	m.EventPublished("x")
	m.EventDropped()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Errorf("expected 404 from nil metrics handler, got %d", rec.Code)
	}
}
