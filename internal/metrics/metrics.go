// Package metrics holds the prometheus collectors exported on /metrics.
//
// A nil *Metrics is valid and records nothing, so services and handlers can
// be built without metrics in tests and the solve command.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "campusnet"

// Metrics contains the campusnet collectors and the registry they live in
type Metrics struct {
	registry *prometheus.Registry

	optimizeTotal    *prometheus.CounterVec // optimizations by caller and outcome
	optimizeDuration *prometheus.HistogramVec
	treeCost         prometheus.Gauge // cost of the last stored-graph tree
	graphNodes       prometheus.Gauge
	graphEdges       prometheus.Gauge
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	eventsPublished  *prometheus.CounterVec
	eventsDropped    prometheus.Counter
	processStart     prometheus.Gauge
}

// New creates and registers all collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.optimizeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimize_total",
			Help:      "Number of spanning tree computations.",
		},
		// source: api, graph or cli
		// result: ok or error
		[]string{"source", "result"},
	)
	m.optimizeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "optimize_duration_seconds",
			Help:      "Time spent computing spanning trees.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
		[]string{"source"},
	)
	m.treeCost = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "tree_total_cost",
		Help:      "Total cost of the last spanning tree computed for the stored graph.",
	})
	m.graphNodes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "graph_nodes",
		Help:      "Buildings in the stored graph.",
	})
	m.graphEdges = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "graph_edges",
		Help:      "Candidate connections in the stored graph.",
	})
	m.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "code"},
	)
	m.httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	m.eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Events published on the event bus.",
		},
		[]string{"type"},
	)
	m.eventsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Events not delivered because a subscriber was slow.",
	})
	m.processStart = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "process_start_time_seconds",
		Help:      "Start time of the process since unix epoch in seconds.",
	})
	m.processStart.SetToCurrentTime()

	m.registry.MustRegister(
		m.optimizeTotal,
		m.optimizeDuration,
		m.treeCost,
		m.graphNodes,
		m.graphEdges,
		m.httpRequests,
		m.httpDuration,
		m.eventsPublished,
		m.eventsDropped,
		m.processStart,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry holding the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveOptimize records one spanning tree computation
func (m *Metrics) ObserveOptimize(source string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.optimizeTotal.With(prometheus.Labels{"source": source, "result": result}).Inc()
	m.optimizeDuration.WithLabelValues(source).Observe(d.Seconds())
}

// SetTreeCost records the cost of the stored graph's tree
func (m *Metrics) SetTreeCost(cost int64) {
	if m == nil {
		return
	}
	m.treeCost.Set(float64(cost))
}

// SetGraphSize records the stored graph's size
func (m *Metrics) SetGraphSize(nodes, edges int) {
	if m == nil {
		return
	}
	m.graphNodes.Set(float64(nodes))
	m.graphEdges.Set(float64(edges))
}

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// EventPublished counts an event published on the bus
func (m *Metrics) EventPublished(eventType string) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(eventType).Inc()
}

// EventDropped counts an event a subscriber missed
func (m *Metrics) EventDropped() {
	if m == nil {
		return
	}
	m.eventsDropped.Inc()
}
