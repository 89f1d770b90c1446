// Package metrics exposes the engine's prometheus instrumentation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every collector the engine exports.
type Registry struct {
	registry *prometheus.Registry

	// Reconciliation
	ReconcilePassesTotal *prometheus.CounterVec
	ReconcileDiffSize    *prometheus.HistogramVec
	EventsTotal          *prometheus.CounterVec
	EventsCoalesced      prometheus.Counter
	StaleFallbacksTotal  prometheus.Counter

	// Layout
	LayoutPassDuration  *prometheus.HistogramVec
	LayoutNodesTotal    prometheus.Gauge
	LayoutEdgesTotal    prometheus.Gauge
	SimulationTicks     prometheus.Histogram
	ForcedStabilization prometheus.Counter

	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Snapshot fetching
	SnapshotFetchesTotal *prometheus.CounterVec
}

// NewRegistry creates and registers all collectors.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}

	r.ReconcilePassesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "topoview_reconcile_passes_total",
		Help: "Reconciliation passes by trigger (snapshot, event, stale)",
	}, []string{"trigger"})

	r.ReconcileDiffSize = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "topoview_reconcile_diff_size",
		Help:    "Number of mutations per reconciliation pass",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
	}, []string{"kind"})

	r.EventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "topoview_events_total",
		Help: "Push events received by type",
	}, []string{"type"})

	r.EventsCoalesced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "topoview_events_coalesced_total",
		Help: "Status events absorbed by the debounce window",
	})

	r.StaleFallbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "topoview_stale_fallbacks_total",
		Help: "Full reconciliations triggered by stale event references",
	})

	r.LayoutPassDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "topoview_layout_pass_duration_seconds",
		Help:    "Layout pass duration by mode",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	r.LayoutNodesTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "topoview_layout_nodes",
		Help: "Nodes in the current layout",
	})

	r.LayoutEdgesTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "topoview_layout_edges",
		Help: "Canonical edges in the current layout",
	})

	r.SimulationTicks = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "topoview_simulation_ticks",
		Help:    "Simulation ticks until stabilization",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 600},
	})

	r.ForcedStabilization = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "topoview_forced_stabilizations_total",
		Help: "Simulations frozen by the iteration budget",
	})

	r.HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "topoview_http_requests_total",
		Help: "HTTP requests by method, path, and status",
	}, []string{"method", "path", "status"})

	r.HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "topoview_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	r.HTTPRequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "topoview_http_requests_in_flight",
		Help: "In-flight HTTP requests",
	})

	r.SnapshotFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "topoview_snapshot_fetches_total",
		Help: "Snapshot fetches by outcome",
	}, []string{"outcome"})

	r.registry.MustRegister(
		r.ReconcilePassesTotal,
		r.ReconcileDiffSize,
		r.EventsTotal,
		r.EventsCoalesced,
		r.StaleFallbacksTotal,
		r.LayoutPassDuration,
		r.LayoutNodesTotal,
		r.LayoutEdgesTotal,
		r.SimulationTicks,
		r.ForcedStabilization,
		r.HTTPRequestsTotal,
		r.HTTPRequestDuration,
		r.HTTPRequestsInFlight,
		r.SnapshotFetchesTotal,
	)
	return r
}

// Registry returns the underlying prometheus registry for the /metrics
// handler.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// RecordReconcilePass records one reconciliation pass and its diff sizes.
func (r *Registry) RecordReconcilePass(trigger string, added, removed, updated int) {
	r.ReconcilePassesTotal.WithLabelValues(trigger).Inc()
	r.ReconcileDiffSize.WithLabelValues("added").Observe(float64(added))
	r.ReconcileDiffSize.WithLabelValues("removed").Observe(float64(removed))
	r.ReconcileDiffSize.WithLabelValues("updated").Observe(float64(updated))
}

// RecordLayoutPass records a layout recomputation.
func (r *Registry) RecordLayoutPass(mode string, nodes, edges int, duration time.Duration) {
	r.LayoutPassDuration.WithLabelValues(mode).Observe(duration.Seconds())
	r.LayoutNodesTotal.Set(float64(nodes))
	r.LayoutEdgesTotal.Set(float64(edges))
}

// RecordHTTPRequest records an HTTP request with its duration.
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
