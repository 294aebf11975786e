package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/costgraph/pkg/observability"
)

const namespace = "costgraph"

// Metrics holds the Prometheus collectors and implements the observability
// hooks, so document, export and cache events from the core are counted.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	documentLoads   *prometheus.CounterVec
	documentRepairs prometheus.Counter
	documentSaves   *prometheus.CounterVec
	exports         *prometheus.CounterVec
	exportDuration  prometheus.Histogram
	cacheOps        *prometheus.CounterVec
	nodes           prometheus.Gauge
}

// NewMetrics creates collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		documentLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_loads_total",
			Help:      "Document load attempts",
		}, []string{"format", "status"}),
		documentRepairs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_repairs_total",
			Help:      "Problems repaired while loading documents",
		}),
		documentSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_saves_total",
			Help:      "Document save attempts",
		}, []string{"format", "status"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Export runs",
		}, []string{"status"}),
		exportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Export run duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Artifact cache operations",
		}, []string{"op", "format"}),
		nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes",
			Help:      "Nodes in the current diagram",
		}),
	}
	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.documentLoads,
		m.documentRepairs,
		m.documentSaves,
		m.exports,
		m.exportDuration,
		m.cacheOps,
		m.nodes,
	)
	return m
}

// Register installs m as the process-wide observability hooks.
func (m *Metrics) Register() {
	observability.SetDocumentHooks(m)
	observability.SetExportHooks(m)
	observability.SetCacheHooks(m)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Middleware records request counts and latencies by route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnDocumentLoad(_ context.Context, format string, nodeCount, repaired int, _ time.Duration, err error) {
	m.documentLoads.WithLabelValues(format, statusLabel(err)).Inc()
	m.documentRepairs.Add(float64(repaired))
	if err == nil {
		m.nodes.Set(float64(nodeCount))
	}
}

func (m *Metrics) OnDocumentSave(_ context.Context, format string, _ int, _ time.Duration, err error) {
	m.documentSaves.WithLabelValues(format, statusLabel(err)).Inc()
}

func (m *Metrics) OnExportStart(context.Context, []string, int) {}

func (m *Metrics) OnExportComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.exports.WithLabelValues(statusLabel(err)).Inc()
	m.exportDuration.Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, format string) {
	m.cacheOps.WithLabelValues("hit", format).Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, format string) {
	m.cacheOps.WithLabelValues("miss", format).Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, format string, _ int) {
	m.cacheOps.WithLabelValues("set", format).Inc()
}

// SetNodes records the current node count.
func (m *Metrics) SetNodes(n int) { m.nodes.Set(float64(n)) }

var (
	_ observability.DocumentHooks = (*Metrics)(nil)
	_ observability.ExportHooks   = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
)
