// Package metrics exposes Prometheus counters for store mutations, durable
// medium calls, snapshot loads and HTTP requests. A nil *Metrics is valid and
// records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry        *prometheus.Registry
	mutations       *prometheus.CounterVec
	mediumOps       *prometheus.CounterVec
	snapshotLoads   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyvault_store_mutations_total",
				Help: "Effective store mutations by store and operation",
			},
			[]string{"store", "op"},
		),
		mediumOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyvault_medium_operations_total",
				Help: "Durable medium calls by operation and result",
			},
			[]string{"op", "result"},
		),
		snapshotLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyvault_snapshot_loads_total",
				Help: "Snapshot loads by storage key and outcome",
			},
			[]string{"key", "outcome"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studyvault_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}
	m.registry.MustRegister(
		m.mutations,
		m.mediumOps,
		m.snapshotLoads,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveMutation counts one effective mutation.
func (m *Metrics) ObserveMutation(store, op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(store, op).Inc()
}

// ObserveMediumOp counts one durable medium call.
func (m *Metrics) ObserveMediumOp(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.mediumOps.WithLabelValues(op, result).Inc()
}

// ObserveSnapshotLoad counts one snapshot load.
func (m *Metrics) ObserveSnapshotLoad(key, outcome string) {
	if m == nil {
		return
	}
	m.snapshotLoads.WithLabelValues(key, outcome).Inc()
}

// Middleware records request duration.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		path := r.URL.Path
		if path == "" {
			path = "/"
		}
		m.requestDuration.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Observe(time.Since(start).Seconds())
	})
}
