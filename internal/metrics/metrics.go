// Package metrics exposes prometheus counters for cache lookups, store calls
// and HTTP responses.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kaizen"

// Result label values.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics owns a private registry so tests and multiple servers never collide.
type Metrics struct {
	registry     *prometheus.Registry
	cacheLookups *prometheus.CounterVec
	storeOps     *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Record cache lookups by entry kind and result.",
		}, []string{"entry", "result"}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Persistent store calls by operation and result.",
		}, []string{"op", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP responses by route pattern and status code.",
		}, []string{"route", "code"}),
	}
	m.registry.MustRegister(
		m.cacheLookups,
		m.storeOps,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// CacheHit counts a lookup served from the cache.
func (m *Metrics) CacheHit(entry string) {
	m.cacheLookups.WithLabelValues(entry, ResultHit).Inc()
}

// CacheMiss counts a lookup that fell through to the store.
func (m *Metrics) CacheMiss(entry string) {
	m.cacheLookups.WithLabelValues(entry, ResultMiss).Inc()
}

// ObserveStore counts one store call. Not-found is a successful lookup.
func (m *Metrics) ObserveStore(op string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.storeOps.WithLabelValues(op, result).Inc()
}

// ObserveHTTP counts one response.
func (m *Metrics) ObserveHTTP(route string, code int) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler serves the registry in the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
