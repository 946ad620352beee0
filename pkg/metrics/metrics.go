// Package metrics exposes the console's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	authzChecks      *prometheus.CounterVec
	authzCacheHits   prometheus.Counter
	authzCacheMisses prometheus.Counter
	grantMutations   *prometheus.CounterVec
}

// New creates collectors on a fresh registry that also carries the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rbac_console_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rbac_console_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"route", "method"},
		),
		authzChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rbac_console_authz_checks_total",
				Help: "Total number of permission checks by outcome",
			},
			[]string{"codename", "outcome"},
		),
		authzCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "rbac_console_authz_cache_hits_total",
			Help: "Total number of cache hits for permission checks",
		}),
		authzCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "rbac_console_authz_cache_misses_total",
			Help: "Total number of cache misses for permission checks",
		}),
		grantMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rbac_console_grant_mutations_total",
				Help: "Total number of group/module permission writes",
			},
			[]string{"operation"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest records a served HTTP request.
func (m *Metrics) RecordRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// RecordAuthzCheck records a permission check outcome.
func (m *Metrics) RecordAuthzCheck(codename string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	m.authzChecks.WithLabelValues(codename, outcome).Inc()
}

// RecordCacheHit records an authorization cache hit.
func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.authzCacheHits.Inc()
}

// RecordCacheMiss records an authorization cache miss.
func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.authzCacheMisses.Inc()
}

// RecordGrantMutation records a create, update or delete of a grant.
func (m *Metrics) RecordGrantMutation(operation string) {
	if m == nil {
		return
	}
	m.grantMutations.WithLabelValues(operation).Inc()
}
