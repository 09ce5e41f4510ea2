// Package metrics exposes console action metrics to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	MetricNamespace = "shopadmin"
)

// Metrics holds the console collectors on a dedicated registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	actions  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	stale    *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricNamespace,
			Name:      "actions_total",
			Help:      "Backend actions run by the console, by outcome.",
		}, []string{"resource", "verb", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: MetricNamespace,
			Name:      "action_duration_seconds",
			Help:      "Latency of backend actions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource", "verb"}),
		stale: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricNamespace,
			Name:      "stale_results_total",
			Help:      "List results discarded because a newer request superseded them.",
		}, []string{"resource"}),
	}

	m.registry.MustRegister(
		m.actions,
		m.duration,
		m.stale,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveAction records one finished action.
func (m *Metrics) ObserveAction(resource, verb, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(resource, verb, outcome).Inc()
	m.duration.WithLabelValues(resource, verb).Observe(elapsed.Seconds())
}

// StaleResult records a discarded list result.
func (m *Metrics) StaleResult(resource string) {
	if m == nil {
		return
	}
	m.stale.WithLabelValues(resource).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
