// Package metrics exposes Prometheus metrics for the orchestration layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the orchestrator.
type Metrics struct {
	registry *prometheus.Registry

	// Tool metrics
	ToolExecutionsTotal   *prometheus.CounterVec
	ToolExecutionDuration *prometheus.HistogramVec

	// Provider metrics
	ProviderFailuresTotal *prometheus.CounterVec
	CircuitState          *prometheus.GaugeVec

	// Admission metrics
	RateLimitWaitsTotal     prometheus.Counter
	ConcurrencyRejectsTotal prometheus.Counter
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		ToolExecutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_executions_total",
				Help: "Total number of tool executions",
			},
			[]string{"tool", "status"},
		),
		ToolExecutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tool_execution_duration_seconds",
				Help:    "Duration of tool executions in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		ProviderFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_failures_total",
				Help: "Total number of provider infrastructure failures",
			},
			[]string{"provider"},
		),
		CircuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "provider_circuit_state",
				Help: "Circuit state per provider (0=closed, 1=open, 2=half-open)",
			},
			[]string{"provider"},
		),
		RateLimitWaitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_limit_waits_total",
				Help: "Total number of executions admitted through the rate limiter",
			},
		),
		ConcurrencyRejectsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "concurrency_rejects_total",
				Help: "Total number of executions rejected at the concurrency cap",
			},
		),
	}

	registry.MustRegister(
		m.ToolExecutionsTotal,
		m.ToolExecutionDuration,
		m.ProviderFailuresTotal,
		m.CircuitState,
		m.RateLimitWaitsTotal,
		m.ConcurrencyRejectsTotal,
	)

	return m
}

// Handler returns an HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
