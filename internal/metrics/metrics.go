// Package metrics provides Prometheus metrics for the docgen API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors. Each instance owns its registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	LLMCallsTotal   *prometheus.CounterVec
	LLMCallDuration *prometheus.HistogramVec

	DegradedTotal       *prometheus.CounterVec
	VersionEvictions    prometheus.Counter
	StaleGenerations    prometheus.Counter
	WorkspacesLive      prometheus.Gauge
	SelectionsSubmitted *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docgen_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docgen_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		LLMCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docgen_llm_calls_total",
				Help: "Total number of language model calls",
			},
			[]string{"operation", "outcome"},
		),
		LLMCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docgen_llm_call_duration_seconds",
				Help:    "Duration of language model calls in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 160},
			},
			[]string{"operation"},
		),
		DegradedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docgen_degraded_responses_total",
				Help: "Responses served from a fallback instead of the primary source",
			},
			[]string{"source"},
		),
		VersionEvictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "docgen_version_evictions_total",
			Help: "Versions evicted because a history reached its cap",
		}),
		StaleGenerations: factory.NewCounter(prometheus.CounterOpts{
			Name: "docgen_stale_generations_total",
			Help: "Generation results discarded because a newer generation started",
		}),
		WorkspacesLive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "docgen_workspaces_live",
			Help: "Editing workspaces currently held in memory",
		}),
		SelectionsSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docgen_selection_submits_total",
				Help: "Selective edit submissions by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveHTTP(route string, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *Metrics) ObserveLLM(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.LLMCallsTotal.WithLabelValues(operation, outcome).Inc()
	m.LLMCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Metrics) Degraded(source string) {
	if m == nil {
		return
	}
	m.DegradedTotal.WithLabelValues(source).Inc()
}

func (m *Metrics) VersionEvicted() {
	if m == nil {
		return
	}
	m.VersionEvictions.Inc()
}

func (m *Metrics) StaleGeneration() {
	if m == nil {
		return
	}
	m.StaleGenerations.Inc()
}

func (m *Metrics) SetWorkspaces(n int) {
	if m == nil {
		return
	}
	m.WorkspacesLive.Set(float64(n))
}

func (m *Metrics) SelectionSubmitted(outcome string) {
	if m == nil {
		return
	}
	m.SelectionsSubmitted.WithLabelValues(outcome).Inc()
}
