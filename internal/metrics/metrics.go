// Package metrics holds the Prometheus instruments for the API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Answer outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// Generation outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics is a set of instruments on a private registry.
type Metrics struct {
	registry    *prometheus.Registry
	answers     *prometheus.CounterVec
	generations *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New registers the instruments with a fresh registry, plus the Go and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plaidlibs_answers_total",
				Help: "Answers submitted, by workflow and outcome",
			},
			[]string{"workflow", "outcome"},
		),
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plaidlibs_generations_total",
				Help: "Generation calls, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "plaidlibs_generation_duration_seconds",
				Help:    "Duration of generation calls",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
			},
			[]string{"kind"},
		),
	}
	m.registry.MustRegister(
		m.answers,
		m.generations,
		m.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Answer counts one submitted answer.
func (m *Metrics) Answer(workflow, outcome string) {
	if m == nil {
		return
	}
	m.answers.WithLabelValues(workflow, outcome).Inc()
}

// Generation counts one generation call and records its duration.
func (m *Metrics) Generation(kind string, took time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.generations.WithLabelValues(kind, outcome).Inc()
	m.latency.WithLabelValues(kind).Observe(took.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
