// Package metrics exposes pipeline counters and timings in the Prometheus
// exposition format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "voice_insights"

// Item outcomes.
const (
	OutcomePersisted = "persisted"
	OutcomeFailed    = "failed"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry   *prometheus.Registry
	items      *prometheus.CounterVec
	stages     *prometheus.HistogramVec
	discovered prometheus.Counter
	insights   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_total",
			Help:      "Pipeline items by source and terminal outcome.",
		}, []string{"source", "outcome", "kind"}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_seconds",
			Help:      "Time spent per pipeline stage.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		discovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discovered_total",
			Help:      "Audio files discovered by the directory watcher.",
		}),
		insights: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insights_requests_total",
			Help:      "Aggregation requests by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		m.items,
		m.stages,
		m.discovered,
		m.insights,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Item counts one item reaching a terminal state. kind is empty on success.
func (m *Metrics) Item(source, outcome, kind string) {
	m.items.WithLabelValues(source, outcome, kind).Inc()
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.stages.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) Discovered() {
	m.discovered.Inc()
}

func (m *Metrics) Insights(outcome string) {
	m.insights.WithLabelValues(outcome).Inc()
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
