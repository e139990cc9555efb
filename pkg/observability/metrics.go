package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus instruments. A nil *Metrics is
// valid and turns every observation into a no-op, which keeps tests and
// tools free of a registry.
type Metrics struct {
	registry      *prometheus.Registry
	analysesTotal *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	shortCircuits prometheus.Counter
	trainingRuns  prometheus.Counter
}

// NewMetrics builds the instrument set on a fresh registry, together with
// the standard Go runtime and process collectors.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		analysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Completed credit analyses by terminal status.",
		}, []string{"status"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"stage"}),
		shortCircuits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persona_short_circuits_total",
			Help:      "Analyses rejected at the persona filter without running later stages.",
		}),
		trainingRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_training_runs_total",
			Help:      "Completed approval model training runs.",
		}),
	}
	registry.MustRegister(m.analysesTotal, m.stageDuration, m.shortCircuits, m.trainingRuns)
	return m
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IncAnalysis counts one terminal analysis by status.
func (m *Metrics) IncAnalysis(status string) {
	if m == nil {
		return
	}
	m.analysesTotal.WithLabelValues(status).Inc()
}

// ObserveStage records one stage execution.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// IncShortCircuit counts one persona-filter short circuit.
func (m *Metrics) IncShortCircuit() {
	if m == nil {
		return
	}
	m.shortCircuits.Inc()
}

// IncTrainingRun counts one completed training run.
func (m *Metrics) IncTrainingRun() {
	if m == nil {
		return
	}
	m.trainingRuns.Inc()
}
