package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the pipeline's Prometheus collectors.
type Metrics struct {
	stageDuration *prometheus.HistogramVec
	failures      *prometheus.CounterVec
	runs          prometheus.Counter
}

// NewMetrics registers the pipeline collectors with reg. Pass
// prometheus.DefaultRegisterer to expose them on the default /metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pathwise_pipeline_duration_seconds",
			Help:    "Module pipeline duration in seconds by stage",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10), // 250ms to ~2m
		}, []string{"stage"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pathwise_generation_failures_total",
			Help: "Generation failures inside the module pipeline by stage",
		}, []string{"stage"}),
		runs: f.NewCounter(prometheus.CounterOpts{
			Name: "pathwise_pipeline_runs_total",
			Help: "Completed module pipeline runs",
		}),
	}
}

func (m *Metrics) observeStage(stage Stage, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
}

func (m *Metrics) failure(stage Stage) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(string(stage)).Inc()
}

func (m *Metrics) run(total time.Duration) {
	if m == nil {
		return
	}
	m.runs.Inc()
	m.stageDuration.WithLabelValues(string(StageTotal)).Observe(total.Seconds())
}
