package metrics

import (
	"time"

	"shelfguard-hq/shelfguard/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics tracks end-to-end comparison runs.
//
// Metrics:
//   - shelfguard_engine_runs_total: Comparison runs by outcome
//   - shelfguard_engine_run_duration_seconds: Full run duration
//   - shelfguard_engine_suggestions_total: Suggestions by generator source
type PipelineMetrics struct {
	runsTotal        *prometheus.CounterVec
	runDuration      prometheus.Histogram
	suggestionsTotal *prometheus.CounterVec
}

// NewPipelineMetrics creates and registers pipeline metrics with the registry.
func NewPipelineMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *PipelineMetrics {
	pm := &PipelineMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "runs_total",
				Help:      "Total comparison runs by outcome",
			},
			[]string{"outcome"},
		),

		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "run_duration_seconds",
				Help:      "Duration of a full comparison run in seconds",
				// Runs that call the LLM can take tens of seconds.
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),

		suggestionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "suggestions_total",
				Help:      "Total suggestions produced, by generator source",
			},
			[]string{"source"},
		),
	}

	registry.MustRegister(
		pm.runsTotal,
		pm.runDuration,
		pm.suggestionsTotal,
	)

	return pm
}

// RecordRun records one comparison run. Outcome is "ok" or "error".
func (pm *PipelineMetrics) RecordRun(outcome string, duration time.Duration) {
	pm.runsTotal.WithLabelValues(outcome).Inc()
	pm.runDuration.Observe(duration.Seconds())
}

// RecordSuggestions records suggestions produced by a generator.
// Source is "llm" or "fallback".
func (pm *PipelineMetrics) RecordSuggestions(source string, count int) {
	pm.suggestionsTotal.WithLabelValues(source).Add(float64(count))
}
