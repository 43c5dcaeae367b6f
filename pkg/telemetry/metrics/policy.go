package metrics

import (
	"time"

	"shelfguard-hq/shelfguard/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// PolicyMetrics tracks rule pack loading and rule evaluation.
//
// Metrics:
//   - shelfguard_engine_pack_loads_total: Pack registry loads by outcome
//   - shelfguard_engine_pack_rules: Rules currently loaded per pack
//   - shelfguard_engine_rules_selected_total: Rules selected per market
//   - shelfguard_engine_evaluations_total: Item evaluations by section
//   - shelfguard_engine_evaluation_duration_seconds: Evaluation duration
//   - shelfguard_engine_findings_total: Findings by severity and outcome
type PolicyMetrics struct {
	packLoadsTotal     *prometheus.CounterVec
	packRules          *prometheus.GaugeVec
	rulesSelectedTotal *prometheus.CounterVec
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	findingsTotal      *prometheus.CounterVec
}

// NewPolicyMetrics creates and registers policy metrics with the registry.
func NewPolicyMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *PolicyMetrics {
	pm := &PolicyMetrics{
		packLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "pack_loads_total",
				Help:      "Total rule pack registry loads",
			},
			[]string{"outcome"},
		),

		packRules: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "pack_rules",
				Help:      "Rules currently loaded per pack",
			},
			[]string{"policy_id"},
		),

		rulesSelectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rules_selected_total",
				Help:      "Total rules selected for evaluation",
			},
			[]string{"market"},
		),

		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluations_total",
				Help:      "Total listing evaluations",
			},
			[]string{"section"},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of a full rule evaluation in seconds",
				// Evaluations are pure in-memory checks, usually sub-millisecond.
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15),
			},
		),

		findingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "findings_total",
				Help:      "Total findings emitted, by severity and outcome",
			},
			[]string{"severity", "outcome"},
		),
	}

	registry.MustRegister(
		pm.packLoadsTotal,
		pm.packRules,
		pm.rulesSelectedTotal,
		pm.evaluationsTotal,
		pm.evaluationDuration,
		pm.findingsTotal,
	)

	return pm
}

// RecordPackLoad records one registry load with its outcome ("ok" or
// "error") and updates the per-pack rule gauges.
func (pm *PolicyMetrics) RecordPackLoad(outcome string, ruleCounts map[string]int) {
	pm.packLoadsTotal.WithLabelValues(outcome).Inc()
	for policyID, count := range ruleCounts {
		pm.packRules.WithLabelValues(policyID).Set(float64(count))
	}
}

// RecordSelection records how many rules were selected for a market.
func (pm *PolicyMetrics) RecordSelection(market string, count int) {
	pm.rulesSelectedTotal.WithLabelValues(market).Add(float64(count))
}

// RecordEvaluation records one evaluation of a listing section.
func (pm *PolicyMetrics) RecordEvaluation(section string) {
	pm.evaluationsTotal.WithLabelValues(section).Inc()
}

// ObserveEvaluationDuration records the wall time of a full evaluation.
func (pm *PolicyMetrics) ObserveEvaluationDuration(d time.Duration) {
	pm.evaluationDuration.Observe(d.Seconds())
}

// RecordFinding records one finding. Outcome is "passed" or "failed".
func (pm *PolicyMetrics) RecordFinding(severity string, passed bool) {
	outcome := "failed"
	if passed {
		outcome = "passed"
	}
	pm.findingsTotal.WithLabelValues(severity, outcome).Inc()
}
