package metrics

import (
	"shelfguard-hq/shelfguard/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the Prometheus registry and every shelfguard metric
// family. Components record through the typed sub-collectors rather
// than touching prometheus directly.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	policyMetrics   *PolicyMetrics
	pipelineMetrics *PipelineMetrics
}

// NewCollector creates a collector and registers all metrics with the
// given registry. A nil registry gets a fresh one.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}

	return &Collector{
		config:          cfg,
		registry:        registry,
		policyMetrics:   NewPolicyMetrics(cfg, registry),
		pipelineMetrics: NewPipelineMetrics(cfg, registry),
	}
}

// Policy returns the policy evaluation metrics.
func (c *Collector) Policy() *PolicyMetrics {
	return c.policyMetrics
}

// Pipeline returns the comparison pipeline metrics.
func (c *Collector) Pipeline() *PipelineMetrics {
	return c.pipelineMetrics
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
