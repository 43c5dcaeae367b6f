package config

import "time"

// Default values for configuration fields.
const (
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPacksDir  = "./rule_packs"
	DefaultGitBranch = "main"
	DefaultGitDir    = "data/packs-checkout"

	DefaultSuggestMode    = "auto"
	DefaultSuggestTimeout = 30 * time.Second

	DefaultHistoryBackend = "sqlite"
	DefaultSQLitePath     = "data/history.db"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "shelfguard"
	DefaultMetricsSubsystem = "engine"
)

// ApplyDefaults fills in zero-valued fields with their defaults.
// Explicitly configured values are left untouched.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Policy.PacksDir == "" {
		cfg.Policy.PacksDir = DefaultPacksDir
	}
	if cfg.Policy.Git.Branch == "" {
		cfg.Policy.Git.Branch = DefaultGitBranch
	}
	if cfg.Policy.Git.Dir == "" {
		cfg.Policy.Git.Dir = DefaultGitDir
	}

	if cfg.Suggest.Mode == "" {
		cfg.Suggest.Mode = DefaultSuggestMode
	}
	if cfg.Suggest.Timeout == 0 {
		cfg.Suggest.Timeout = DefaultSuggestTimeout
	}

	if cfg.History.Backend == "" {
		cfg.History.Backend = DefaultHistoryBackend
	}
	if cfg.History.SQLitePath == "" {
		cfg.History.SQLitePath = DefaultSQLitePath
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}
}

// NewDefault returns a configuration populated entirely from defaults,
// with metrics enabled. Useful for tests and the CLI when no config
// file is given.
func NewDefault() *Config {
	cfg := &Config{}
	cfg.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}
