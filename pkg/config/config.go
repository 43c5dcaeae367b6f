package config

import "time"

// Config is the root configuration for shelfguard. It is loaded from a
// YAML file, filled in with defaults, optionally overridden from the
// environment, and validated before use.
type Config struct {
	// Server configures the HTTP API.
	Server ServerConfig `yaml:"server"`

	// Policy configures where rule packs come from and how they reload.
	Policy PolicyConfig `yaml:"policy"`

	// Catalog configures the listing data source.
	Catalog CatalogConfig `yaml:"catalog"`

	// Suggest configures the suggestion generator.
	Suggest SuggestConfig `yaml:"suggest"`

	// History configures run persistence.
	History HistoryConfig `yaml:"history"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// ListenAddress is the host:port the API binds to.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle limit.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// PolicyConfig contains rule pack source settings.
type PolicyConfig struct {
	// PacksDir is the root directory scanned for rule packs.
	// Default: "./rule_packs"
	PacksDir string `yaml:"packs_dir"`

	// Watch enables filesystem watching of PacksDir for live reload.
	Watch bool `yaml:"watch"`

	// ReloadSchedule is an optional cron expression for periodic
	// reloads (e.g. "0 */6 * * *"). Empty disables scheduled reloads.
	ReloadSchedule string `yaml:"reload_schedule"`

	// Git configures an optional git repository as the pack source.
	Git GitConfig `yaml:"git"`
}

// GitConfig describes a git repository holding rule packs.
type GitConfig struct {
	// Repo is the clone URL. Empty disables the git source.
	Repo string `yaml:"repo"`

	// Branch to check out. Default: "main"
	Branch string `yaml:"branch"`

	// Path is the subdirectory inside the repo containing the packs.
	Path string `yaml:"path"`

	// Dir is the local checkout directory. Default: "data/packs-checkout"
	Dir string `yaml:"dir"`
}

// CatalogConfig contains listing data source settings.
type CatalogConfig struct {
	// CSVPath is the default catalog file used when a request does not
	// carry its own listing payload.
	CSVPath string `yaml:"csv_path"`
}

// SuggestConfig contains suggestion generator settings.
type SuggestConfig struct {
	// Mode selects the generator: "llm", "fallback", or "auto".
	// "auto" tries the LLM and falls back on error. Default: "auto"
	Mode string `yaml:"mode"`

	// BaseURL is the OpenAI-compatible API base URL.
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates against the API. Also settable via
	// SHELFGUARD_SUGGEST_API_KEY.
	APIKey string `yaml:"api_key"`

	// Model is the model identifier sent with each request.
	Model string `yaml:"model"`

	// Timeout bounds a single suggestion call. Default: 30s
	Timeout time.Duration `yaml:"timeout"`
}

// HistoryConfig contains run persistence settings.
type HistoryConfig struct {
	// Backend selects the store: "sqlite" or "memory". Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path for the sqlite backend.
	// Default: "data/history.db"
	SQLitePath string `yaml:"sqlite_path"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path of the metrics endpoint. Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix. Default: "shelfguard"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name. Default: "engine"
	Subsystem string `yaml:"subsystem"`
}
