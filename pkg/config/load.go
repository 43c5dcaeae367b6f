package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates the result. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Variables follow the convention
// SHELFGUARD_SECTION_FIELD (e.g. SHELFGUARD_SERVER_LISTEN_ADDRESS) and take
// precedence over the file.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration invalid after environment overrides: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	// Server
	if val := os.Getenv("SHELFGUARD_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("SHELFGUARD_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("SHELFGUARD_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("SHELFGUARD_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	// Policy
	if val := os.Getenv("SHELFGUARD_POLICY_PACKS_DIR"); val != "" {
		cfg.Policy.PacksDir = val
	}
	if val := os.Getenv("SHELFGUARD_POLICY_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Policy.Watch = b
		}
	}
	if val := os.Getenv("SHELFGUARD_POLICY_RELOAD_SCHEDULE"); val != "" {
		cfg.Policy.ReloadSchedule = val
	}
	if val := os.Getenv("SHELFGUARD_POLICY_GIT_REPO"); val != "" {
		cfg.Policy.Git.Repo = val
	}
	if val := os.Getenv("SHELFGUARD_POLICY_GIT_BRANCH"); val != "" {
		cfg.Policy.Git.Branch = val
	}
	if val := os.Getenv("SHELFGUARD_POLICY_GIT_PATH"); val != "" {
		cfg.Policy.Git.Path = val
	}

	// Catalog
	if val := os.Getenv("SHELFGUARD_CATALOG_CSV_PATH"); val != "" {
		cfg.Catalog.CSVPath = val
	}

	// Suggest
	if val := os.Getenv("SHELFGUARD_SUGGEST_MODE"); val != "" {
		cfg.Suggest.Mode = val
	}
	if val := os.Getenv("SHELFGUARD_SUGGEST_BASE_URL"); val != "" {
		cfg.Suggest.BaseURL = val
	}
	if val := os.Getenv("SHELFGUARD_SUGGEST_API_KEY"); val != "" {
		cfg.Suggest.APIKey = val
	}
	if val := os.Getenv("SHELFGUARD_SUGGEST_MODEL"); val != "" {
		cfg.Suggest.Model = val
	}

	// History
	if val := os.Getenv("SHELFGUARD_HISTORY_BACKEND"); val != "" {
		cfg.History.Backend = val
	}
	if val := os.Getenv("SHELFGUARD_HISTORY_SQLITE_PATH"); val != "" {
		cfg.History.SQLitePath = val
	}

	// Logging
	if val := os.Getenv("SHELFGUARD_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("SHELFGUARD_LOG_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}

	// Metrics
	if val := os.Getenv("SHELFGUARD_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("SHELFGUARD_METRICS_PATH"); val != "" {
		cfg.Metrics.Path = val
	}
}
