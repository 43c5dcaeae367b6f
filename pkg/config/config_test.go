package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "0.0.0.0:9090"
policy:
  packs_dir: /etc/shelfguard/packs
  watch: true
suggest:
  mode: fallback
history:
  backend: memory
metrics:
  enabled: true
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("ListenAddress = %q, want 0.0.0.0:9090", cfg.Server.ListenAddress)
	}
	if cfg.Policy.PacksDir != "/etc/shelfguard/packs" {
		t.Errorf("PacksDir = %q", cfg.Policy.PacksDir)
	}
	if !cfg.Policy.Watch {
		t.Error("Watch = false, want true")
	}

	// Defaults fill in everything unset.
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("ReadTimeout = %v, want default %v", cfg.Server.ReadTimeout, DefaultReadTimeout)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults = %q/%q, want info/json", cfg.Logging.Level, cfg.Logging.Format)
	}
	if cfg.Metrics.Namespace != "shelfguard" || cfg.Metrics.Subsystem != "engine" {
		t.Errorf("metric naming defaults = %q/%q", cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	}
}

func TestLoadConfig_FileMissing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("LoadConfig() error = nil, want error for missing file")
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() error = nil, want parse error")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
policy:
  packs_dir: ./from-file
`)
	t.Setenv("SHELFGUARD_POLICY_PACKS_DIR", "/from-env")
	t.Setenv("SHELFGUARD_SUGGEST_API_KEY", "secret")
	t.Setenv("SHELFGUARD_SERVER_READ_TIMEOUT", "45s")
	t.Setenv("SHELFGUARD_METRICS_ENABLED", "true")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Policy.PacksDir != "/from-env" {
		t.Errorf("PacksDir = %q, env override should win", cfg.Policy.PacksDir)
	}
	if cfg.Suggest.APIKey != "secret" {
		t.Errorf("APIKey = %q, want value from env", cfg.Suggest.APIKey)
	}
	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("ReadTimeout = %v, want 45s", cfg.Server.ReadTimeout)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true from env")
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := NewDefault()
	cfg.Server.ListenAddress = "no-port"
	cfg.Suggest.Mode = "oracle"
	cfg.History.Backend = "postgres"
	cfg.Logging.Level = "loud"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want ValidationError", err)
	}
	if len(verr.Errors) != 4 {
		t.Errorf("collected %d errors, want 4: %v", len(verr.Errors), verr)
	}
	if !strings.Contains(verr.Error(), "suggest.mode") {
		t.Errorf("error text should name the field, got %q", verr.Error())
	}
}

func TestValidate_LLMModeRequiresBaseURL(t *testing.T) {
	cfg := NewDefault()
	cfg.Suggest.Mode = "llm"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() = nil, want error for llm mode without base_url")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T", err)
	}
	if verr.Errors[0].Field != "suggest.base_url" {
		t.Errorf("Field = %q, want suggest.base_url", verr.Errors[0].Field)
	}
}

func TestNewDefault_IsValid(t *testing.T) {
	if err := Validate(NewDefault()); err != nil {
		t.Fatalf("default configuration should validate, got %v", err)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.History.Backend = "memory"
	cfg.Logging.Level = "debug"

	ApplyDefaults(cfg)

	if cfg.History.Backend != "memory" {
		t.Errorf("Backend = %q, explicit value should survive defaults", cfg.History.Backend)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, explicit value should survive defaults", cfg.Logging.Level)
	}
	if cfg.Policy.Git.Branch != DefaultGitBranch {
		t.Errorf("Branch = %q, want default %q", cfg.Policy.Git.Branch, DefaultGitBranch)
	}
}
