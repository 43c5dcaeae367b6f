package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"shelfguard-hq/shelfguard/pkg/config"
)

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("pack loaded", "policy_id", "core", "rules", 4)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "pack loaded" {
		t.Errorf("msg = %v, want pack loaded", entry["msg"])
	}
	if entry["policy_id"] != "core" {
		t.Errorf("policy_id = %v, want core", entry["policy_id"])
	}
}

func TestNew_LevelGating(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("should be suppressed")
	logger.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should be suppressed") {
		t.Error("info entry emitted despite warn level")
	}
	if !strings.Contains(out, "should appear") {
		t.Error("warn entry missing")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(config.LoggingConfig{Level: "loud"}, nil); err == nil {
		t.Error("New() error = nil, want error for unknown level")
	}
	if _, err := New(config.LoggingConfig{Format: "xml"}, nil); err == nil {
		t.Error("New() error = nil, want error for unknown format")
	}
}

func TestInfoContext_CarriesRunFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithRunID(context.Background(), "run-123")
	ctx = WithMarket(ctx, "AE")
	ctx = WithSKU(ctx, "B00X")

	logger.InfoContext(ctx, "evaluation finished")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["run_id"] != "run-123" || entry["market"] != "AE" || entry["sku"] != "B00X" {
		t.Errorf("context fields missing from entry: %v", entry)
	}
}

func TestWith_FieldsOnEveryEntry(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	scoped := logger.With("component", "registry")
	scoped.Info("first")
	scoped.Info("second")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for _, line := range lines {
		if !strings.Contains(line, `"component":"registry"`) {
			t.Errorf("entry missing scoped field: %s", line)
		}
	}
}

func TestContextAccessors(t *testing.T) {
	ctx := context.Background()

	if got := GetRunID(ctx); got != "" {
		t.Errorf("GetRunID(empty) = %q, want empty", got)
	}

	ctx = WithRunID(ctx, "abc")
	if got := GetRunID(ctx); got != "abc" {
		t.Errorf("GetRunID = %q, want abc", got)
	}
}

func TestWrap_ContextFieldsReachOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := Wrap(slog.New(slog.NewJSONHandler(&buf, nil)))

	ctx := WithRunID(context.Background(), "run-42")
	logger.WarnContext(ctx, "suggester failed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["run_id"] != "run-42" {
		t.Errorf("run_id = %v, want run-42", entry["run_id"])
	}
	if entry["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", entry["level"])
	}
}

func TestWrap_NilFallsBackToDefault(t *testing.T) {
	logger := Wrap(nil)
	if logger.Slog() == nil {
		t.Fatal("Wrap(nil) returned a logger without a backing slog")
	}
}
