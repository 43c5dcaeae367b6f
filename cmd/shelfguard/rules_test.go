package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePack(t *testing.T, root, name, content string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "rules.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRulesLint_CleanPack(t *testing.T) {
	root := t.TempDir()
	writePack(t, root, "core", `meta:
  policy_id: core
rules:
  - id: TITLE_LENGTH
    section: title
    type: max_length
    params:
      value: 200
`)

	out, err := runCLI(t, "rules", "lint", "--dir", root)
	if err != nil {
		t.Fatalf("lint error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "0 warnings") {
		t.Errorf("clean pack should lint without warnings:\n%s", out)
	}
}

func TestRulesLint_WarnsOnSkippedRules(t *testing.T) {
	root := t.TempDir()
	writePack(t, root, "odd", `meta:
  policy_id: odd
rules:
  - id: WEIRD
    section: price
    type: max_length
  - id: NOVEL
    section: title
    type: sentiment_check
`)

	out, err := runCLI(t, "rules", "lint", "--dir", root)
	if err != nil {
		t.Fatalf("lint without --strict should not fail: %v", err)
	}
	if !strings.Contains(out, `unknown section "price"`) {
		t.Errorf("missing unknown-section warning:\n%s", out)
	}
	if !strings.Contains(out, `unknown check type "sentiment_check"`) {
		t.Errorf("missing unknown-type warning:\n%s", out)
	}

	if _, err := runCLI(t, "rules", "lint", "--dir", root, "--strict"); err == nil {
		t.Error("lint --strict should fail on warnings")
	}
}

func TestRulesList_Text(t *testing.T) {
	root := t.TempDir()
	writePack(t, root, "core", `meta:
  policy_id: core
rules:
  - id: TITLE_LENGTH
    section: title
    type: max_length
    params:
      value: 200
    message: Keep titles concise.
  - id: DE_ONLY
    section: title
    type: min_length
    params:
      value: 5
    scope:
      market: [DE]
`)

	out, err := runCLI(t, "rules", "list", "--dir", root, "--market", "AE")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out, "1 rules selected") {
		t.Errorf("market scoping not applied:\n%s", out)
	}
	if !strings.Contains(out, "core:TITLE_LENGTH") {
		t.Errorf("missing namespaced rule id:\n%s", out)
	}
}
