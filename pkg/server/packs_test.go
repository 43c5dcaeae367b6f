package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shelfguard-hq/shelfguard/pkg/config"
)

func TestPackManager_ReloadMissingDir(t *testing.T) {
	manager, err := NewPackManager(config.PolicyConfig{
		PacksDir: filepath.Join(t.TempDir(), "does-not-exist"),
	}, nil, nil)
	if err != nil {
		t.Fatalf("NewPackManager() error = %v", err)
	}

	if err := manager.Reload(context.Background()); err == nil {
		t.Error("Reload() error = nil, want error for missing root")
	}
	if got := manager.Packs(); len(got) != 0 {
		t.Errorf("Packs() after failed reload = %d, want 0", len(got))
	}
}

func TestPackManager_WatchReloadsOnChange(t *testing.T) {
	packsDir := t.TempDir()
	packDir := filepath.Join(packsDir, "core")
	if err := os.MkdirAll(packDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(packDir, "rules.yaml"), []byte("policy_id: core\nrules: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	manager, err := NewPackManager(config.PolicyConfig{PacksDir: packsDir}, nil, nil)
	if err != nil {
		t.Fatalf("NewPackManager() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := manager.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if err := manager.StartWatch(ctx); err != nil {
		t.Fatalf("StartWatch() error = %v", err)
	}
	defer manager.Stop()

	rules := "meta:\n  policy_id: core\nrules:\n  - id: R1\n    section: title\n    type: max_length\n    params:\n      value: 10\n"
	if err := os.WriteFile(filepath.Join(packDir, "rules.yaml"), []byte(rules), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		packs := manager.Packs()
		if len(packs) == 1 && len(packs[0].Rules) == 1 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("watcher did not reload packs, have %+v", packs)
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestPackManager_ScheduleRejectsBadExpression(t *testing.T) {
	manager, err := NewPackManager(config.PolicyConfig{PacksDir: t.TempDir()}, nil, nil)
	if err != nil {
		t.Fatalf("NewPackManager() error = %v", err)
	}
	if err := manager.StartSchedule(context.Background(), "not a cron expr"); err == nil {
		t.Error("StartSchedule() error = nil, want error for invalid expression")
	}
}
