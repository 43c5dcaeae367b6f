package registry

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CollapsesRapidTriggers(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)
	defer d.stop()

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Errorf("callback ran %d times, want 1 (rapid triggers collapse)", got)
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)

	var calls atomic.Int32
	d.trigger(func() { calls.Add(1) })
	d.stop()

	time.Sleep(100 * time.Millisecond)

	if got := calls.Load(); got != 0 {
		t.Errorf("callback ran %d times after stop, want 0", got)
	}
}

func TestWatcher_TriggersReloadOnRuleChange(t *testing.T) {
	root := t.TempDir()
	writePack(t, root, "pack", "rules: []\n", "")

	w, err := NewWatcher(root, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v, want nil", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan struct{}, 1)
	go func() {
		_ = w.Watch(ctx, func() error {
			select {
			case reloaded <- struct{}{}:
			default:
			}
			return nil
		})
	}()
	defer func() { _ = w.Stop() }()

	// No settling sleep: NewWatcher registers the tree before
	// returning, so a write immediately after must be observed.
	path := filepath.Join(root, "pack", "rules.yaml")
	if err := os.WriteFile(path, []byte("rules:\n  - {id: R1, section: title, type: max_length}\n"), 0o644); err != nil {
		t.Fatalf("failed to rewrite rules.yaml: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(3 * time.Second):
		t.Fatal("reload callback not invoked within 3s of rules.yaml change")
	}
}

func TestNewWatcher_MissingRoot(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "absent"), 0, nil)
	if err == nil {
		t.Fatal("NewWatcher() error = nil, want error for missing root")
	}
}

func TestWatcher_StopAfterContextCancel(t *testing.T) {
	root := t.TempDir()
	writePack(t, root, "pack", "rules: []\n", "")

	w, err := NewWatcher(root, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v, want nil", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Watch(ctx, func() error { return nil })
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Watch did not return after context cancellation")
	}

	// Stop must still close the fsnotify watcher (and stay idempotent)
	// when the run loop already exited on its own.
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() after cancel error = %v, want nil", err)
	}
	select {
	case _, ok := <-w.watcher.Events:
		if ok {
			t.Error("events channel still open after Stop")
		}
	case <-time.After(time.Second):
		t.Error("events channel not closed after Stop")
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v, want nil", err)
	}
}
