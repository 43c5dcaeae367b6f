package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"shelfguard-hq/shelfguard/pkg/config"
	"shelfguard-hq/shelfguard/pkg/policy/git"
	"shelfguard-hq/shelfguard/pkg/policy/registry"
	"shelfguard-hq/shelfguard/pkg/telemetry/metrics"
)

// PackManager owns the live set of rule packs. It reloads them from
// disk (optionally synced from git first) and swaps the set atomically
// so in-flight evaluations keep a consistent view.
type PackManager struct {
	loader  *registry.Loader
	dir     string
	source  *git.Source
	logger  *slog.Logger
	metrics *metrics.Collector

	mu    sync.RWMutex
	packs []registry.Pack

	watcher *registry.Watcher
	cron    *cron.Cron
}

// NewPackManager creates a manager loading packs from cfg.PacksDir.
// When cfg.Git.Repo is set, every reload first syncs the checkout and
// loads from the checkout's pack subdirectory instead.
func NewPackManager(cfg config.PolicyConfig, logger *slog.Logger, collector *metrics.Collector) (*PackManager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "packs")

	m := &PackManager{
		loader:  registry.NewLoader(logger),
		dir:     cfg.PacksDir,
		logger:  logger,
		metrics: collector,
	}

	if cfg.Git.Repo != "" {
		source, err := git.NewSource(cfg.Git)
		if err != nil {
			return nil, err
		}
		m.source = source
		m.dir = source.PacksDir()
	}

	return m, nil
}

// Packs returns the current pack set. The returned slice must not be
// mutated.
func (m *PackManager) Packs() []registry.Pack {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.packs
}

// Reload loads the pack set from storage and swaps it in. A git-backed
// manager syncs the checkout first.
func (m *PackManager) Reload(ctx context.Context) error {
	if m.source != nil {
		if _, err := m.source.Sync(ctx); err != nil {
			m.recordLoad("error", nil)
			return err
		}
	}

	packs, err := m.loader.LoadAll(m.dir)
	if err != nil {
		m.recordLoad("error", nil)
		return err
	}

	m.mu.Lock()
	m.packs = packs
	m.mu.Unlock()

	counts := make(map[string]int, len(packs))
	for _, pack := range packs {
		counts[pack.Meta.PolicyID] = len(pack.Rules)
	}
	m.recordLoad("ok", counts)

	m.logger.Info("rule packs loaded", "packs", len(packs))
	return nil
}

func (m *PackManager) recordLoad(outcome string, counts map[string]int) {
	if m.metrics != nil {
		m.metrics.Policy().RecordPackLoad(outcome, counts)
	}
}

// StartWatch reloads the pack set whenever pack files change on disk.
// The watch tree is registered before StartWatch returns, so changes
// made immediately afterwards are picked up.
func (m *PackManager) StartWatch(ctx context.Context) error {
	watcher, err := registry.NewWatcher(m.dir, registry.DefaultDebounceInterval, m.logger)
	if err != nil {
		return err
	}
	m.watcher = watcher

	go func() {
		err := watcher.Watch(ctx, func() error {
			return m.Reload(ctx)
		})
		if err != nil && ctx.Err() == nil {
			m.logger.Error("pack watcher stopped", "error", err)
		}
	}()
	return nil
}

// StartSchedule reloads the pack set on a cron schedule.
func (m *PackManager) StartSchedule(ctx context.Context, schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := m.Reload(ctx); err != nil {
			m.logger.Error("scheduled pack reload failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	m.cron = c
	c.Start()
	return nil
}

// Stop halts the watcher and scheduler.
func (m *PackManager) Stop() {
	if m.watcher != nil {
		if err := m.watcher.Stop(); err != nil {
			m.logger.Error("failed to stop pack watcher", "error", err)
		}
	}
	if m.cron != nil {
		m.cron.Stop()
	}
}
