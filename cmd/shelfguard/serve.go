package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelfguard-hq/shelfguard/pkg/cli"
	"shelfguard-hq/shelfguard/pkg/config"
	"shelfguard-hq/shelfguard/pkg/history"
	"shelfguard-hq/shelfguard/pkg/pipeline"
	"shelfguard-hq/shelfguard/pkg/server"
	"shelfguard-hq/shelfguard/pkg/suggest"
	"shelfguard-hq/shelfguard/pkg/telemetry/logging"
	"shelfguard-hq/shelfguard/pkg/telemetry/metrics"
)

var serveFlags struct {
	listenAddress string
	packsDir      string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the shelfguard HTTP API",
	Long: `Start the shelfguard HTTP API with the specified configuration.

The server loads rule packs at startup and serves comparison runs,
rule inspection, and run history. Packs reload on file changes when
policy.watch is enabled and on a cron schedule when
policy.reload_schedule is set.

Examples:
  # Start with default config
  shelfguard serve

  # Start with custom config
  shelfguard serve --config /etc/shelfguard/config.yaml

  # Override listen address and packs directory
  shelfguard serve --listen 0.0.0.0:8080 --packs ./rule_packs

  # Validate config without starting
  shelfguard serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.packsDir, "packs", "", "override rule packs directory")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.packsDir != "" {
		cfg.Policy.PacksDir = serveFlags.packsDir
	}

	if serveFlags.dryRun {
		fmt.Println("configuration is valid")
		return nil
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Metrics, nil)
	}

	packs, err := server.NewPackManager(cfg.Policy, logger.Slog(), collector)
	if err != nil {
		return err
	}

	ctx := cli.SetupSignalHandler()
	if err := packs.Reload(ctx); err != nil {
		return fmt.Errorf("initial pack load failed: %w", err)
	}
	if cfg.Policy.Watch {
		if err := packs.StartWatch(ctx); err != nil {
			return fmt.Errorf("failed to start pack watcher: %w", err)
		}
	}
	if cfg.Policy.ReloadSchedule != "" {
		if err := packs.StartSchedule(ctx, cfg.Policy.ReloadSchedule); err != nil {
			return fmt.Errorf("failed to schedule pack reloads: %w", err)
		}
	}

	store, err := buildStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	p := pipeline.New(pipeline.Options{
		Logger:    logger.Slog(),
		Metrics:   collector,
		Store:     store,
		Suggester: buildSuggester(cfg, logger),
	})

	srv := server.NewServer(cfg, logger.Slog(), packs, p, store, collector)
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	return nil
}

// buildStore opens the configured history backend.
func buildStore(cfg *config.Config, logger *logging.Logger) (history.Store, error) {
	switch cfg.History.Backend {
	case "memory":
		return history.NewMemoryStore(), nil
	default:
		return history.NewSQLiteStore(history.DefaultSQLiteConfig(cfg.History.SQLitePath), logger.Slog())
	}
}

// buildSuggester returns the LLM suggester when configured, nil when
// the pipeline should rely on the rule-based one alone.
func buildSuggester(cfg *config.Config, logger *logging.Logger) suggest.Suggester {
	if cfg.Suggest.Mode == "fallback" || cfg.Suggest.BaseURL == "" {
		return nil
	}
	return suggest.NewLLM(suggest.LLMConfig{
		BaseURL: cfg.Suggest.BaseURL,
		APIKey:  cfg.Suggest.APIKey,
		Model:   cfg.Suggest.Model,
		Timeout: cfg.Suggest.Timeout,
	}, logger.Slog())
}
