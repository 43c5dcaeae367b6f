package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shelfguard-hq/shelfguard/pkg/cli"
	"shelfguard-hq/shelfguard/pkg/config"
	"shelfguard-hq/shelfguard/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "shelfguard",
	Short: "Shelfguard - jurisdiction-aware listing compliance engine",
	Long: `Shelfguard evaluates e-commerce listings against market- and
category-scoped policy rule packs, compares client listings against
competitors, and produces compliant rewrite suggestions.

It provides:
  - A YAML rule pack registry with market/category selection
  - A fail-open check library for titles, bullets, and descriptions
  - Section scoring and client/competitor comparison tables
  - Rule-based and LLM-backed edit suggestions
  - Markdown compliance reports and persisted run history`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configured file, falling back to defaults when
// the default config path does not exist.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		return config.NewDefault(), nil
	}
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err.Error())
	}
	return cfg, nil
}

// buildLogger creates the process logger from the config, honoring the
// --verbose flag.
func buildLogger(cfg *config.Config) (*logging.Logger, error) {
	logCfg := cfg.Logging
	if verbose {
		logCfg.Level = "debug"
	}
	return logging.New(logCfg, os.Stderr)
}
