package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shelfguard-hq/shelfguard/pkg/cli"
	"shelfguard-hq/shelfguard/pkg/pipeline"
	"shelfguard-hq/shelfguard/pkg/policy/registry"
)

var compareFlags struct {
	catalog    string
	client     string
	competitor string
	market     string
	categories []string
	output     string
	jsonOut    bool
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare a client listing against a competitor",
	Long: `Run a full comparison: evaluate both listings against the selected
rule packs, score and compare the sections, generate suggested edits,
and render a markdown report.

Examples:
  # Compare two listings
  shelfguard compare --catalog data/catalog.csv --client B00X --competitor B00Y --market AE

  # Scope rules to a category and save the report
  shelfguard compare --catalog data/catalog.csv --client B00X --competitor B00Y \
    --market AE --category "Pet Supplies" --output report.md

  # Emit the full result payload as JSON
  shelfguard compare --catalog data/catalog.csv --client B00X --competitor B00Y --json`,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVar(&compareFlags.catalog, "catalog", "", "catalog CSV path (defaults to catalog.csv_path from config)")
	compareCmd.Flags().StringVar(&compareFlags.client, "client", "", "client SKU id")
	compareCmd.Flags().StringVar(&compareFlags.competitor, "competitor", "", "competitor SKU id")
	compareCmd.Flags().StringVar(&compareFlags.market, "market", "AE", "marketplace code")
	compareCmd.Flags().StringArrayVar(&compareFlags.categories, "category", nil, "category scope (repeatable)")
	compareCmd.Flags().StringVarP(&compareFlags.output, "output", "o", "", "write the markdown report to a file")
	compareCmd.Flags().BoolVar(&compareFlags.jsonOut, "json", false, "print the full result payload as JSON")

	_ = compareCmd.MarkFlagRequired("client")
	_ = compareCmd.MarkFlagRequired("competitor")
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}

	catalogPath := compareFlags.catalog
	if catalogPath == "" {
		catalogPath = cfg.Catalog.CSVPath
	}
	if catalogPath == "" {
		return fmt.Errorf("no catalog: pass --catalog or set catalog.csv_path in the config")
	}

	loader := registry.NewLoader(logger.Slog())
	packs, err := loader.LoadAll(cfg.Policy.PacksDir)
	if err != nil {
		return fmt.Errorf("failed to load rule packs: %w", err)
	}

	store, err := buildStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	p := pipeline.New(pipeline.Options{
		Logger:    logger.Slog(),
		Store:     store,
		Suggester: buildSuggester(cfg, logger),
	})

	result, err := p.Run(cli.SetupSignalHandler(), packs, pipeline.Request{
		CatalogPath:   catalogPath,
		ClientSKU:     compareFlags.client,
		CompetitorSKU: compareFlags.competitor,
		Market:        compareFlags.market,
		Categories:    compareFlags.categories,
	})
	if err != nil {
		return err
	}

	if compareFlags.output != "" {
		if err := os.WriteFile(compareFlags.output, []byte(result.ReportMarkdown), 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "report written to %s (run %s)\n", compareFlags.output, result.RunID)
	}

	if compareFlags.jsonOut {
		formatter, err := cli.NewFormatter(cli.FormatJSON)
		if err != nil {
			return err
		}
		return formatter.FormatTo(cmd.OutOrStdout(), result)
	}

	if compareFlags.output == "" {
		fmt.Fprintln(cmd.OutOrStdout(), result.ReportMarkdown)
	}
	return nil
}
