package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelfguard-hq/shelfguard/pkg/cli"
	"shelfguard-hq/shelfguard/pkg/policy/registry"
	"shelfguard-hq/shelfguard/pkg/policy/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate rule packs",
}

var rulesListFlags struct {
	dir        string
	market     string
	categories []string
	format     string
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the rules selected for a market",
	Long: `Load the rule packs and print the rules that would apply for the
given market and categories.

Examples:
  # All rules applying in the AE market
  shelfguard rules list --market AE

  # Scoped to a category, JSON output
  shelfguard rules list --market AE --category "Pet Supplies" --format json`,
	RunE: runRulesList,
}

var rulesLintFlags struct {
	dir    string
	strict bool
}

var rulesLintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate rule packs",
	Long: `Load the rule packs and report definitions the evaluator would
silently skip: unknown sections, unknown check types, and packs that
contribute no rules at all.

The engine is fail-open by design, so these are warnings rather than
load failures. With --strict the command exits non-zero when any are
found, which is the useful mode for CI.`,
	RunE: runRulesLint,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesLintCmd)

	rulesListCmd.Flags().StringVarP(&rulesListFlags.dir, "dir", "d", "", "rule packs directory (defaults to policy.packs_dir)")
	rulesListCmd.Flags().StringVar(&rulesListFlags.market, "market", "", "marketplace code")
	rulesListCmd.Flags().StringArrayVar(&rulesListFlags.categories, "category", nil, "category scope (repeatable)")
	rulesListCmd.Flags().StringVar(&rulesListFlags.format, "format", "text", "output format: text, json")

	rulesLintCmd.Flags().StringVarP(&rulesLintFlags.dir, "dir", "d", "", "rule packs directory (defaults to policy.packs_dir)")
	rulesLintCmd.Flags().BoolVar(&rulesLintFlags.strict, "strict", false, "exit non-zero on warnings")
}

func loadPacks(dir string) ([]registry.Pack, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = cfg.Policy.PacksDir
	}
	logger, err := buildLogger(cfg)
	if err != nil {
		return nil, err
	}
	return registry.NewLoader(logger.Slog()).LoadAll(dir)
}

func runRulesList(cmd *cobra.Command, args []string) error {
	packs, err := loadPacks(rulesListFlags.dir)
	if err != nil {
		return err
	}

	selected := registry.SelectRules(packs, rulesListFlags.market, rulesListFlags.categories)

	format := cli.OutputFormat(rulesListFlags.format)
	formatter, err := cli.NewFormatter(format)
	if err != nil {
		return err
	}
	if format == cli.FormatJSON {
		return formatter.FormatTo(cmd.OutOrStdout(), selected)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d rules selected (market=%q, categories=%v)\n", len(selected), rulesListFlags.market, rulesListFlags.categories)
	for _, rule := range selected {
		severity := rule.Severity
		if severity == "" {
			severity = rules.SeverityWarning
		}
		fmt.Fprintf(out, "  %-8s %-12s %s:%s  %s\n", severity, rule.Section, rule.PolicyID, rule.ID, rule.Message)
	}
	return nil
}

func runRulesLint(cmd *cobra.Command, args []string) error {
	packs, err := loadPacks(rulesLintFlags.dir)
	if err != nil {
		return err
	}

	knownSections := map[rules.Section]bool{
		rules.SectionTitle:       true,
		rules.SectionBullets:     true,
		rules.SectionDescription: true,
		rules.SectionImages:      true,
	}

	out := cmd.OutOrStdout()
	warnings := 0
	warn := func(format string, args ...any) {
		warnings++
		fmt.Fprintf(out, "warning: "+format+"\n", args...)
	}

	for _, pack := range packs {
		if len(pack.Rules) == 0 {
			warn("pack %q contributes no rules", pack.Meta.PolicyID)
			continue
		}
		for _, rule := range pack.Rules {
			if rule.ID == "" {
				warn("pack %q has a rule without an id", pack.Meta.PolicyID)
			}
			if !knownSections[rule.Section] {
				warn("%s:%s targets unknown section %q (rule will be skipped)", pack.Meta.PolicyID, rule.ID, rule.Section)
			}
			if _, ok := rules.Check(rule.Type); !ok {
				warn("%s:%s uses unknown check type %q (rule will be skipped)", pack.Meta.PolicyID, rule.ID, rule.Type)
			}
		}
	}

	fmt.Fprintf(out, "%d packs checked, %d warnings\n", len(packs), warnings)
	if warnings > 0 && rulesLintFlags.strict {
		return fmt.Errorf("lint found %d warnings", warnings)
	}
	return nil
}
