package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"shelfguard-hq/shelfguard/pkg/catalog"
	"shelfguard-hq/shelfguard/pkg/compare"
	"shelfguard-hq/shelfguard/pkg/history"
	"shelfguard-hq/shelfguard/pkg/policy/registry"
	"shelfguard-hq/shelfguard/pkg/policy/rules"
	"shelfguard-hq/shelfguard/pkg/report"
	"shelfguard-hq/shelfguard/pkg/scoring"
	"shelfguard-hq/shelfguard/pkg/suggest"
	"shelfguard-hq/shelfguard/pkg/telemetry/logging"
	"shelfguard-hq/shelfguard/pkg/telemetry/metrics"
)

// Request describes one comparison run.
type Request struct {
	// CatalogPath is the CSV export holding both listings.
	CatalogPath string `json:"catalog_path,omitempty"`

	// ClientSKU and CompetitorSKU identify the two listings.
	ClientSKU     string `json:"client_sku"`
	CompetitorSKU string `json:"competitor_sku"`

	// Market and Categories scope rule selection.
	Market     string   `json:"market"`
	Categories []string `json:"categories,omitempty"`
}

// Draft is the post-edit listing content, seeded from the suggestions
// and falling back to the client's current content per section.
type Draft struct {
	Title       string   `json:"title"`
	Bullets     []string `json:"bullets"`
	Description string   `json:"description"`
}

// Result is the full payload of a comparison run.
type Result struct {
	RunID      string   `json:"run_id"`
	Market     string   `json:"market"`
	Categories []string `json:"categories,omitempty"`

	Client     catalog.SKU `json:"client"`
	Competitor catalog.SKU `json:"competitor"`

	ClientFindings     []rules.Finding `json:"client_findings"`
	CompetitorFindings []rules.Finding `json:"competitor_findings"`

	Comparison  []compare.Row            `json:"comparison"`
	Suggestions []suggest.Recommendation `json:"suggestions"`
	Draft       Draft                    `json:"draft"`

	Errors   int  `json:"errors"`
	Warnings int  `json:"warnings"`
	Approved bool `json:"approved"`

	ReportMarkdown string `json:"report_markdown"`
}

// Pipeline orchestrates a comparison run: catalog load, normalization,
// rule evaluation, scoring, comparison, suggestions, report rendering,
// and history persistence.
type Pipeline struct {
	logger    *logging.Logger
	metrics   *metrics.Collector
	store     history.Store
	suggester suggest.Suggester
	fallback  *suggest.RuleBased
}

// Options configures optional pipeline collaborators. Every field may
// be left zero: the pipeline then runs without metrics or persistence
// and uses the rule-based suggester alone.
type Options struct {
	Logger    *slog.Logger
	Metrics   *metrics.Collector
	Store     history.Store
	Suggester suggest.Suggester
}

// New creates a pipeline. Logging goes through the telemetry wrapper
// so the run fields attached to the context reach every log line.
func New(opts Options) *Pipeline {
	return &Pipeline{
		logger:    logging.Wrap(opts.Logger).With("component", "pipeline"),
		metrics:   opts.Metrics,
		store:     opts.Store,
		suggester: opts.Suggester,
		fallback:  suggest.NewRuleBased(),
	}
}

// Run executes one comparison against the given rule packs.
func (p *Pipeline) Run(ctx context.Context, packs []registry.Pack, req Request) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	ctx = logging.WithMarket(ctx, req.Market)
	ctx = logging.WithSKU(ctx, req.ClientSKU)

	result, err := p.run(ctx, runID, packs, req)

	if p.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		p.metrics.Pipeline().RecordRun(outcome, time.Since(start))
	}
	if err != nil {
		p.logger.ErrorContext(ctx, "comparison run failed", "error", err)
		return nil, err
	}

	p.logger.InfoContext(ctx, "comparison run finished",
		"errors", result.Errors,
		"warnings", result.Warnings,
		"approved", result.Approved,
		"duration", time.Since(start),
	)
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, runID string, packs []registry.Pack, req Request) (*Result, error) {
	cat, err := catalog.LoadCSV(req.CatalogPath)
	if err != nil {
		return nil, err
	}
	clientRaw, competitorRaw, err := cat.SelectSKUs(req.ClientSKU, req.CompetitorSKU)
	if err != nil {
		return nil, err
	}
	client := catalog.Normalize(clientRaw)
	competitor := catalog.Normalize(competitorRaw)

	selected := registry.SelectRules(packs, req.Market, req.Categories)
	if p.metrics != nil {
		p.metrics.Policy().RecordSelection(req.Market, len(selected))
	}

	evalStart := time.Now()
	clientFindings := rules.ValidateWithRules(client, selected)
	competitorFindings := rules.ValidateWithRules(competitor, selected)
	if p.metrics != nil {
		p.metrics.Policy().ObserveEvaluationDuration(time.Since(evalStart))
		for _, f := range clientFindings {
			p.metrics.Policy().RecordEvaluation(string(f.Section))
			p.metrics.Policy().RecordFinding(string(f.Severity), f.Passed)
		}
	}

	clientScores := scoring.ScoreAll(client)
	competitorScores := scoring.ScoreAll(competitor)
	comparison := compare.BuildTable(clientScores, competitorScores, clientFindings, competitorFindings)

	suggestions := p.suggestions(ctx, suggest.Input{
		Client:         client,
		Competitor:     competitor,
		Comparison:     comparison,
		ClientFindings: clientFindings,
		StyleguideRefs: styleguideRefs(selected),
	})

	errCount, warnCount := countFailures(clientFindings)
	approved := errCount == 0

	result := &Result{
		RunID:              runID,
		Market:             req.Market,
		Categories:         req.Categories,
		Client:             client,
		Competitor:         competitor,
		ClientFindings:     clientFindings,
		CompetitorFindings: competitorFindings,
		Comparison:         comparison,
		Suggestions:        suggestions,
		Draft:              buildDraft(client, suggestions),
		Errors:             errCount,
		Warnings:           warnCount,
		Approved:           approved,
	}

	result.ReportMarkdown = report.RenderMarkdown(report.Input{
		Client:             client,
		Competitor:         competitor,
		Comparison:         comparison,
		Suggestions:        suggestions,
		ClientFindings:     clientFindings,
		CompetitorFindings: competitorFindings,
		Approved:           approved,
	})

	p.persist(ctx, result)
	return result, nil
}

// suggestions runs the configured suggester and tops up from the
// rule-based one so the result always carries MaxSuggestions edits
// when any edit is derivable. A suggester failure degrades to the
// rule-based output rather than failing the run.
func (p *Pipeline) suggestions(ctx context.Context, in suggest.Input) []suggest.Recommendation {
	fallbackRecs, err := p.fallback.Suggest(ctx, in)
	if err != nil {
		fallbackRecs = nil
	}

	if p.suggester == nil {
		if p.metrics != nil {
			p.metrics.Pipeline().RecordSuggestions("fallback", len(fallbackRecs))
		}
		return suggest.TopUp(fallbackRecs, nil)
	}

	primary, err := p.suggester.Suggest(ctx, in)
	if err != nil {
		p.logger.WarnContext(ctx, "suggester failed, using rule-based suggestions", "error", err)
		if p.metrics != nil {
			p.metrics.Pipeline().RecordSuggestions("fallback", len(fallbackRecs))
		}
		return suggest.TopUp(fallbackRecs, nil)
	}

	if p.metrics != nil {
		p.metrics.Pipeline().RecordSuggestions("llm", len(primary))
	}
	return suggest.TopUp(primary, fallbackRecs)
}

func (p *Pipeline) persist(ctx context.Context, result *Result) {
	if p.store == nil {
		return
	}

	run := &history.Run{
		ID:            result.RunID,
		CreatedAt:     time.Now().UTC(),
		Market:        result.Market,
		Categories:    result.Categories,
		ClientSKU:     result.Client.ID,
		CompetitorSKU: result.Competitor.ID,
		Errors:        result.Errors,
		Warnings:      result.Warnings,
		Approved:      result.Approved,
		Findings:      result.ClientFindings,
		Suggestions:   result.Suggestions,
		Report:        result.ReportMarkdown,
	}
	if err := p.store.Save(ctx, run); err != nil {
		// Persistence is best effort; the caller still gets the result.
		p.logger.ErrorContext(ctx, "failed to persist run", "error", err)
	}
}

// styleguideRefs renders selected rules as human-readable references
// for the suggester prompt.
func styleguideRefs(selected []rules.Rule) []string {
	refs := make([]string, 0, len(selected))
	for _, rule := range selected {
		ref := fmt.Sprintf("%s:%s – %s", rule.PolicyID, rule.ID, rule.Message)
		refs = append(refs, strings.TrimRight(strings.TrimSpace(ref), "–- "))
	}
	return refs
}

func countFailures(findings []rules.Finding) (errors, warnings int) {
	for _, f := range findings {
		if f.Passed {
			continue
		}
		if f.Severity == rules.SeverityError {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}

// buildDraft seeds each section from the first applicable suggestion,
// falling back to the client's current content.
func buildDraft(client catalog.SKU, suggestions []suggest.Recommendation) Draft {
	draft := Draft{
		Title:       client.TitleText,
		Bullets:     client.BulletPoints,
		Description: client.DescriptionText,
	}

	for _, rec := range suggestions {
		if strings.TrimSpace(rec.After) == "" {
			continue
		}
		switch rec.Section {
		case rules.SectionTitle:
			if draft.Title == client.TitleText {
				draft.Title = rec.After
			}
		case rules.SectionBullets:
			if equalStrings(draft.Bullets, client.BulletPoints) {
				draft.Bullets = coerceBullets(rec.After)
			}
		case rules.SectionDescription:
			if draft.Description == client.DescriptionText {
				draft.Description = rec.After
			}
		}
	}

	return draft
}

// coerceBullets turns a suggested bullets body (one bullet per line,
// possibly dash-prefixed) back into a list.
func coerceBullets(after string) []string {
	var bullets []string
	for _, line := range strings.Split(after, "\n") {
		line = strings.Trim(line, "-• \t")
		if line != "" {
			bullets = append(bullets, line)
		}
	}
	if len(bullets) == 0 {
		return []string{strings.TrimSpace(after)}
	}
	return bullets
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
