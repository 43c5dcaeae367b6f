// Package compare builds the side-by-side comparison table for two
// listings: descriptive metrics per section, plus policy aggregation
// rows summarizing findings by severity.
package compare

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"shelfguard-hq/shelfguard/pkg/policy/rules"
	"shelfguard-hq/shelfguard/pkg/scoring"
)

// Row is one comparison table line. Cells are pre-formatted strings so
// the renderer needs no knowledge of metric types; numeric gaps carry
// client minus competitor.
type Row struct {
	Section    string `json:"section"`
	Metric     string `json:"metric"`
	Client     string `json:"client"`
	Competitor string `json:"competitor"`
	Gap        string `json:"gap"`
}

// notApplicable is the cell rendered for a metric with no value.
const notApplicable = "n/a"

// scoredSections are the sections carrying descriptive metrics, in
// table order.
var scoredSections = []rules.Section{
	rules.SectionTitle,
	rules.SectionBullets,
	rules.SectionDescription,
}

// BuildTable assembles the full comparison: metric rows per section,
// a compact failed-rule summary, and policy count rows overall and per
// section.
func BuildTable(clientScores, competitorScores scoring.Scores, clientFindings, competitorFindings []rules.Finding) []Row {
	var table []Row

	for _, section := range scoredSections {
		table = append(table, metricRows(section, clientScores[section], competitorScores[section])...)
	}

	table = append(table, Row{
		Section:    "policy:violations",
		Metric:     "failed_rules",
		Client:     compactRuleIDs(failedRuleIDs(clientFindings), 3),
		Competitor: compactRuleIDs(failedRuleIDs(competitorFindings), 3),
		Gap:        "-",
	})

	table = append(table, policyRows("overall", clientFindings, competitorFindings)...)
	table = append(table, policySectionRows(clientFindings, competitorFindings)...)

	return table
}

// metricRows aligns one section's metrics across both listings, in the
// client metric order.
func metricRows(section rules.Section, client, competitor scoring.SectionScores) []Row {
	rows := make([]Row, 0, len(client.Metrics))
	for _, m := range client.Metrics {
		cv, cok := valueOf(m)
		kv, kok := competitor.Metric(m.Name)

		gap := "-"
		if cok && kok {
			gap = formatMetric(cv - kv)
		}

		rows = append(rows, Row{
			Section:    string(section),
			Metric:     m.Name,
			Client:     formatCell(cv, cok),
			Competitor: formatCell(kv, kok),
			Gap:        gap,
		})
	}
	return rows
}

func valueOf(m scoring.Metric) (float64, bool) {
	if m.Value == nil {
		return 0, false
	}
	return *m.Value, true
}

func formatCell(v float64, ok bool) string {
	if !ok {
		return notApplicable
	}
	return formatMetric(v)
}

// formatMetric renders whole numbers without decimals and everything
// else with two.
func formatMetric(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// policyCounts tallies findings, optionally restricted to one section.
// Failed findings split into errors and warnings (info counts with
// warnings, matching how reports aggregate them).
func policyCounts(findings []rules.Finding, section rules.Section) (total, errors, warnings int) {
	for _, f := range findings {
		if section != "" && f.Section != section {
			continue
		}
		total++
		if f.Passed {
			continue
		}
		if f.Severity == rules.SeverityError {
			errors++
		} else {
			warnings++
		}
	}
	return total, errors, warnings
}

func policyRows(tag string, clientFindings, competitorFindings []rules.Finding) []Row {
	ct, ce, cw := policyCounts(clientFindings, "")
	kt, ke, kw := policyCounts(competitorFindings, "")

	section := "policy:" + tag
	return []Row{
		{Section: section, Metric: "rules_total", Client: strconv.Itoa(ct), Competitor: strconv.Itoa(kt), Gap: "-"},
		{Section: section, Metric: "errors", Client: strconv.Itoa(ce), Competitor: strconv.Itoa(ke), Gap: strconv.Itoa(ce - ke)},
		{Section: section, Metric: "warnings", Client: strconv.Itoa(cw), Competitor: strconv.Itoa(kw), Gap: strconv.Itoa(cw - kw)},
	}
}

func policySectionRows(clientFindings, competitorFindings []rules.Finding) []Row {
	var rows []Row
	for _, section := range scoredSections {
		_, ce, cw := policyCounts(clientFindings, section)
		_, ke, kw := policyCounts(competitorFindings, section)

		tag := "policy:" + string(section)
		rows = append(rows,
			Row{Section: tag, Metric: "errors", Client: strconv.Itoa(ce), Competitor: strconv.Itoa(ke), Gap: strconv.Itoa(ce - ke)},
			Row{Section: tag, Metric: "warnings", Client: strconv.Itoa(cw), Competitor: strconv.Itoa(kw), Gap: strconv.Itoa(cw - kw)},
		)
	}
	return rows
}

// failedRuleIDs collects the namespaced ids of failed findings, in
// finding order.
func failedRuleIDs(findings []rules.Finding) []string {
	var ids []string
	for _, f := range findings {
		if !f.Passed && f.RuleID != "" {
			ids = append(ids, f.RuleID)
		}
	}
	return ids
}

// compactRuleIDs renders "A, B, C +2 more" style summaries.
func compactRuleIDs(ids []string, n int) string {
	if len(ids) == 0 {
		return "none"
	}
	head := ids
	if len(head) > n {
		head = head[:n]
	}
	s := strings.Join(head, ", ")
	if rest := len(ids) - len(head); rest > 0 {
		s += fmt.Sprintf(" +%d more", rest)
	}
	return s
}
