// Package report renders comparison results into a markdown document:
// summary, comparison table, compliance findings per listing, and the
// top suggested edits.
package report

import (
	"fmt"
	"strings"

	"shelfguard-hq/shelfguard/pkg/catalog"
	"shelfguard-hq/shelfguard/pkg/compare"
	"shelfguard-hq/shelfguard/pkg/policy/rules"
	"shelfguard-hq/shelfguard/pkg/suggest"
)

// Input carries everything the renderer needs for one report.
type Input struct {
	Client             catalog.SKU
	Competitor         catalog.SKU
	Comparison         []compare.Row
	Suggestions        []suggest.Recommendation
	ClientFindings     []rules.Finding
	CompetitorFindings []rules.Finding
	Approved           bool
}

// RenderMarkdown produces the full comparison report.
func RenderMarkdown(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Competitor Content Intelligence: %s vs %s\n", in.Client.ID, in.Competitor.ID)
	fmt.Fprintf(&b, "**Client title:** %s\n", in.Client.TitleText)
	fmt.Fprintf(&b, "**Competitor title:** %s\n\n", in.Competitor.TitleText)

	b.WriteString("## Summary\n")
	b.WriteString("Compared title, bullets, and description; flagged compliance gaps.\n\n")

	b.WriteString("## Comparison Table\n")
	b.WriteString("| Section | Metric | Client | Competitor | Gap |\n")
	b.WriteString("|---|---|---:|---:|---:|\n")
	for _, row := range in.Comparison {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			row.Section, row.Metric, row.Client, row.Competitor, row.Gap)
	}
	b.WriteString("\n")

	b.WriteString("## Compliance Findings\n")
	writeFindingsTable(&b, "Client", in.ClientFindings)
	writeFindingsTable(&b, "Competitor", in.CompetitorFindings)
	b.WriteString("\n")

	b.WriteString("## Top 3 Suggested Edits (Compliant)\n")
	if len(in.Suggestions) == 0 {
		b.WriteString("_No suggestions available._\n\n")
	} else {
		for i, rec := range in.Suggestions {
			if i >= 3 {
				break
			}
			writeSuggestion(&b, i+1, rec)
		}
	}

	approved := "No"
	if in.Approved {
		approved = "Yes"
	}
	fmt.Fprintf(&b, "**Approved:** %s", approved)

	return b.String()
}

func writeFindingsTable(b *strings.Builder, title string, findings []rules.Finding) {
	fmt.Fprintf(b, "### %s\n", title)
	b.WriteString("| Rule | Section | Passed | Message | Citation |\n")
	b.WriteString("|---|---|:--:|---|---|\n")

	if len(findings) == 0 {
		b.WriteString("| (none) | - | - | - | - |\n")
		return
	}
	for _, f := range findings {
		passed := "❌"
		if f.Passed {
			passed = "✅"
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			f.RuleID, f.Section, passed, f.Message, f.Citation)
	}
}

func writeSuggestion(b *strings.Builder, n int, rec suggest.Recommendation) {
	fmt.Fprintf(b, "### %d. %s\n", n, rec.Title)
	b.WriteString("**Before**\n")
	b.WriteString(blockquote(rec.Before))
	b.WriteString("**After**\n")
	b.WriteString(blockquote(rec.After))
	if rec.Rationale != "" {
		fmt.Fprintf(b, "_Rationale:_ %s\n", rec.Rationale)
	}
	if len(rec.References) > 0 {
		fmt.Fprintf(b, "_References:_ %s\n", strings.Join(rec.References, "; "))
	}
	b.WriteString("\n")
}

// blockquote wraps text (possibly multi-line) as a markdown quote.
func blockquote(text string) string {
	if text == "" {
		return ">\n"
	}
	return "> " + strings.ReplaceAll(text, "\n", "\n> ") + "\n"
}
