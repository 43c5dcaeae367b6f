// Package suggest generates compliant rewrite suggestions for a client
// listing. A deterministic rule-based suggester derives edits from
// failed findings; an optional LLM-backed suggester can propose richer
// edits, with the rule-based one topping up any shortfall so the
// pipeline always returns a fixed number of suggestions.
package suggest

import (
	"context"

	"shelfguard-hq/shelfguard/pkg/catalog"
	"shelfguard-hq/shelfguard/pkg/compare"
	"shelfguard-hq/shelfguard/pkg/policy/rules"
)

// MaxSuggestions is the number of suggested edits a report carries.
const MaxSuggestions = 3

// Recommendation is one suggested edit: what to change, from what, to
// what, and why.
type Recommendation struct {
	// Section names the listing field the edit targets.
	Section rules.Section `json:"section"`

	// Title is a one-line summary of the edit.
	Title string `json:"title"`

	// Before is the current content.
	Before string `json:"before"`

	// After is the proposed compliant content.
	After string `json:"after"`

	// Rationale explains the edit.
	Rationale string `json:"rationale"`

	// References lists the rule ids or style guide notes backing the
	// edit.
	References []string `json:"references,omitempty"`
}

// Input is everything a suggester may draw on.
type Input struct {
	// Client is the listing being improved.
	Client catalog.SKU

	// Competitor is the listing being compared against.
	Competitor catalog.SKU

	// Comparison is the metric/policy table for both listings.
	Comparison []compare.Row

	// ClientFindings are the policy findings for the client listing.
	ClientFindings []rules.Finding

	// StyleguideRefs are human-readable rule summaries for grounding.
	StyleguideRefs []string
}

// Suggester proposes compliant edits for the client listing. A
// suggester returning fewer than MaxSuggestions recommendations is
// fine; the pipeline tops up from the rule-based suggester.
type Suggester interface {
	Suggest(ctx context.Context, in Input) ([]Recommendation, error)
}

// TopUp returns primary extended with fallback recommendations until
// MaxSuggestions is reached, then truncated to exactly that count.
// Recommendations without an After body are dropped first: an edit
// with nothing to apply is noise.
func TopUp(primary, fallback []Recommendation) []Recommendation {
	out := make([]Recommendation, 0, MaxSuggestions)
	for _, rec := range primary {
		if rec.After == "" {
			continue
		}
		out = append(out, rec)
		if len(out) == MaxSuggestions {
			return out
		}
	}
	for _, rec := range fallback {
		if rec.After == "" {
			continue
		}
		out = append(out, rec)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}
