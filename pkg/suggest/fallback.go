package suggest

import (
	"context"
	"strings"
	"unicode"

	"shelfguard-hq/shelfguard/pkg/policy/rules"
)

// RuleBased is the deterministic suggester: it derives edits directly
// from failed findings, so it needs no external service and always
// produces the same output for the same input.
type RuleBased struct {
	// TitleLimit is the target maximum title length. Defaults to 200.
	TitleLimit int

	// MaxBullets is the target bullet count. Defaults to 5.
	MaxBullets int
}

// NewRuleBased creates the deterministic suggester with the default
// title and bullet limits.
func NewRuleBased() *RuleBased {
	return &RuleBased{TitleLimit: 200, MaxBullets: 5}
}

// Suggest derives up to MaxSuggestions edits from the client listing's
// failed findings. It never returns an error.
func (s *RuleBased) Suggest(_ context.Context, in Input) ([]Recommendation, error) {
	titleLimit := s.TitleLimit
	if titleLimit <= 0 {
		titleLimit = 200
	}
	maxBullets := s.MaxBullets
	if maxBullets <= 0 {
		maxBullets = 5
	}

	var recs []Recommendation

	if rec, ok := s.bulletEdit(in, maxBullets); ok {
		recs = append(recs, rec)
	}
	if rec, ok := s.titleEdit(in, titleLimit); ok {
		recs = append(recs, rec)
	}
	if rec, ok := s.descriptionEdit(in); ok {
		recs = append(recs, rec)
	}
	if rec, ok := s.capitalizationEdit(in); ok {
		recs = append(recs, rec)
	}

	if len(recs) > MaxSuggestions {
		recs = recs[:MaxSuggestions]
	}
	return recs, nil
}

// sectionFailed reports whether any finding failed for the section.
func sectionFailed(findings []rules.Finding, section rules.Section) bool {
	for _, f := range findings {
		if f.Section == section && !f.Passed {
			return true
		}
	}
	return false
}

// failedRefs collects the namespaced ids of the section's failed
// findings for the recommendation's references.
func failedRefs(findings []rules.Finding, section rules.Section) []string {
	var refs []string
	for _, f := range findings {
		if f.Section == section && !f.Passed {
			refs = append(refs, f.RuleID)
		}
	}
	return refs
}

func formatBullets(bullets []string) string {
	lines := make([]string, len(bullets))
	for i, b := range bullets {
		lines[i] = "- " + b
	}
	return strings.Join(lines, "\n")
}

// bulletEdit trims bullets to the limit and strips trailing
// punctuation when any bullets rule failed.
func (s *RuleBased) bulletEdit(in Input, maxBullets int) (Recommendation, bool) {
	if !sectionFailed(in.ClientFindings, rules.SectionBullets) {
		return Recommendation{}, false
	}

	before := in.Client.Bullets()
	after := make([]string, 0, maxBullets)
	for _, b := range before {
		if len(after) == maxBullets {
			break
		}
		trimmed := strings.TrimRightFunc(b, func(r rune) bool {
			return unicode.IsSpace(r) || strings.ContainsRune(".;:!", r)
		})
		if trimmed != "" {
			after = append(after, trimmed)
		}
	}
	// A listing without usable bullets can seed them from the title.
	if len(after) == 0 && in.Client.Title() != "" {
		for _, part := range strings.Split(in.Client.Title(), ",") {
			if len(after) == maxBullets {
				break
			}
			if text := strings.TrimSpace(part); text != "" {
				after = append(after, text)
			}
		}
	}
	if len(after) == 0 {
		return Recommendation{}, false
	}

	return Recommendation{
		Section:    rules.SectionBullets,
		Title:      "Bullets: reduce count and remove end punctuation",
		Before:     formatBullets(before),
		After:      formatBullets(after),
		Rationale:  "Keep bullets as sentence fragments without ending punctuation, within the allowed count.",
		References: failedRefs(in.ClientFindings, rules.SectionBullets),
	}, true
}

// titleEdit truncates an over-length title.
func (s *RuleBased) titleEdit(in Input, limit int) (Recommendation, bool) {
	title := in.Client.Title()
	runes := []rune(title)
	if len(runes) <= limit {
		return Recommendation{}, false
	}

	return Recommendation{
		Section:    rules.SectionTitle,
		Title:      "Title: shorten to the allowed length",
		Before:     title,
		After:      strings.TrimRight(string(runes[:limit]), " "),
		Rationale:  "Keep titles concise.",
		References: failedRefs(in.ClientFindings, rules.SectionTitle),
	}, true
}

// descriptionEdit synthesizes a concise description when the listing
// has none, drawing on the title and leading bullets.
func (s *RuleBased) descriptionEdit(in Input) (Recommendation, bool) {
	if strings.TrimSpace(in.Client.Description()) != "" {
		return Recommendation{}, false
	}

	var parts []string
	if title := in.Client.Title(); title != "" {
		parts = append(parts, strings.TrimRight(title, "."))
	}
	for i, b := range in.Client.Bullets() {
		if i == 2 {
			break
		}
		if text := strings.TrimRight(strings.TrimSpace(b), ".;:!"); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return Recommendation{}, false
	}

	return Recommendation{
		Section:    rules.SectionDescription,
		Title:      "Description: add a concise, unique paragraph",
		Before:     "(empty)",
		After:      strings.Join(parts, ". ") + ".",
		Rationale:  "Provide a concise, truthful description distinct from the bullets.",
		References: failedRefs(in.ClientFindings, rules.SectionDescription),
	}, true
}

// capitalizationEdit uppercases the first letter of each bullet when a
// capitalization rule failed.
func (s *RuleBased) capitalizationEdit(in Input) (Recommendation, bool) {
	bullets := in.Client.Bullets()
	if len(bullets) == 0 {
		return Recommendation{}, false
	}

	changed := false
	after := make([]string, len(bullets))
	for i, b := range bullets {
		fixed := capitalizeFirstLetter(strings.TrimLeft(b, "-• \t"))
		after[i] = fixed
		if fixed != b {
			changed = true
		}
	}
	if !changed || !sectionFailed(in.ClientFindings, rules.SectionBullets) {
		return Recommendation{}, false
	}

	return Recommendation{
		Section:    rules.SectionBullets,
		Title:      "Bullets: start each with a capital letter",
		Before:     formatBullets(bullets),
		After:      formatBullets(after),
		Rationale:  "Bullets start with a capital letter and carry no list markers.",
		References: failedRefs(in.ClientFindings, rules.SectionBullets),
	}, true
}

func capitalizeFirstLetter(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			break
		}
	}
	return string(runes)
}
