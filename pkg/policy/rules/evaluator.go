package rules

// Item is the shape the evaluator needs from a listing record. Any
// type exposing the four section accessors can be validated; the
// evaluator has no other dependency on the catalog.
type Item interface {
	// Title returns the listing title.
	Title() string

	// Bullets returns the key feature bullets.
	Bullets() []string

	// Description returns the long description.
	Description() string

	// Images returns the image URLs.
	Images() []string
}

// Finding is the evaluator's verdict for one (item, rule) pair. It is
// pure data: the evaluator does not retain findings after returning
// them.
type Finding struct {
	// Section is the listing field the rule checked.
	Section Section `json:"section"`

	// RuleID is the namespaced rule identity, "<policy_id>:<id>" when
	// the rule was selected from a pack, or the bare id otherwise.
	RuleID string `json:"rule_id"`

	// Passed reports whether the check was satisfied.
	Passed bool `json:"passed"`

	// Message is the rule's human-readable rationale, prefixed with
	// the namespaced id when a policy id is present.
	Message string `json:"message"`

	// Citation references the policy text behind the rule.
	Citation string `json:"citation,omitempty"`

	// Severity is copied from the rule for downstream aggregation.
	Severity Severity `json:"severity"`
}

// sectionGetters is the fixed accessor table keyed by the closed
// Section enum. Rules naming any other section are skipped by the
// evaluator; there is no silent default.
var sectionGetters = map[Section]func(Item) any{
	SectionTitle:       func(it Item) any { return it.Title() },
	SectionBullets:     func(it Item) any { return it.Bullets() },
	SectionDescription: func(it Item) any { return it.Description() },
	SectionImages:      func(it Item) any { return it.Images() },
}

// ValidateWithRules runs the given rules against a single item and
// returns one finding per evaluated rule, in input order.
//
// Rules whose section is not one of the four known sections, or whose
// type has no check implementation, contribute nothing: they are
// skipped without a finding, which is distinct from a failing check.
// The function never returns an error; malformed rule parameters make
// the affected check pass (fail-open), per the check library contract.
func ValidateWithRules(item Item, selected []Rule) []Finding {
	findings := make([]Finding, 0, len(selected))

	for _, rule := range selected {
		getter, ok := sectionGetters[rule.Section]
		if !ok {
			continue
		}

		check, ok := Check(rule.Type)
		if !ok {
			continue
		}

		passed := check(getter(item), rule.Params)

		severity := rule.Severity
		if severity == "" {
			severity = SeverityWarning
		}

		ruleID := rule.ID
		message := rule.Message
		if message == "" {
			message = rule.ID
		}
		if rule.PolicyID != "" {
			ruleID = rule.PolicyID + ":" + rule.ID
			message = ruleID + " – " + message
		}

		findings = append(findings, Finding{
			Section:  rule.Section,
			RuleID:   ruleID,
			Passed:   passed,
			Message:  message,
			Citation: rule.Citation,
			Severity: severity,
		})
	}

	return findings
}
