package rules

import "strings"

// Section identifies the listing field a rule targets.
type Section string

const (
	// SectionTitle targets the listing title (a single string).
	SectionTitle Section = "title"

	// SectionBullets targets the key feature bullets (a list of strings).
	SectionBullets Section = "bullets"

	// SectionDescription targets the long description (a single string).
	SectionDescription Section = "description"

	// SectionImages targets the image URL list (a list of strings).
	SectionImages Section = "images"
)

// Severity classifies how serious a failed rule is for reporting.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ParseSeverity normalizes a severity string. Unrecognized or empty
// values default to SeverityWarning.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityInfo:
		return SeverityInfo
	case SeverityError:
		return SeverityError
	default:
		return SeverityWarning
	}
}

// Params is the open parameter mapping attached to a rule. Each check
// type defines which keys it reads; a key that is absent or of the
// wrong type is treated as missing, which makes the check pass
// (fail-open contract, see the checks package documentation).
type Params map[string]any

// Int returns the integer value for key. YAML decoding may produce
// int, int64, uint64 or float64 depending on the source document.
func (p Params) Int(key string) (int, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// String returns the string value for key.
func (p Params) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Scope restricts where a rule applies. Empty or absent lists mean
// "applies everywhere" for that dimension.
type Scope struct {
	// Markets is the list of market codes the rule applies to.
	Markets []string `yaml:"market"`

	// Categories is the list of category strings the rule applies to.
	Categories []string `yaml:"categories"`
}

// Rule is one parameterized content constraint from a policy pack.
//
// A Rule is immutable once constructed: selection copies and annotates,
// it never mutates a rule in place. IDs are unique within a pack only;
// the evaluator namespaces them with the owning pack's policy id.
type Rule struct {
	// ID identifies the rule within its policy pack.
	ID string `yaml:"id"`

	// Section is the listing field this rule checks.
	Section Section `yaml:"section"`

	// Type is the check library key (e.g. "max_length",
	// "forbidden_regex"). Rules with an unknown type are silently
	// skipped during evaluation, never treated as failures.
	Type string `yaml:"type"`

	// Params holds the check-specific parameters.
	Params Params `yaml:"params"`

	// Severity classifies failures for downstream aggregation.
	Severity Severity `yaml:"severity"`

	// Message is the human-readable rationale shown in findings.
	Message string `yaml:"message"`

	// Citation references the policy text the rule was derived from.
	Citation string `yaml:"citation"`

	// Scope restricts the markets/categories the rule applies to.
	Scope *Scope `yaml:"scope"`

	// PolicyID is assigned by the registry when the rule is selected
	// from a pack. It is not stored in the source rule.
	PolicyID string `yaml:"-"`
}

// FromMap builds the canonical Rule record from a loosely-typed mapping
// as decoded from a policy file. This is the single normalization point:
// everything downstream of the registry sees only Rule values.
func FromMap(m map[string]any) Rule {
	r := Rule{
		ID:       stringAt(m, "id"),
		Section:  Section(stringAt(m, "section")),
		Type:     stringAt(m, "type"),
		Severity: ParseSeverity(stringAt(m, "severity")),
		Message:  stringAt(m, "message"),
		Citation: stringAt(m, "citation"),
	}
	if p, ok := m["params"].(map[string]any); ok {
		r.Params = Params(p)
	}
	if s, ok := m["scope"].(map[string]any); ok {
		scope := &Scope{
			Markets:    stringsAt(s, "market"),
			Categories: stringsAt(s, "categories"),
		}
		if len(scope.Markets) > 0 || len(scope.Categories) > 0 {
			r.Scope = scope
		}
	}
	return r
}

func stringAt(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func stringsAt(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
