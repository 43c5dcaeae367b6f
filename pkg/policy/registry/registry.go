package registry

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"shelfguard-hq/shelfguard/pkg/policy/rules"
)

// rulesFileName and metaFileName are the fixed file names inside each
// policy pack directory. The rules file is required; the metadata file
// is optional.
const (
	rulesFileName = "rules.yaml"
	metaFileName  = "meta.yaml"
)

// unknownPolicyID is the sentinel used when a pack carries no policy id
// at all; LoadAll normally defaults the id to the pack directory name
// before this can happen.
const unknownPolicyID = "unknown_policy"

// PackMeta describes a policy pack: which jurisdiction and categories
// it was written for.
type PackMeta struct {
	// PolicyID names the pack. Defaults to the pack's directory name
	// when the metadata omits it.
	PolicyID string

	// Markets lists the market codes the pack targets (informational;
	// selection uses per-rule scope).
	Markets []string

	// Categories lists the category taxonomy the pack targets
	// (informational; selection uses per-rule scope).
	Categories []string
}

// Pack is one loaded policy pack: its metadata plus its normalized
// rules. Packs are built once per load call and never written back.
type Pack struct {
	Meta  PackMeta
	Rules []rules.Rule
}

// Loader discovers policy packs under a storage root. A malformed or
// missing definition file never fails a load: a pack with an
// unparseable rules file contributes zero rules, and a directory with
// no rules file contributes no pack. One bad pack must not block
// evaluation against all others.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a pack loader. A nil logger falls back to
// slog.Default().
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// LoadAll reads every policy pack under root, one subdirectory per
// pack. The returned order follows directory iteration order; callers
// must not rely on cross-run ordering beyond "all packs present".
//
// Three on-disk shapes are accepted for the rules file:
//
//	(a) {meta: {...}, rules: [...]}
//	(b) {rules: [...]} with a sibling meta.yaml supplying {meta: {...}};
//	    when both provide meta, meta.yaml wins for overlapping keys
//	(c) a bare list of rules, metadata solely from meta.yaml
//
// The only error returned is a failure to read the root directory
// itself.
func (l *Loader) LoadAll(root string) ([]Pack, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, &LoadError{Path: root, Message: "failed to read policy root", Cause: err}
	}

	var packs []Pack
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(root, entry.Name())
		rulesDoc, ok := l.loadDocument(filepath.Join(dir, rulesFileName))
		if !ok {
			// No rules file: the directory contributes no pack.
			continue
		}
		metaDoc, _ := l.loadDocument(filepath.Join(dir, metaFileName))

		pack := buildPack(entry.Name(), rulesDoc, metaDoc)
		l.logger.Debug("loaded policy pack",
			"policy_id", pack.Meta.PolicyID,
			"rules", len(pack.Rules),
		)
		packs = append(packs, pack)
	}

	return packs, nil
}

// loadDocument reads and parses one YAML definition file. A missing
// file reports ok=false; a present but unparseable file is treated as
// an empty mapping (ok=true) so the pack degrades to zero rules
// instead of failing the load.
func (l *Loader) loadDocument(path string) (any, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn("failed to read policy file, treating as empty",
				"path", path, "error", err)
			return map[string]any{}, true
		}
		return nil, false
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		l.logger.Warn("failed to parse policy file, treating as empty",
			"path", path, "error", err)
		return map[string]any{}, true
	}
	if doc == nil {
		return map[string]any{}, true
	}
	return doc, true
}

// buildPack normalizes the permitted on-disk shapes into one pack.
func buildPack(dirName string, rulesDoc, metaDoc any) Pack {
	var rawRules []any
	var meta map[string]any

	metaFromSibling := metaSection(metaDoc)

	switch doc := rulesDoc.(type) {
	case []any:
		// Shape (c): the rules file is a bare list.
		rawRules = doc
		meta = metaFromSibling
	case map[string]any:
		// Shapes (a) and (b): meta.yaml values overlay the rules
		// file's own meta section.
		rawRules, _ = doc["rules"].([]any)
		meta = mergeMeta(metaSection(rulesDoc), metaFromSibling)
	default:
		meta = metaFromSibling
	}

	packMeta := PackMeta{
		PolicyID:   stringValue(meta, "policy_id"),
		Markets:    stringList(meta, "market"),
		Categories: stringList(meta, "categories"),
	}
	if packMeta.PolicyID == "" {
		packMeta.PolicyID = dirName
	}

	normalized := make([]rules.Rule, 0, len(rawRules))
	for _, raw := range rawRules {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		normalized = append(normalized, rules.FromMap(m))
	}

	return Pack{Meta: packMeta, Rules: normalized}
}

// metaSection extracts the "meta" mapping from a parsed document.
func metaSection(doc any) map[string]any {
	m, ok := doc.(map[string]any)
	if !ok {
		return nil
	}
	meta, _ := m["meta"].(map[string]any)
	return meta
}

// mergeMeta combines two meta mappings; overlay values win for
// overlapping keys.
func mergeMeta(underlay, overlay map[string]any) map[string]any {
	if len(underlay) == 0 {
		return overlay
	}
	merged := make(map[string]any, len(underlay)+len(overlay))
	for k, v := range underlay {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}

func stringValue(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// stringList accepts both a single string and a list of strings, since
// hand-written pack metadata uses either.
func stringList(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// SelectRules filters every rule in every pack down to those applicable
// to the requested market and categories, annotating each selected rule
// with its pack's policy id. Output is a flat list in pack order with
// no deduplication: a rule id duplicated across two packs yields two
// entries, disambiguated later by evaluator namespacing.
//
// Market match is exact membership: a rule with no market scope applies
// everywhere. Category match is deliberately fuzzy (case-insensitive
// substring containment in either direction) because category
// taxonomies are inconsistent across catalogs; see the package
// documentation for the known false-positive limitation this carries.
func SelectRules(packs []Pack, market string, categories []string) []rules.Rule {
	var selected []rules.Rule

	for _, pack := range packs {
		policyID := pack.Meta.PolicyID
		if policyID == "" {
			policyID = unknownPolicyID
		}

		for _, rule := range pack.Rules {
			if !marketMatch(rule.Scope, market) || !categoryMatch(rule.Scope, categories) {
				continue
			}
			// Rules are immutable: annotate a copy, never the
			// pack's own record.
			annotated := rule
			annotated.PolicyID = policyID
			selected = append(selected, annotated)
		}
	}

	return selected
}

// marketMatch reports whether the rule applies to the requested market.
// An absent or empty market scope applies everywhere; otherwise the
// requested market must be an exact member of the scope list.
func marketMatch(scope *rules.Scope, market string) bool {
	if scope == nil || len(scope.Markets) == 0 {
		return true
	}
	for _, m := range scope.Markets {
		if m == market {
			return true
		}
	}
	return false
}

// categoryMatch reports whether the rule applies to any of the
// requested categories. An empty request accepts all rules, and an
// absent category scope applies to all categories. Otherwise any
// requested category matching any scoped category, case-insensitively
// and by substring containment in either direction, selects the rule.
func categoryMatch(scope *rules.Scope, categories []string) bool {
	if len(categories) == 0 {
		return true
	}
	if scope == nil || len(scope.Categories) == 0 {
		return true
	}
	for _, scoped := range scope.Categories {
		a := normalizeCategory(scoped)
		if a == "" {
			continue
		}
		for _, requested := range categories {
			b := normalizeCategory(requested)
			if b == "" {
				continue
			}
			if a == b || strings.Contains(a, b) || strings.Contains(b, a) {
				return true
			}
		}
	}
	return false
}

func normalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
