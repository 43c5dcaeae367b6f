package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shelfguard-hq/shelfguard/pkg/policy/rules"
)

// writePack creates one policy pack directory under root with the given
// file contents. Empty content skips the file entirely.
func writePack(t *testing.T, root, name, rulesYAML, metaYAML string) {
	t.Helper()

	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create pack dir: %v", err)
	}
	if rulesYAML != "" {
		if err := os.WriteFile(filepath.Join(dir, "rules.yaml"), []byte(rulesYAML), 0o644); err != nil {
			t.Fatalf("failed to write rules.yaml: %v", err)
		}
	}
	if metaYAML != "" {
		if err := os.WriteFile(filepath.Join(dir, "meta.yaml"), []byte(metaYAML), 0o644); err != nil {
			t.Fatalf("failed to write meta.yaml: %v", err)
		}
	}
}

func findPack(packs []Pack, policyID string) (Pack, bool) {
	for _, p := range packs {
		if p.Meta.PolicyID == policyID {
			return p, true
		}
	}
	return Pack{}, false
}

func TestLoader_LoadAll_CombinedShape(t *testing.T) {
	root := t.TempDir()
	writePack(t, root, "pet-supplies_ae_2018", `
meta:
  policy_id: pet-supplies_ae_2018
  market: [AE]
  categories: [PetSupplies]
rules:
  - id: TITLE_LENGTH
    section: title
    type: max_length
    params: {value: 200}
    severity: error
    message: Keep titles concise.
`, "")

	packs, err := NewLoader(nil).LoadAll(root)
	if err != nil {
		t.Fatalf("LoadAll() error = %v, want nil", err)
	}
	if len(packs) != 1 {
		t.Fatalf("LoadAll() returned %d packs, want 1", len(packs))
	}

	pack := packs[0]
	if pack.Meta.PolicyID != "pet-supplies_ae_2018" {
		t.Errorf("PolicyID = %q, want %q", pack.Meta.PolicyID, "pet-supplies_ae_2018")
	}
	if len(pack.Meta.Markets) != 1 || pack.Meta.Markets[0] != "AE" {
		t.Errorf("Markets = %v, want [AE]", pack.Meta.Markets)
	}
	if len(pack.Rules) != 1 {
		t.Fatalf("pack has %d rules, want 1", len(pack.Rules))
	}

	rule := pack.Rules[0]
	if rule.ID != "TITLE_LENGTH" || rule.Section != rules.SectionTitle || rule.Type != "max_length" {
		t.Errorf("rule = %+v, want TITLE_LENGTH/title/max_length", rule)
	}
	if rule.Severity != rules.SeverityError {
		t.Errorf("rule severity = %q, want error", rule.Severity)
	}
	if v, ok := rule.Params.Int("value"); !ok || v != 200 {
		t.Errorf("rule params value = (%d, %v), want (200, true)", v, ok)
	}
}

func TestLoader_LoadAll_SplitMetaShape(t *testing.T) {
	root := t.TempDir()
	writePack(t, root, "split", `
rules:
  - {id: R1, section: title, type: max_length, params: {value: 10}}
`, `
meta:
  policy_id: grocery_ae_2021
`)

	packs, err := NewLoader(nil).LoadAll(root)
	if err != nil {
		t.Fatalf("LoadAll() error = %v, want nil", err)
	}
	pack, ok := findPack(packs, "grocery_ae_2021")
	if !ok {
		t.Fatalf("pack grocery_ae_2021 not found in %+v", packs)
	}
	if len(pack.Rules) != 1 {
		t.Errorf("pack has %d rules, want 1", len(pack.Rules))
	}
}

func TestLoader_LoadAll_MetaFilePrecedence(t *testing.T) {
	root := t.TempDir()
	writePack(t, root, "overlap", `
meta:
  policy_id: from_rules_file
  market: [AE]
rules: []
`, `
meta:
  policy_id: from_meta_file
`)

	packs, err := NewLoader(nil).LoadAll(root)
	if err != nil {
		t.Fatalf("LoadAll() error = %v, want nil", err)
	}
	if len(packs) != 1 {
		t.Fatalf("LoadAll() returned %d packs, want 1", len(packs))
	}

	// meta.yaml wins for overlapping keys; rules file meta underlays
	// the rest.
	if packs[0].Meta.PolicyID != "from_meta_file" {
		t.Errorf("PolicyID = %q, want %q (meta.yaml precedence)", packs[0].Meta.PolicyID, "from_meta_file")
	}
	if len(packs[0].Meta.Markets) != 1 || packs[0].Meta.Markets[0] != "AE" {
		t.Errorf("Markets = %v, want [AE] carried from rules file meta", packs[0].Meta.Markets)
	}
}

func TestLoader_LoadAll_BareListShape(t *testing.T) {
	root := t.TempDir()
	writePack(t, root, "barelist", `
- {id: R1, section: bullets, type: max_count, params: {value: 5}}
- {id: R2, section: bullets, type: no_ending_punct}
`, `
meta:
  policy_id: bare_pack
`)

	packs, err := NewLoader(nil).LoadAll(root)
	if err != nil {
		t.Fatalf("LoadAll() error = %v, want nil", err)
	}
	pack, ok := findPack(packs, "bare_pack")
	if !ok {
		t.Fatalf("pack bare_pack not found")
	}
	if len(pack.Rules) != 2 {
		t.Errorf("pack has %d rules, want 2", len(pack.Rules))
	}
}

func TestLoader_LoadAll_MissingRulesFileSkipsPack(t *testing.T) {
	root := t.TempDir()
	writePack(t, root, "no-rules", "", "meta:\n  policy_id: orphan\n")
	writePack(t, root, "has-rules", "rules: []\n", "")

	packs, err := NewLoader(nil).LoadAll(root)
	if err != nil {
		t.Fatalf("LoadAll() error = %v, want nil", err)
	}
	if len(packs) != 1 {
		t.Fatalf("LoadAll() returned %d packs, want 1 (dir without rules.yaml skipped)", len(packs))
	}
	if packs[0].Meta.PolicyID != "has-rules" {
		t.Errorf("PolicyID = %q, want %q", packs[0].Meta.PolicyID, "has-rules")
	}
}

func TestLoader_LoadAll_MalformedYAMLYieldsEmptyPack(t *testing.T) {
	root := t.TempDir()
	writePack(t, root, "broken", "rules: [unterminated\n  - ::bad::\n", "")

	packs, err := NewLoader(nil).LoadAll(root)
	if err != nil {
		t.Fatalf("LoadAll() error = %v, want nil (malformed pack degrades, never fails)", err)
	}
	if len(packs) != 1 {
		t.Fatalf("LoadAll() returned %d packs, want 1", len(packs))
	}
	if len(packs[0].Rules) != 0 {
		t.Errorf("malformed pack has %d rules, want 0", len(packs[0].Rules))
	}
	if packs[0].Meta.PolicyID != "broken" {
		t.Errorf("PolicyID = %q, want directory name fallback %q", packs[0].Meta.PolicyID, "broken")
	}
}

func TestLoader_LoadAll_PolicyIDDefaultsToDirName(t *testing.T) {
	root := t.TempDir()
	writePack(t, root, "anon-pack", "rules: []\n", "")

	packs, err := NewLoader(nil).LoadAll(root)
	if err != nil {
		t.Fatalf("LoadAll() error = %v, want nil", err)
	}
	if packs[0].Meta.PolicyID != "anon-pack" {
		t.Errorf("PolicyID = %q, want %q", packs[0].Meta.PolicyID, "anon-pack")
	}
}

func TestLoader_LoadAll_RootMissing(t *testing.T) {
	_, err := NewLoader(nil).LoadAll(filepath.Join(t.TempDir(), "nonexistent"))
	if err == nil {
		t.Fatal("LoadAll() error = nil, want error for missing root")
	}
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("LoadAll() error type = %T, want *LoadError", err)
	}
}

func TestLoader_LoadAll_IgnoresLooseFiles(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "README.md"), []byte("# docs"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	writePack(t, root, "real", "rules: []\n", "")

	packs, err := NewLoader(nil).LoadAll(root)
	if err != nil {
		t.Fatalf("LoadAll() error = %v, want nil", err)
	}
	if len(packs) != 1 {
		t.Errorf("LoadAll() returned %d packs, want 1 (loose files ignored)", len(packs))
	}
}

func scopedRule(id string, markets, categories []string) rules.Rule {
	r := rules.Rule{ID: id, Section: rules.SectionTitle, Type: "max_length"}
	if len(markets) > 0 || len(categories) > 0 {
		r.Scope = &rules.Scope{Markets: markets, Categories: categories}
	}
	return r
}

func TestSelectRules_MarketScope(t *testing.T) {
	packs := []Pack{{
		Meta: PackMeta{PolicyID: "p1"},
		Rules: []rules.Rule{
			scopedRule("AE_ONLY", []string{"AE"}, nil),
			scopedRule("US_ONLY", []string{"US"}, nil),
			scopedRule("ANY_MARKET", nil, nil),
		},
	}}

	selected := SelectRules(packs, "AE", nil)

	ids := make([]string, len(selected))
	for i, r := range selected {
		ids[i] = r.ID
	}
	if len(ids) != 2 || ids[0] != "AE_ONLY" || ids[1] != "ANY_MARKET" {
		t.Errorf("selected ids = %v, want [AE_ONLY ANY_MARKET]", ids)
	}
}

func TestSelectRules_MarketMatchIsExact(t *testing.T) {
	packs := []Pack{{
		Meta:  PackMeta{PolicyID: "p1"},
		Rules: []rules.Rule{scopedRule("AE_ONLY", []string{"AE"}, nil)},
	}}

	if got := SelectRules(packs, "ae", nil); len(got) != 0 {
		t.Errorf("SelectRules with lowercase market selected %d rules, want 0 (exact membership)", len(got))
	}
}

func TestSelectRules_CategoryScope(t *testing.T) {
	packs := []Pack{{
		Meta: PackMeta{PolicyID: "p1"},
		Rules: []rules.Rule{
			scopedRule("PETS", nil, []string{"PetSupplies"}),
			scopedRule("GROCERY", nil, []string{"Grocery"}),
			scopedRule("ALL_CATS", nil, nil),
		},
	}}

	tests := []struct {
		name       string
		categories []string
		wantIDs    []string
	}{
		{"empty request accepts all", nil, []string{"PETS", "GROCERY", "ALL_CATS"}},
		{"exact category", []string{"PetSupplies"}, []string{"PETS", "ALL_CATS"}},
		{"substring of scoped", []string{"pet"}, []string{"PETS", "ALL_CATS"}},
		{"scoped is substring of requested", []string{"PetSuppliesAndFood"}, []string{"PETS", "ALL_CATS"}},
		{"unrelated category", []string{"Dog"}, []string{"ALL_CATS"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selected := SelectRules(packs, "AE", tt.categories)
			ids := make([]string, len(selected))
			for i, r := range selected {
				ids[i] = r.ID
			}
			if len(ids) != len(tt.wantIDs) {
				t.Fatalf("selected ids = %v, want %v", ids, tt.wantIDs)
			}
			for i := range ids {
				if ids[i] != tt.wantIDs[i] {
					t.Fatalf("selected ids = %v, want %v", ids, tt.wantIDs)
				}
			}
		})
	}
}

func TestSelectRules_AnnotatesPolicyIDOnCopy(t *testing.T) {
	pack := Pack{
		Meta:  PackMeta{PolicyID: "pet-supplies_ae_2018"},
		Rules: []rules.Rule{scopedRule("TITLE_LENGTH", nil, nil)},
	}

	selected := SelectRules([]Pack{pack}, "AE", nil)
	if len(selected) != 1 {
		t.Fatalf("SelectRules() returned %d rules, want 1", len(selected))
	}
	if selected[0].PolicyID != "pet-supplies_ae_2018" {
		t.Errorf("PolicyID = %q, want %q", selected[0].PolicyID, "pet-supplies_ae_2018")
	}

	// Selection must not mutate the pack's own rule.
	if pack.Rules[0].PolicyID != "" {
		t.Errorf("source rule PolicyID = %q, want unchanged empty string", pack.Rules[0].PolicyID)
	}
}

func TestSelectRules_UnknownPolicySentinel(t *testing.T) {
	packs := []Pack{{Rules: []rules.Rule{scopedRule("R1", nil, nil)}}}

	selected := SelectRules(packs, "AE", nil)
	if len(selected) != 1 {
		t.Fatalf("SelectRules() returned %d rules, want 1", len(selected))
	}
	if selected[0].PolicyID != "unknown_policy" {
		t.Errorf("PolicyID = %q, want sentinel %q", selected[0].PolicyID, "unknown_policy")
	}
}

func TestSelectRules_NoDeduplicationAcrossPacks(t *testing.T) {
	packs := []Pack{
		{Meta: PackMeta{PolicyID: "p1"}, Rules: []rules.Rule{scopedRule("SHARED_ID", nil, nil)}},
		{Meta: PackMeta{PolicyID: "p2"}, Rules: []rules.Rule{scopedRule("SHARED_ID", nil, nil)}},
	}

	selected := SelectRules(packs, "AE", nil)
	if len(selected) != 2 {
		t.Fatalf("SelectRules() returned %d rules, want 2 (no dedup across packs)", len(selected))
	}
	if selected[0].PolicyID == selected[1].PolicyID {
		t.Errorf("both rules carry policy id %q, want distinct pack ids", selected[0].PolicyID)
	}
}
