package rules

import (
	"reflect"
	"testing"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
	}{
		{"info", SeverityInfo},
		{"warning", SeverityWarning},
		{"error", SeverityError},
		{"ERROR", SeverityError},
		{"  info ", SeverityInfo},
		{"", SeverityWarning},
		{"critical", SeverityWarning},
	}

	for _, tt := range tests {
		if got := ParseSeverity(tt.in); got != tt.want {
			t.Errorf("ParseSeverity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParams_Int(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		wantN  int
		wantOK bool
	}{
		{"int", Params{"value": 5}, 5, true},
		{"int64", Params{"value": int64(7)}, 7, true},
		{"float64", Params{"value": float64(9)}, 9, true},
		{"string rejected", Params{"value": "5"}, 0, false},
		{"absent", Params{}, 0, false},
		{"nil map", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := tt.params.Int("value")
			if n != tt.wantN || ok != tt.wantOK {
				t.Errorf("Int(\"value\") = (%d, %v), want (%d, %v)", n, ok, tt.wantN, tt.wantOK)
			}
		})
	}
}

func TestFromMap(t *testing.T) {
	m := map[string]any{
		"id":       "TITLE_LENGTH",
		"section":  "title",
		"type":     "max_length",
		"params":   map[string]any{"value": 200},
		"severity": "error",
		"message":  "Keep titles concise.",
		"citation": "Style guide p.4",
		"scope": map[string]any{
			"market":     []any{"AE", "SA"},
			"categories": []any{"PetSupplies"},
		},
	}

	got := FromMap(m)

	want := Rule{
		ID:       "TITLE_LENGTH",
		Section:  SectionTitle,
		Type:     "max_length",
		Params:   Params{"value": 200},
		Severity: SeverityError,
		Message:  "Keep titles concise.",
		Citation: "Style guide p.4",
		Scope: &Scope{
			Markets:    []string{"AE", "SA"},
			Categories: []string{"PetSupplies"},
		},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("FromMap() = %+v, want %+v", got, want)
	}
}

func TestFromMap_Defaults(t *testing.T) {
	got := FromMap(map[string]any{"id": "R1", "section": "title", "type": "max_length"})

	if got.Severity != SeverityWarning {
		t.Errorf("Severity = %q, want default %q", got.Severity, SeverityWarning)
	}
	if got.Scope != nil {
		t.Errorf("Scope = %+v, want nil for absent scope", got.Scope)
	}
	if got.Params != nil {
		t.Errorf("Params = %+v, want nil for absent params", got.Params)
	}
}

func TestFromMap_EmptyScopeListsDropped(t *testing.T) {
	got := FromMap(map[string]any{
		"id": "R1", "section": "title", "type": "max_length",
		"scope": map[string]any{"market": []any{}, "categories": []any{}},
	})

	if got.Scope != nil {
		t.Errorf("Scope = %+v, want nil when both scope lists are empty", got.Scope)
	}
}
