package catalog

import (
	"reflect"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses runs", "too   many    spaces", "too many spaces"},
		{"converts nbsp", "non breaking", "non breaking"},
		{"trims ends", "  padded  ", "padded"},
		{"tabs and newlines", "line\none\ttab", "line one tab"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.in); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_DoesNotMutateOriginal(t *testing.T) {
	original := SKU{
		ID:              "A1",
		TitleText:       "  Spaced   title ",
		BulletPoints:    []string{" bullet one "},
		DescriptionText: "desc\n\nhere",
	}

	normalized := Normalize(original)

	want := SKU{
		ID:              "A1",
		TitleText:       "Spaced title",
		BulletPoints:    []string{"bullet one"},
		DescriptionText: "desc here",
	}
	if !reflect.DeepEqual(normalized, want) {
		t.Errorf("Normalize() = %+v, want %+v", normalized, want)
	}

	if original.TitleText != "  Spaced   title " || original.BulletPoints[0] != " bullet one " {
		t.Error("Normalize() mutated its input")
	}
}
