package catalog

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeText collapses whitespace runs to single spaces, converts
// non-breaking spaces, and trims the ends. Catalog exports are full of
// stray NBSPs and doubled spaces that would otherwise skew length
// checks and scoring.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Normalize returns a copy of the SKU with all text sections
// whitespace-normalized. The original value is left untouched.
func Normalize(s SKU) SKU {
	out := s
	out.TitleText = NormalizeText(s.TitleText)
	out.DescriptionText = NormalizeText(s.DescriptionText)
	if len(s.BulletPoints) > 0 {
		out.BulletPoints = make([]string, len(s.BulletPoints))
		for i, b := range s.BulletPoints {
			out.BulletPoints[i] = NormalizeText(b)
		}
	}
	return out
}
