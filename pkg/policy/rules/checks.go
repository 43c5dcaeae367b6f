package rules

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CheckFunc is a pure predicate over one extracted section value.
//
// Every check is total and fails open: a value of the wrong shape for
// the check (a list check handed a string, or vice versa), a missing
// required parameter, or an uncompilable regex pattern all yield true
// (pass). A misconfigured rule must under-enforce, never block a
// listing or crash an evaluation. Do not "fix" this by adding strict
// shape validation; the contract is covered by tests.
type CheckFunc func(value any, params Params) bool

// checks maps rule type keys to their implementations. Rule types not
// present here are invisible to the evaluator: no finding is produced.
var checks = map[string]CheckFunc{
	"max_length":                  checkMaxLength,
	"min_length":                  checkMinLength,
	"max_count":                   checkMaxCount,
	"min_count":                   checkMinCount,
	"forbidden_regex":             checkForbiddenRegex,
	"required_regex":              checkRequiredRegex,
	"forbidden_regex_each":        checkForbiddenRegexEach,
	"no_ending_punct":             checkNoEndingPunct,
	"no_urls_emails":              checkNoURLsEmails,
	"bullets_capitalized":         checkBulletsCapitalized,
	"bullets_numbers_as_numerals": checkBulletsNumbersAsNumerals,
	"image_constraint":            checkImageConstraint,
}

// Check returns the check implementation for a rule type key.
func Check(ruleType string) (CheckFunc, bool) {
	fn, ok := checks[ruleType]
	return fn, ok
}

// compilePattern compiles the rule's regex with optional flags. Only
// the "i" flag (case-insensitive) is recognized.
func compilePattern(pattern, flags string) (*regexp.Regexp, error) {
	if strings.Contains(strings.ToLower(flags), "i") {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}

func checkMaxLength(value any, params Params) bool {
	s, ok := value.(string)
	if !ok {
		return true
	}
	limit, ok := params.Int("value")
	if !ok {
		return true
	}
	return utf8.RuneCountInString(s) <= limit
}

func checkMinLength(value any, params Params) bool {
	s, ok := value.(string)
	if !ok {
		return true
	}
	limit, ok := params.Int("value")
	if !ok {
		return true
	}
	return utf8.RuneCountInString(s) >= limit
}

func checkMaxCount(value any, params Params) bool {
	items, ok := value.([]string)
	if !ok {
		return true
	}
	limit, ok := params.Int("value")
	if !ok {
		return true
	}
	return len(items) <= limit
}

func checkMinCount(value any, params Params) bool {
	items, ok := value.([]string)
	if !ok {
		return true
	}
	limit, ok := params.Int("value")
	if !ok {
		return true
	}
	return len(items) >= limit
}

func checkForbiddenRegex(value any, params Params) bool {
	s, ok := value.(string)
	if !ok {
		return true
	}
	pattern, ok := params.String("pattern")
	if !ok || pattern == "" {
		return true
	}
	flags, _ := params.String("flags")
	re, err := compilePattern(pattern, flags)
	if err != nil {
		return true
	}
	return !re.MatchString(s)
}

func checkRequiredRegex(value any, params Params) bool {
	s, ok := value.(string)
	if !ok {
		return true
	}
	pattern, ok := params.String("pattern")
	if !ok || pattern == "" {
		return true
	}
	flags, _ := params.String("flags")
	re, err := compilePattern(pattern, flags)
	if err != nil {
		return true
	}
	return re.MatchString(s)
}

func checkForbiddenRegexEach(value any, params Params) bool {
	items, ok := value.([]string)
	if !ok {
		return true
	}
	pattern, ok := params.String("pattern")
	if !ok || pattern == "" {
		return true
	}
	flags, _ := params.String("flags")
	re, err := compilePattern(pattern, flags)
	if err != nil {
		return true
	}
	for _, item := range items {
		if re.MatchString(item) {
			return false
		}
	}
	return true
}

// defaultEndingPunct is the punctuation set bullets must not end with.
const defaultEndingPunct = ".;:!"

func checkNoEndingPunct(value any, params Params) bool {
	items, ok := value.([]string)
	if !ok {
		return true
	}
	punct, ok := params.String("punctuation")
	if !ok {
		punct = defaultEndingPunct
	}
	for _, item := range items {
		trimmed := strings.TrimRightFunc(item, unicode.IsSpace)
		if trimmed == "" {
			continue
		}
		last, _ := utf8.DecodeLastRuneInString(trimmed)
		if strings.ContainsRune(punct, last) {
			return false
		}
	}
	return true
}

var urlsEmailsPattern = regexp.MustCompile(`(?i)(https?://|www\.|\S+@\S+)`)

func checkNoURLsEmails(value any, _ Params) bool {
	s, ok := value.(string)
	if !ok {
		return true
	}
	return !urlsEmailsPattern.MatchString(s)
}

func checkBulletsCapitalized(value any, _ Params) bool {
	items, ok := value.([]string)
	if !ok {
		return true
	}
	for _, item := range items {
		// Strip leading bullet markers and indentation.
		text := strings.TrimLeft(item, "-• \t")
		for _, ch := range text {
			if unicode.IsLetter(ch) {
				if !unicode.IsUpper(ch) {
					return false
				}
				break
			}
		}
		// Items with no alphabetic character pass vacuously.
	}
	return true
}

// numberWords are the spelled-out numbers bullets must write as
// numerals instead.
var numberWords = []string{
	"zero", "one", "two", "three", "four", "five",
	"six", "seven", "eight", "nine", "ten", "eleven", "twelve",
}

func checkBulletsNumbersAsNumerals(value any, _ Params) bool {
	items, ok := value.([]string)
	if !ok {
		return true
	}
	for _, item := range items {
		if item == "" {
			continue
		}
		padded := " " + strings.ToLower(item) + " "
		for _, word := range numberWords {
			if strings.Contains(padded, " "+word+" ") {
				return false
			}
		}
	}
	return true
}

// checkImageConstraint is a placeholder: without downloading and
// analyzing the images it always passes. An image-audit backend can
// take over the params (e.g. white_bg, min_px) later.
func checkImageConstraint(_ any, _ Params) bool {
	return true
}
