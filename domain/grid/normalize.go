package grid

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var placeholders = map[string]bool{
	"":     true,
	"-":    true,
	"n/a":  true,
	"na":   true,
	"none": true,
	"nan":  true,
	"null": true,
}

// IsPlaceholder reports whether a cell is blank or a textual stand-in for "no value".
func IsPlaceholder(s string) bool {
	return placeholders[strings.ToLower(strings.TrimSpace(s))]
}

// NormalizeLabel lower-cases s and drops whitespace, punctuation and symbols.
// NormalizeLabel(NormalizeLabel(s)) == NormalizeLabel(s).
func NormalizeLabel(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

var coreStrip = regexp.MustCompile(`[0-9_()>]`)

// CoreLabel strips digits, underscores, parentheses and '>' before normalizing,
// so "Step 2 > Cart_Add (3)" and "Cart Add" share a core.
func CoreLabel(s string) string {
	return NormalizeLabel(strings.Join(strings.Fields(coreStrip.ReplaceAllString(s, " ")), ""))
}

// ParseNumber coerces a raw cell to a number. Thousands separators and spaces
// are ignored; placeholders, text and non-finite values report false.
func ParseNumber(raw string) (float64, bool) {
	if IsPlaceholder(raw) {
		return 0, false
	}
	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
