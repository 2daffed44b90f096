package lookup

import (
	"strings"

	"abkpi/domain/grid"
)

// Matcher finds the row of a metric label. Strategies run in order and the
// first one returning a row wins.
type Matcher interface {
	Name() string
	Match(query string, labels []string) (row int, ok bool)
}

// firstContaining returns the first label containing needle.
func firstContaining(needle string, labels []string) (int, bool) {
	if needle == "" {
		return -1, false
	}
	for i, l := range labels {
		if strings.Contains(l, needle) {
			return i, true
		}
	}
	return -1, false
}

// ExactNormalized matches the normalized query as a substring of normalized labels.
type ExactNormalized struct{}

func (ExactNormalized) Name() string { return "normalized" }

func (ExactNormalized) Match(query string, labels []string) (int, bool) {
	return firstContaining(grid.NormalizeLabel(query), labels)
}

// CoreKeyword matches the query's core (digits, underscores, brackets and
// '>' removed) when that core is long enough to be specific.
type CoreKeyword struct {
	MinLength int
}

func (CoreKeyword) Name() string { return "core" }

func (c CoreKeyword) Match(query string, labels []string) (int, bool) {
	core := grid.CoreLabel(query)
	if len([]rune(core)) <= c.MinLength {
		return -1, false
	}
	return firstContaining(core, labels)
}

// KeywordPair maps queries mentioning every word of a pair to a canonical
// metric-family keyword.
type KeywordPair struct {
	Words   []string
	Keyword string
}

func (k KeywordPair) Name() string { return "keyword:" + k.Keyword }

func (k KeywordPair) Match(query string, labels []string) (int, bool) {
	q := strings.ToLower(query)
	for _, w := range k.Words {
		if !strings.Contains(q, w) {
			return -1, false
		}
	}
	return firstContaining(k.Keyword, labels)
}

// DefaultMatchers is the standard strategy chain.
func DefaultMatchers() []Matcher {
	return []Matcher{
		ExactNormalized{},
		CoreKeyword{MinLength: 5},
		KeywordPair{Words: []string{"cart", "add"}, Keyword: "cartadd"},
		KeywordPair{Words: []string{"cart", "view"}, Keyword: "cartview"},
		KeywordPair{Words: []string{"check", "out"}, Keyword: "checkout"},
	}
}
