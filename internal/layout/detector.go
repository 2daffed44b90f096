// Package layout finds the anchor row, segment names and market codes of a
// report export and exposes the data sub-grid below the anchor.
package layout

import (
	"regexp"
	"strings"

	"abkpi/domain/core"
	"abkpi/domain/experiment"
	"abkpi/domain/grid"
	"abkpi/internal"
)

const (
	DefaultAnchorKeyword   = "Segments"
	DefaultFallbackCountry = "UK"

	maxSegmentPairs   = 15
	maxCountryColumns = 50
	visitsScanRows    = 100
	visitsFollowRows  = 5
)

// LayoutError is returned when a grid has no recognizable anchor.
type LayoutError struct {
	Keyword string
	Rows    int
	Err     error
}

func (e *LayoutError) Error() string {
	return "layout detection failed: " + e.Err.Error()
}

func (e *LayoutError) Unwrap() error { return e.Err }

// Options tunes detection. The zero value uses the defaults.
type Options struct {
	AnchorKeyword   string
	FallbackCountry string
	Diagnostics     internal.Diagnostics
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.AnchorKeyword) == "" {
		o.AnchorKeyword = DefaultAnchorKeyword
	}
	if strings.TrimSpace(o.FallbackCountry) == "" {
		o.FallbackCountry = DefaultFallbackCountry
	}
	o.Diagnostics = internal.OrNop(o.Diagnostics)
	return o
}

var roleSuffix = regexp.MustCompile(`(?i)\s*-?\s*(control|variation)\s*$`)

// Detect locates the anchor row and derives segment and country metadata.
// Only a missing anchor is fatal; every other ambiguity resolves to defaults.
func Detect(g *grid.Grid, opts Options) (*experiment.AnchorInfo, error) {
	opts = opts.withDefaults()
	if g.Rows() == 0 {
		return nil, &LayoutError{Keyword: opts.AnchorKeyword, Err: core.ErrEmptyGrid}
	}

	anchor := -1
	for r := 0; r < g.Rows(); r++ {
		if strings.HasPrefix(g.Label(r), opts.AnchorKeyword) {
			anchor = r
			break
		}
	}
	if anchor < 0 {
		return nil, &LayoutError{Keyword: opts.AnchorKeyword, Rows: g.Rows(), Err: core.NewAnchorNotFoundError(opts.AnchorKeyword)}
	}

	info := &experiment.AnchorInfo{
		AnchorRow:  anchor,
		SegmentRow: anchor - 2,
		DataStart:  anchor + 1,
	}
	info.Segments = detectSegments(g, info.SegmentRow)
	opts.Diagnostics.Debug("anchor at row %d, %d segment(s) detected", anchor, len(info.Segments))

	if info.HasSegmentRow() {
		info.Countries, info.CountryGroups = detectCountryColumns(g, info.SegmentRow)
	}
	switch {
	case len(info.Countries) > 0:
		info.MultiCountry = len(info.Countries) > 1
		info.Country = info.Countries[0]
	default:
		info.Country = countryNearVisits(g, info.DataStart, opts.FallbackCountry)
		opts.Diagnostics.Debug("no country in segment row, using %s", info.Country)
	}
	return info, nil
}

// cleanSegmentName strips role suffixes and reports placeholders as empty.
func cleanSegmentName(raw string) string {
	name := strings.TrimSpace(raw)
	for {
		stripped := strings.TrimSpace(roleSuffix.ReplaceAllString(name, ""))
		if stripped == name {
			break
		}
		name = stripped
	}
	name = strings.TrimSpace(strings.TrimRight(name, "-"))
	if grid.IsPlaceholder(name) {
		return ""
	}
	return name
}

func detectSegments(g *grid.Grid, segRow int) []experiment.DetectedSegment {
	if segRow < 0 {
		return []experiment.DetectedSegment{{Name: "All", Control: 1, Variation: 2}}
	}
	var out []experiment.DetectedSegment
	for pair := 0; pair < maxSegmentPairs; pair++ {
		c := 1 + 2*pair
		if c >= g.Width() && pair > 0 {
			break
		}
		raw := g.Cell(segRow, c)
		if strings.TrimSpace(raw) == "" {
			raw = g.Cell(segRow, c+1)
		}
		name := cleanSegmentName(raw)
		if name == "" {
			if pair == 0 {
				name = "All"
			} else {
				continue
			}
		}
		out = append(out, experiment.DetectedSegment{Name: name, Control: c, Variation: c + 1})
	}
	return out
}

func detectCountryColumns(g *grid.Grid, segRow int) ([]string, map[string][]experiment.ColumnGroup) {
	var countries []string
	groups := make(map[string][]experiment.ColumnGroup)
	limit := g.Width()
	if limit > maxCountryColumns {
		limit = maxCountryColumns
	}
	for c := 1; c < limit; c += 2 {
		token := g.Cell(segRow, c)
		code, ok := MatchCountry(token)
		if !ok {
			continue
		}
		if _, seen := groups[code]; !seen {
			countries = append(countries, code)
		}
		label := stripCountry(token, code)
		if label == "" {
			label = "All"
		}
		groups[code] = append(groups[code], experiment.ColumnGroup{Label: label, Control: c, Variation: c + 1})
	}
	if len(countries) == 0 {
		return nil, nil
	}
	return countries, groups
}

// countryNearVisits scans the labels just below the first "visits" row.
func countryNearVisits(g *grid.Grid, dataStart int, fallback string) string {
	end := dataStart + visitsScanRows
	if end > g.Rows() {
		end = g.Rows()
	}
	for r := dataStart; r < end; r++ {
		if !strings.Contains(strings.ToLower(g.Label(r)), "visits") {
			continue
		}
		for k := 1; k <= visitsFollowRows && r+k < g.Rows(); k++ {
			if code, ok := MatchCountry(g.Label(r + k)); ok {
				return code
			}
		}
		break
	}
	return fallback
}
