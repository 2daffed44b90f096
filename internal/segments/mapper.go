// Package segments builds segment-column mappings from detected segment
// names, declared segment lists or per-country column groups.
package segments

import (
	"fmt"
	"strings"

	"abkpi/domain/experiment"
	"abkpi/domain/grid"
	"abkpi/internal"
)

// DefaultSegment is used when a caller declares no segments.
const DefaultSegment = "All Visits"

// Default is the single-segment mapping over columns B and C.
func Default() experiment.Mapping {
	return experiment.Mapping{
		VariationCount: 1,
		Entries:        []experiment.SegmentEntry{single("All", 1, 2)},
	}
}

func single(label string, control, variation int) experiment.SegmentEntry {
	return experiment.SegmentEntry{Label: label, Segment: label, Control: control, Variation: variation, VariationNum: 1}
}

func variationEntry(segment string, num, control, variation int) experiment.SegmentEntry {
	return experiment.SegmentEntry{
		Label:        fmt.Sprintf("Variation %d", num),
		Segment:      segment,
		Control:      control,
		Variation:    variation,
		VariationNum: num,
	}
}

func normalizeCount(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// FromDetected maps segment names found by layout detection. With several
// variations column B is the shared control and C, D, ... the variations.
// width bounds the columns used; width <= 0 means unbounded.
func FromDetected(detected []experiment.DetectedSegment, variationCount, width int) experiment.Mapping {
	variationCount = normalizeCount(variationCount)
	m := experiment.Mapping{VariationCount: variationCount}
	fits := func(col int) bool { return width <= 0 || col < width }

	if variationCount > 1 {
		parent := "All"
		if len(detected) > 0 && detected[0].Control == 1 {
			parent = detected[0].Name
		}
		for v := 1; v <= variationCount; v++ {
			col := 1 + v
			if !fits(col) {
				m.Truncated = true
				break
			}
			m.Entries = append(m.Entries, variationEntry(parent, v, 1, col))
		}
		return m
	}

	for _, d := range detected {
		if !fits(d.Variation) {
			m.Truncated = true
			break
		}
		m.Entries = append(m.Entries, single(d.Name, d.Control, d.Variation))
	}
	if len(m.Entries) > 0 {
		return m
	}

	for i, label := range []string{"All", "Segment 1", "Segment 2"} {
		c := 1 + 2*i
		if i > 0 && !fits(c+1) {
			break
		}
		m.Entries = append(m.Entries, single(label, c, c+1))
	}
	return m
}

// Mapper builds mappings from declared segment lists.
type Mapper struct {
	diag internal.Diagnostics
}

// NewMapper returns a Mapper reporting truncation to diag (nil discards).
func NewMapper(diag internal.Diagnostics) *Mapper {
	return &Mapper{diag: internal.OrNop(diag)}
}

// FromDeclared walks columns from B assigning each non-blank segment either a
// control/variation pair or, with several variations, one control column
// followed by variationCount variation columns. When the next column would
// reach width the mapping stops and is marked Truncated.
func (mp *Mapper) FromDeclared(declared []string, variationCount, width int) experiment.Mapping {
	variationCount = normalizeCount(variationCount)
	m := experiment.Mapping{VariationCount: variationCount}
	fits := func(col int) bool { return width <= 0 || col < width }

	col := 1
	for _, raw := range declared {
		segment := strings.TrimSpace(raw)
		if segment == "" {
			continue
		}
		if variationCount == 1 {
			if !fits(col + 1) {
				mp.truncate(&m, segment, col+1, width)
				return m
			}
			m.Entries = append(m.Entries, single(segment, col, col+1))
			col += 2
			continue
		}

		if !fits(col) {
			mp.truncate(&m, segment, col, width)
			return m
		}
		control := col
		col++
		for v := 1; v <= variationCount; v++ {
			if !fits(col) {
				mp.truncate(&m, segment, col, width)
				return m
			}
			m.Entries = append(m.Entries, variationEntry(segment, v, control, col))
			col++
		}
	}
	return m
}

func (mp *Mapper) truncate(m *experiment.Mapping, segment string, col, width int) {
	m.Truncated = true
	mp.diag.Warn("segment %q needs column %s but the report has only %d column(s); mapping truncated",
		segment, grid.ColumnLabel(col), width)
}

// FromDeclared is Mapper.FromDeclared without diagnostics.
func FromDeclared(declared []string, variationCount, width int) experiment.Mapping {
	return NewMapper(nil).FromDeclared(declared, variationCount, width)
}

// FromCountryGroups maps one country's column groups as single-variation
// segments. Groups whose columns reach width are dropped and the mapping is
// marked Truncated.
func (mp *Mapper) FromCountryGroups(groups []experiment.ColumnGroup, width int) experiment.Mapping {
	m := experiment.Mapping{VariationCount: 1}
	for _, g := range groups {
		if width > 0 && (g.Control >= width || g.Variation >= width) {
			mp.truncate(&m, g.Label, g.Variation, width)
			continue
		}
		m.Entries = append(m.Entries, single(g.Label, g.Control, g.Variation))
	}
	return m
}

// FromCountryGroups is Mapper.FromCountryGroups without diagnostics.
func FromCountryGroups(groups []experiment.ColumnGroup, width int) experiment.Mapping {
	return NewMapper(nil).FromCountryGroups(groups, width)
}

// Labels lists the distinct segment labels of a mapping in order.
func Labels(m experiment.Mapping) []string {
	var out []string
	for _, g := range m.Groups() {
		out = append(out, g.Segment)
	}
	return out
}
