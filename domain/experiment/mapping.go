package experiment

import (
	"fmt"

	"abkpi/domain/core"
	"abkpi/domain/grid"
)

// SegmentEntry binds a control and a variation column to a segment.
// In single-variation mappings Label == Segment and VariationNum == 1.
type SegmentEntry struct {
	Label        string `json:"label"`
	Segment      string `json:"segment"`
	Control      int    `json:"control"`
	Variation    int    `json:"variation"`
	VariationNum int    `json:"variationNum"`
}

// Mapping is the ordered segment-column mapping for one grid.
type Mapping struct {
	Entries        []SegmentEntry `json:"entries"`
	VariationCount int            `json:"variationCount"`
	Truncated      bool           `json:"truncated,omitempty"`
}

// VariationColumn is one variation inside a SegmentGroup.
type VariationColumn struct {
	Num    int
	Column int
}

// SegmentGroup is all entries sharing a segment and its control column.
type SegmentGroup struct {
	Segment    string
	Control    int
	Variations []VariationColumn
}

// Groups folds consecutive entries of the same segment and control column.
func (m Mapping) Groups() []SegmentGroup {
	var groups []SegmentGroup
	for _, e := range m.Entries {
		n := len(groups)
		if n > 0 && groups[n-1].Segment == e.Segment && groups[n-1].Control == e.Control {
			groups[n-1].Variations = append(groups[n-1].Variations, VariationColumn{Num: e.VariationNum, Column: e.Variation})
			continue
		}
		groups = append(groups, SegmentGroup{
			Segment:    e.Segment,
			Control:    e.Control,
			Variations: []VariationColumn{{Num: e.VariationNum, Column: e.Variation}},
		})
	}
	return groups
}

// MultiVariation reports whether results carry per-variation sub-results.
func (m Mapping) MultiVariation() bool {
	return m.VariationCount > 1
}

// Validate enforces column disjointness across segment groups and, when
// width > 0, that every column lies inside [1, width).
func (m Mapping) Validate(width int) error {
	if len(m.Entries) == 0 {
		return core.ErrEmptyMapping
	}
	owner := make(map[int]string)
	claim := func(col int, role string) error {
		if col < 1 || (width > 0 && col >= width) {
			return core.NewColumnOverflowError(role, col, width)
		}
		if prev, ok := owner[col]; ok && prev != role {
			return fmt.Errorf("column %s used as %s and %s", grid.ColumnLabel(col), prev, role)
		}
		owner[col] = role
		return nil
	}
	for gi, g := range m.Groups() {
		if err := claim(g.Control, fmt.Sprintf("control of %s#%d", g.Segment, gi)); err != nil {
			return err
		}
		for _, v := range g.Variations {
			if err := claim(v.Column, fmt.Sprintf("variation %d of %s#%d", v.Num, g.Segment, gi)); err != nil {
				return err
			}
		}
	}
	return nil
}
