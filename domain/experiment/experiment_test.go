package experiment

import (
	"errors"
	"testing"

	"abkpi/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKPIType(t *testing.T) {
	tests := []struct {
		in   string
		want KPIType
		ok   bool
	}{
		{"", KPIRate, true},
		{"rate", KPIRate, true},
		{" Simple ", KPISimple, true},
		{"REVENUE", KPIRevenue, true},
		{"rpv", KPIRPV, true},
		{"variation_only", KPIVariationOnly, true},
		{"ratio", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseKPIType(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestKPIConfigNormalized(t *testing.T) {
	k := KPIConfig{Name: " Orders "}.Normalized()
	assert.Equal(t, KPIRate, k.Type)
	assert.Equal(t, "Orders", k.Numerator)

	rev := KPIConfig{Name: "Revenue", Type: KPIRevenue}.Normalized()
	assert.Equal(t, "", rev.Numerator, "revenue keeps its engine default")

	err := KPIConfig{Name: "x", Type: "bogus"}.Validate()
	assert.True(t, errors.Is(err, core.ErrInvalidKPIConfig))
	assert.Error(t, KPIConfig{}.Validate())
}

func TestReportOrderRank(t *testing.T) {
	orders := []string{"1st report", "2nd report", "3rd report", "final report"}
	for i := 1; i < len(orders); i++ {
		assert.Less(t, ReportOrderRank(orders[i-1]), ReportOrderRank(orders[i]))
	}
	assert.Less(t, ReportOrderRank("final report"), ReportOrderRank("weekly"))
	assert.Equal(t, 12, ReportOrderRank("12th report"))
}

func TestMappingGroupsAndValidate(t *testing.T) {
	m := Mapping{VariationCount: 2, Entries: []SegmentEntry{
		{Label: "Variation 1", Segment: "All", Control: 1, Variation: 2, VariationNum: 1},
		{Label: "Variation 2", Segment: "All", Control: 1, Variation: 3, VariationNum: 2},
		{Label: "Variation 1", Segment: "PC", Control: 4, Variation: 5, VariationNum: 1},
		{Label: "Variation 2", Segment: "PC", Control: 4, Variation: 6, VariationNum: 2},
	}}
	groups := m.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "All", groups[0].Segment)
	assert.Equal(t, []VariationColumn{{Num: 1, Column: 2}, {Num: 2, Column: 3}}, groups[0].Variations)
	assert.NoError(t, m.Validate(7))

	err := m.Validate(6)
	assert.True(t, errors.Is(err, core.ErrColumnOverflow))

	clash := Mapping{VariationCount: 1, Entries: []SegmentEntry{
		{Label: "All", Segment: "All", Control: 1, Variation: 2, VariationNum: 1},
		{Label: "PC", Segment: "PC", Control: 2, Variation: 3, VariationNum: 1},
	}}
	assert.Error(t, clash.Validate(0))

	assert.True(t, errors.Is(Mapping{}.Validate(3), core.ErrEmptyMapping))
}
