package experiment

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"abkpi/domain/verdict"
)

// Partition tags one independent computation: a grid, its mapping and one country.
type Partition struct {
	ReportOrder  string `json:"reportOrder"`
	Country      string `json:"country"`
	FileIndex    int    `json:"fileIndex"`
	CountryIndex int    `json:"countryIndex"`
}

var leadingNumber = regexp.MustCompile(`^\s*(\d+)`)

// ReportOrderRank orders report-order tags: 1st < 2nd < 3rd < final, then any
// other tag by its leading number, then everything else.
func ReportOrderRank(order string) int {
	s := strings.ToLower(strings.TrimSpace(order))
	switch {
	case s == "":
		return 0
	case strings.HasPrefix(s, "final"):
		return 1000
	}
	if m := leadingNumber.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n < 1000 {
			return n
		}
	}
	return 1001
}

// VariationResult is one variation's comparison against its segment's control.
type VariationResult struct {
	VariationNum         int              `json:"variationNum"`
	ControlValue         *float64         `json:"controlValue"`
	VariationValue       *float64         `json:"variationValue"`
	ControlRate          *float64         `json:"controlRate"`
	VariationRate        *float64         `json:"variationRate"`
	Uplift               *float64         `json:"uplift"`
	Confidence           *float64         `json:"confidence"`
	Verdict              *verdict.Verdict `json:"verdict"`
	DenominatorSize      float64          `json:"denominatorSize"`
	DenominatorControl   float64          `json:"denominatorSizeControl"`
	DenominatorVariation float64          `json:"denominatorSizeVariation"`
}

// KPIResult is the outcome for one (partition, KPI, segment). Single-variation
// mappings fill the flat fields; multi-variation mappings fill Variations and
// the control-side fields only.
type KPIResult struct {
	ReportOrder          string            `json:"reportOrder,omitempty"`
	Country              string            `json:"country"`
	Segment              string            `json:"segment"`
	KPIName              string            `json:"kpiName"`
	KPIType              KPIType           `json:"kpiType"`
	Category             string            `json:"category,omitempty"`
	ControlValue         *float64          `json:"controlValue"`
	VariationValue       *float64          `json:"variationValue"`
	ControlRate          *float64          `json:"controlRate"`
	VariationRate        *float64          `json:"variationRate"`
	Uplift               *float64          `json:"uplift"`
	Confidence           *float64          `json:"confidence"`
	Verdict              *verdict.Verdict  `json:"verdict"`
	DenominatorSize      float64           `json:"denominatorSize"`
	DenominatorControl   float64           `json:"denominatorSizeControl"`
	DenominatorVariation float64           `json:"denominatorSizeVariation"`
	Variations           []VariationResult `json:"variations,omitempty"`

	Partition    Partition `json:"-"`
	KPIIndex     int       `json:"-"`
	SegmentIndex int       `json:"-"`
}

// Comparisons flattens a result into its per-variation comparisons.
func (r KPIResult) Comparisons() []VariationResult {
	if len(r.Variations) > 0 {
		return r.Variations
	}
	return []VariationResult{{
		VariationNum:         1,
		ControlValue:         r.ControlValue,
		VariationValue:       r.VariationValue,
		ControlRate:          r.ControlRate,
		VariationRate:        r.VariationRate,
		Uplift:               r.Uplift,
		Confidence:           r.Confidence,
		Verdict:              r.Verdict,
		DenominatorSize:      r.DenominatorSize,
		DenominatorControl:   r.DenominatorControl,
		DenominatorVariation: r.DenominatorVariation,
	}}
}

// MissingMetric records a metric label that could not be resolved.
type MissingMetric struct {
	Metric      string `json:"metric"`
	KPIName     string `json:"kpiName"`
	Segment     string `json:"segment"`
	Country     string `json:"country"`
	ReportOrder string `json:"reportOrder"`

	Partition Partition `json:"-"`
}

// Notice is the user-facing message for the missing metric.
func (m MissingMetric) Notice() string {
	source := "report"
	if m.ReportOrder != "" {
		source = m.ReportOrder
	}
	return fmt.Sprintf("%s (%s) file: metric '%s' not found (KPI %s, segment %s)",
		source, m.Country, m.Metric, m.KPIName, m.Segment)
}
