package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"

	"abkpi/domain/grid"
)

// ReportBuilder lays out a report export the way the reporting tool does:
// a title, a segment-name row, a spacer, the "Segments" anchor row with
// Control/Variation headers, then one row per metric.
type ReportBuilder struct {
	title      string
	segments   []string
	variations int
	country    string
	rows       [][]string
	thousands  bool
}

// NewReportBuilder starts a single-variation report with one "All" segment.
func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{title: "A/B Test Report", segments: []string{"All"}, variations: 1}
}

// Segments sets the segment names in column order.
func (b *ReportBuilder) Segments(names ...string) *ReportBuilder {
	b.segments = names
	return b
}

// Variations sets the number of variation columns per segment.
func (b *ReportBuilder) Variations(n int) *ReportBuilder {
	b.variations = n
	return b
}

// Country writes a market code under the first metric row, where the layout
// detector looks when the segment row has none.
func (b *ReportBuilder) Country(code string) *ReportBuilder {
	b.country = code
	return b
}

// Thousands formats large values with comma separators.
func (b *ReportBuilder) Thousands() *ReportBuilder {
	b.thousands = true
	return b
}

// Metric appends a metric row. Values fill the data columns left to right:
// per segment the control column, then each variation column.
func (b *ReportBuilder) Metric(label string, values ...float64) *ReportBuilder {
	row := []string{label}
	for _, v := range values {
		row = append(row, b.format(v))
	}
	b.rows = append(b.rows, row)
	return b
}

// Raw appends a metric row of raw cell text.
func (b *ReportBuilder) Raw(label string, cells ...string) *ReportBuilder {
	b.rows = append(b.rows, append([]string{label}, cells...))
	return b
}

// Comment appends a separator row the detector must skip.
func (b *ReportBuilder) Comment(text string) *ReportBuilder {
	b.rows = append(b.rows, []string{"# " + text})
	return b
}

// Columns is the number of data columns, excluding the label column.
func (b *ReportBuilder) Columns() int {
	return len(b.segments) * (1 + b.variations)
}

func (b *ReportBuilder) format(v float64) string {
	if !b.thousands || math.Abs(v) < 1000 || v != math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := strconv.FormatInt(int64(math.Abs(v)), 10)
	out := ""
	for len(s) > 3 {
		out = "," + s[len(s)-3:] + out
		s = s[:len(s)-3]
	}
	if v < 0 {
		s = "-" + s
	}
	return s + out
}

// Rows renders the report as raw rows.
func (b *ReportBuilder) Rows() [][]string {
	segRow := []string{""}
	header := []string{"Segments"}
	for _, s := range b.segments {
		segRow = append(segRow, s)
		header = append(header, "Control")
		for v := 1; v <= b.variations; v++ {
			segRow = append(segRow, "")
			if b.variations == 1 {
				header = append(header, "Variation")
			} else {
				header = append(header, fmt.Sprintf("Variation %d", v))
			}
		}
	}

	out := [][]string{{b.title}, segRow, {"Date range"}, header}
	for i, r := range b.rows {
		out = append(out, r)
		if i == 0 && b.country != "" {
			out = append(out, []string{b.country})
		}
	}
	return out
}

// Grid renders the report as a grid.
func (b *ReportBuilder) Grid() *grid.Grid {
	return grid.New(b.Rows())
}

// TrafficConfig drives GenerateTraffic.
type TrafficConfig struct {
	Visits      int
	ControlCVR  float64
	Lift        float64
	AOV         float64
	Seed        int64
	Segments    []string
	Variations  int
	CountryCode string
}

// DefaultTrafficConfig is a two-segment test with a 10% lift.
func DefaultTrafficConfig() TrafficConfig {
	return TrafficConfig{
		Visits:     20000,
		ControlCVR: 0.05,
		Lift:       0.10,
		AOV:        80,
		Seed:       42,
		Segments:   []string{"All", "PC"},
		Variations: 1,
	}
}

// GenerateTraffic builds a seeded report with Visits, Orders and Revenue rows.
func GenerateTraffic(cfg TrafficConfig) *ReportBuilder {
	rng := rand.New(rand.NewSource(cfg.Seed))
	b := NewReportBuilder().Segments(cfg.Segments...).Variations(cfg.Variations).Country(cfg.CountryCode)

	var visits, orders, revenue []float64
	for range cfg.Segments {
		for col := 0; col <= cfg.Variations; col++ {
			v := float64(cfg.Visits + rng.Intn(cfg.Visits/20+1))
			cvr := cfg.ControlCVR
			if col > 0 {
				cvr *= 1 + cfg.Lift
			}
			o := math.Round(v * cvr)
			visits = append(visits, v)
			orders = append(orders, o)
			revenue = append(revenue, math.Round(o*cfg.AOV*(0.9+0.2*rng.Float64())))
		}
	}
	return b.Metric("Visits", visits...).Metric("Orders", orders...).Metric("Revenue", revenue...)
}
