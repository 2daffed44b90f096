package analysis

import (
	"errors"
	"testing"

	"abkpi/domain/core"
	"abkpi/domain/experiment"
	"abkpi/domain/grid"
	"abkpi/domain/verdict"
	"abkpi/internal/layout"
	"abkpi/internal/segments"
	"abkpi/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dataOf(t *testing.T, b *testkit.ReportBuilder) *grid.Grid {
	t.Helper()
	g := b.Grid()
	info, err := layout.Detect(g, layout.Options{})
	require.NoError(t, err)
	return layout.DataGrid(g, info)
}

func TestEngineRateKPI(t *testing.T) {
	data := dataOf(t, testkit.NewReportBuilder().
		Segments("All").
		Metric("Visits", 10000, 10000).
		Metric("Orders", 500, 600))

	out, err := NewEngine().Compute(Input{
		Data:      data,
		KPIs:      []experiment.KPIConfig{{Name: "CVR", Numerator: "Orders", Denominator: "Visits"}},
		Mapping:   segments.FromDeclared([]string{"All"}, 1, 0),
		Partition: experiment.Partition{Country: "UK", ReportOrder: "1st report"},
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Empty(t, out.Missing)

	r := out.Results[0]
	assert.Equal(t, "UK", r.Country)
	assert.Equal(t, "1st report", r.ReportOrder)
	assert.Equal(t, "All", r.Segment)
	assert.Equal(t, experiment.KPIRate, r.KPIType)
	assert.InDelta(t, 0.05, *r.ControlRate, 1e-12)
	assert.InDelta(t, 0.06, *r.VariationRate, 1e-12)
	assert.InDelta(t, 20.0, *r.Uplift, 1e-9)
	require.NotNil(t, r.Confidence)
	assert.Greater(t, *r.Confidence, 99.0)
	assert.Equal(t, verdict.VariationWins, *r.Verdict)
	assert.Equal(t, 20000.0, r.DenominatorSize)
	assert.Nil(t, r.Variations)
}

func TestEngineRateWithoutDenominatorUsesRawUplift(t *testing.T) {
	data := dataOf(t, testkit.NewReportBuilder().Metric("Orders", 500, 450))

	out, err := NewEngine().Compute(Input{
		Data:    data,
		KPIs:    []experiment.KPIConfig{{Name: "Orders", Type: experiment.KPISimple}},
		Mapping: segments.Default(),
	})
	require.NoError(t, err)
	r := out.Results[0]
	assert.Nil(t, r.ControlRate)
	assert.Nil(t, r.Confidence)
	assert.InDelta(t, -10.0, *r.Uplift, 1e-9)
	assert.Equal(t, verdict.NoDifference, *r.Verdict)
	assert.Equal(t, 0.0, r.DenominatorSize)
}

func TestEngineZeroDenominatorGivesNullRate(t *testing.T) {
	data := dataOf(t, testkit.NewReportBuilder().
		Metric("Visits", 0, 1000).
		Metric("Orders", 150, 160))

	out, err := NewEngine().Compute(Input{
		Data:    data,
		KPIs:    []experiment.KPIConfig{{Name: "CVR", Numerator: "Orders", Denominator: "Visits"}},
		Mapping: segments.Default(),
	})
	require.NoError(t, err)
	r := out.Results[0]
	assert.Nil(t, r.ControlRate)
	require.NotNil(t, r.VariationRate)
	assert.InDelta(t, 0.16, *r.VariationRate, 1e-12)
	assert.Nil(t, r.Confidence)
	assert.InDelta(t, 6.6666, *r.Uplift, 1e-3, "falls back to raw values")
}

func TestEngineRevenueAndRPV(t *testing.T) {
	data := dataOf(t, testkit.NewReportBuilder().
		Thousands().
		Metric("Visits", 10000, 10000).
		Metric("Revenue", 50000, 40000))

	out, err := NewEngine().Compute(Input{
		Data: data,
		KPIs: []experiment.KPIConfig{
			{Name: "Revenue", Type: experiment.KPIRevenue},
			{Name: "RPV", Type: experiment.KPIRPV},
		},
		Mapping: segments.Default(),
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 2)

	rev := out.Results[0]
	assert.Equal(t, "Revenue", rev.KPIName)
	assert.InDelta(t, -20.0, *rev.Uplift, 1e-9)
	assert.Nil(t, rev.Confidence)
	assert.Equal(t, verdict.NoDifference, *rev.Verdict)
	assert.Equal(t, 90000.0, rev.DenominatorSize)

	rpv := out.Results[1]
	assert.InDelta(t, 5.0, *rpv.ControlRate, 1e-12)
	assert.InDelta(t, 4.0, *rpv.VariationRate, 1e-12)
	assert.InDelta(t, -20.0, *rpv.Uplift, 1e-9)
	assert.Nil(t, rpv.Confidence, "revenue above visits is not a proportion")
	assert.Equal(t, verdict.NoDifference, *rpv.Verdict)
	assert.Equal(t, 20000.0, rpv.DenominatorSize)
}

func TestEngineVariationOnly(t *testing.T) {
	data := dataOf(t, testkit.NewReportBuilder().
		Metric("Visits", 1000, 2000).
		Raw("Banner Clicks", "", "300"))

	out, err := NewEngine().Compute(Input{
		Data:    data,
		KPIs:    []experiment.KPIConfig{{Name: "Banner CTR", Type: experiment.KPIVariationOnly, Numerator: "Banner Clicks", Denominator: "Visits"}},
		Mapping: segments.Default(),
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	r := out.Results[0]
	assert.Nil(t, r.ControlValue)
	assert.Nil(t, r.Uplift)
	assert.Nil(t, r.Confidence)
	assert.Nil(t, r.Verdict)
	assert.InDelta(t, 0.15, *r.VariationRate, 1e-12)
	assert.Equal(t, 2000.0, r.DenominatorSize)
}

func TestEngineMissingMetrics(t *testing.T) {
	data := dataOf(t, testkit.NewReportBuilder().
		Segments("PC", "MO").
		Metric("Visits", 1000, 1000, 800, 800).
		Raw("Orders", "120", "130", "", "90"))

	out, err := NewEngine().Compute(Input{
		Data: data,
		KPIs: []experiment.KPIConfig{
			{Name: "CVR", Numerator: "Orders", Denominator: "Visits"},
			{Name: "Bounce", Numerator: "Bounces", Denominator: "Visits"},
		},
		Mapping:   segments.FromDeclared([]string{"PC", "MO"}, 1, 0),
		Partition: experiment.Partition{Country: "DE", ReportOrder: "2nd report"},
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 1, "only PC has both Orders cells")
	assert.Equal(t, "PC", out.Results[0].Segment)

	require.Len(t, out.Missing, 5)
	assert.Equal(t, experiment.MissingMetric{
		Metric: "Orders", KPIName: "CVR", Segment: "MO", Country: "DE", ReportOrder: "2nd report",
		Partition: experiment.Partition{Country: "DE", ReportOrder: "2nd report"},
	}, out.Missing[0])
	for _, m := range out.Missing[1:] {
		assert.Equal(t, "Bounces", m.Metric)
	}
	assert.Contains(t, out.Missing[0].Notice(), "2nd report (DE) file: metric 'Orders' not found")
}

func TestEngineMultiVariation(t *testing.T) {
	data := dataOf(t, testkit.NewReportBuilder().
		Variations(2).
		Metric("Visits", 10000, 10000, 10000).
		Raw("Orders", "500", "650", ""))

	out, err := NewEngine().Compute(Input{
		Data:    data,
		KPIs:    []experiment.KPIConfig{{Name: "CVR", Numerator: "Orders", Denominator: "Visits"}},
		Mapping: segments.FromDeclared([]string{"All"}, 2, 0),
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	r := out.Results[0]
	assert.InDelta(t, 500.0, *r.ControlValue, 1e-9)
	assert.InDelta(t, 0.05, *r.ControlRate, 1e-12)
	assert.Nil(t, r.Uplift)
	require.Len(t, r.Variations, 1)
	assert.Equal(t, 1, r.Variations[0].VariationNum)
	assert.InDelta(t, 30.0, *r.Variations[0].Uplift, 1e-9)
	assert.Equal(t, verdict.VariationWins, *r.Variations[0].Verdict)
	require.Len(t, out.Missing, 1)
	assert.Equal(t, "Orders", out.Missing[0].Metric)
}

func TestEngineStructuralErrors(t *testing.T) {
	data := dataOf(t, testkit.NewReportBuilder().Metric("Visits", 1, 2))
	kpis := []experiment.KPIConfig{{Name: "Visits"}}

	_, err := NewEngine().Compute(Input{Data: data, KPIs: kpis, Mapping: segments.FromDeclared([]string{"All", "PC"}, 1, 0)})
	assert.True(t, errors.Is(err, core.ErrColumnOverflow))

	_, err = NewEngine().Compute(Input{Data: data, KPIs: kpis})
	assert.True(t, errors.Is(err, core.ErrEmptyMapping))

	_, err = NewEngine().Compute(Input{Data: data, KPIs: []experiment.KPIConfig{{Name: "x", Type: "ratio"}}, Mapping: segments.Default()})
	assert.True(t, errors.Is(err, core.ErrInvalidKPIConfig))

	_, err = NewEngine().Compute(Input{Data: grid.New(nil), KPIs: kpis, Mapping: segments.Default()})
	assert.True(t, errors.Is(err, core.ErrEmptyGrid))
}

func TestEngineIsDeterministic(t *testing.T) {
	cfg := testkit.DefaultTrafficConfig()
	cfg.Segments = []string{"All", "PC", "MO"}
	data := dataOf(t, testkit.GenerateTraffic(cfg))
	in := Input{
		Data: data,
		KPIs: []experiment.KPIConfig{
			{Name: "CVR", Numerator: "Orders", Denominator: "Visits"},
			{Name: "Revenue", Type: experiment.KPIRevenue},
			{Name: "RPV", Type: experiment.KPIRPV},
		},
		Mapping: segments.FromDeclared(cfg.Segments, 1, 0),
	}
	first, err := NewEngine().Compute(in)
	require.NoError(t, err)
	second, err := NewEngine().Compute(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first.Results, 9)

	for i, r := range first.Results {
		assert.Equal(t, i/3, r.KPIIndex)
		assert.Equal(t, i%3, r.SegmentIndex)
	}
}
