// Package analysis computes KPI comparisons for A/B report partitions and
// merges partition outputs into canonical order.
package analysis

import (
	"abkpi/domain/core"
	"abkpi/domain/experiment"
	"abkpi/domain/grid"
	"abkpi/internal"
	"abkpi/internal/lookup"
)

// Input is one partition's computation request.
type Input struct {
	Data      *grid.Grid
	KPIs      []experiment.KPIConfig
	Mapping   experiment.Mapping
	Partition experiment.Partition
}

// Output is one partition's results and missing-metric ledger.
type Output struct {
	Partition experiment.Partition
	Results   []experiment.KPIResult
	Missing   []experiment.MissingMetric
}

// Engine computes KPI results. It holds no per-call state and may be shared.
type Engine struct {
	diag     internal.Diagnostics
	matchers []lookup.Matcher
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDiagnostics routes lookup misses and engine notes to d.
func WithDiagnostics(d internal.Diagnostics) EngineOption {
	return func(e *Engine) { e.diag = internal.OrNop(d) }
}

// WithMatchers overrides the metric lookup strategy chain.
func WithMatchers(m ...lookup.Matcher) EngineOption {
	return func(e *Engine) { e.matchers = m }
}

// NewEngine returns an Engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{diag: internal.NopDiagnostics{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute evaluates every KPI over every segment group and variation of the
// mapping, in declaration order. Metrics that cannot be found are recorded in
// Output.Missing and the affected unit is skipped.
func (e *Engine) Compute(in Input) (*Output, error) {
	if in.Data == nil || in.Data.Rows() == 0 {
		return nil, core.ErrEmptyGrid
	}
	if err := in.Mapping.Validate(in.Data.Width()); err != nil {
		return nil, err
	}
	kpis := make([]experiment.KPIConfig, len(in.KPIs))
	strategies := make([]strategy, len(in.KPIs))
	for i, k := range in.KPIs {
		if err := k.Validate(); err != nil {
			return nil, err
		}
		kpis[i] = k.Normalized()
		st, ok := strategyFor(kpis[i].Type)
		if !ok {
			return nil, core.NewInvalidKPIError(k.DisplayName(), "no strategy for type "+string(kpis[i].Type))
		}
		strategies[i] = st
	}

	opts := []lookup.Option{lookup.WithDiagnostics(e.diag)}
	if len(e.matchers) > 0 {
		opts = append(opts, lookup.WithMatchers(e.matchers...))
	}
	lk := lookup.New(in.Data, opts...)

	out := &Output{Partition: in.Partition}
	groups := in.Mapping.Groups()
	multi := in.Mapping.MultiVariation()

	for ki, kpi := range kpis {
		st := strategies[ki]
		for si, g := range groups {
			record := func(labels []string) {
				for _, l := range labels {
					out.Missing = append(out.Missing, experiment.MissingMetric{
						Metric:      l,
						KPIName:     kpi.DisplayName(),
						Segment:     g.Segment,
						Country:     in.Partition.Country,
						ReportOrder: in.Partition.ReportOrder,
						Partition:   in.Partition,
					})
				}
			}

			var ctrl *side
			controlMissing := false
			if st.needsControl() {
				c, missing := st.measure(lk, kpi, g.Control)
				record(missing)
				controlMissing = len(missing) > 0
				ctrl = &c
			}

			var comparisons []experiment.VariationResult
			for _, vc := range g.Variations {
				v, missing := st.measure(lk, kpi, vc.Column)
				record(missing)
				if len(missing) > 0 || controlMissing {
					continue
				}
				r := st.compare(ctrl, &v)
				r.VariationNum = vc.Num
				comparisons = append(comparisons, r)
			}
			if len(comparisons) == 0 {
				e.diag.Debug("KPI %q segment %q: no comparable data", kpi.DisplayName(), g.Segment)
				continue
			}

			result := experiment.KPIResult{
				ReportOrder:  in.Partition.ReportOrder,
				Country:      in.Partition.Country,
				Segment:      g.Segment,
				KPIName:      kpi.DisplayName(),
				KPIType:      kpi.Type,
				Category:     kpi.Category,
				Partition:    in.Partition,
				KPIIndex:     ki,
				SegmentIndex: si,
			}
			if multi {
				result.ControlValue = comparisons[0].ControlValue
				result.ControlRate = comparisons[0].ControlRate
				result.DenominatorControl = comparisons[0].DenominatorControl
				result.Variations = comparisons
			} else {
				fillFlat(&result, comparisons[0])
			}
			out.Results = append(out.Results, result)
		}
	}
	return out, nil
}

func fillFlat(r *experiment.KPIResult, c experiment.VariationResult) {
	r.ControlValue = c.ControlValue
	r.VariationValue = c.VariationValue
	r.ControlRate = c.ControlRate
	r.VariationRate = c.VariationRate
	r.Uplift = c.Uplift
	r.Confidence = c.Confidence
	r.Verdict = c.Verdict
	r.DenominatorSize = c.DenominatorSize
	r.DenominatorControl = c.DenominatorControl
	r.DenominatorVariation = c.DenominatorVariation
}
