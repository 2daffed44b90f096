package analysis

import (
	"abkpi/domain/experiment"
	"abkpi/domain/verdict"
	"abkpi/internal/lookup"
)

const (
	defaultRevenueLabel = "Revenue"
	defaultVisitsLabel  = "Visits"
)

// side is what one column yields for a KPI.
type side struct {
	value float64
	den   *float64
	rate  *float64
}

// strategy computes one KPI type. The set is closed: see strategyFor.
type strategy interface {
	needsControl() bool
	// measure resolves the KPI's metrics in col and returns the labels it could not find.
	measure(lk *lookup.Lookuper, kpi experiment.KPIConfig, col int) (side, []string)
	// compare builds the comparison; c is nil when needsControl is false.
	compare(c, v *side) experiment.VariationResult
}

func strategyFor(t experiment.KPIType) (strategy, bool) {
	switch t {
	case experiment.KPIRate, experiment.KPISimple:
		return rateStrategy{}, true
	case experiment.KPIRevenue:
		return revenueStrategy{}, true
	case experiment.KPIRPV:
		return rpvStrategy{}, true
	case experiment.KPIVariationOnly:
		return variationOnlyStrategy{}, true
	}
	return nil, false
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}

func verdictPtr(v verdict.Verdict) *verdict.Verdict { return &v }

func valueOf(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// rateStrategy serves rate and simple KPIs: numerator over optional denominator.
type rateStrategy struct{}

func (rateStrategy) needsControl() bool { return true }

func measureRatio(lk *lookup.Lookuper, kpi experiment.KPIConfig, col int) (side, []string) {
	var s side
	var missing []string
	num, ok := lk.Find(kpi.Numerator, col)
	if !ok {
		missing = append(missing, kpi.Numerator)
	}
	s.value = num
	if kpi.Denominator != "" {
		if den, found := lk.Find(kpi.Denominator, col); found {
			s.den = ptr(den)
			if den > 0 {
				s.rate = ptr(num / den)
			}
		} else if !ok {
			missing = append(missing, kpi.Denominator)
		}
	}
	return s, missing
}

func (rateStrategy) measure(lk *lookup.Lookuper, kpi experiment.KPIConfig, col int) (side, []string) {
	return measureRatio(lk, kpi, col)
}

func (rateStrategy) compare(c, v *side) experiment.VariationResult {
	r := experiment.VariationResult{
		ControlValue:   ptr(c.value),
		VariationValue: ptr(v.value),
		ControlRate:    c.rate,
		VariationRate:  v.rate,
	}
	if c.rate != nil && v.rate != nil {
		r.Uplift = ptr(upliftPercent(*c.rate, *v.rate))
		_, r.Confidence = Confidence(c.value, *c.den, v.value, *v.den)
	} else {
		r.Uplift = ptr(upliftPercent(c.value, v.value))
	}
	r.Verdict = verdictPtr(verdict.Classify(*r.Uplift, c.value, v.value, r.Confidence))
	r.DenominatorControl = valueOf(c.den)
	r.DenominatorVariation = valueOf(v.den)
	if c.den != nil && v.den != nil {
		r.DenominatorSize = *c.den + *v.den
	}
	return r
}

// revenueStrategy compares raw revenue; no significance test applies.
type revenueStrategy struct{}

func (revenueStrategy) needsControl() bool { return true }

func (revenueStrategy) measure(lk *lookup.Lookuper, kpi experiment.KPIConfig, col int) (side, []string) {
	label := labelOr(kpi.Numerator, defaultRevenueLabel)
	rev, ok := lk.Find(label, col)
	if !ok {
		return side{}, []string{label}
	}
	return side{value: rev, den: ptr(rev)}, nil
}

func (revenueStrategy) compare(c, v *side) experiment.VariationResult {
	uplift := upliftPercent(c.value, v.value)
	return experiment.VariationResult{
		ControlValue:         ptr(c.value),
		VariationValue:       ptr(v.value),
		Uplift:               ptr(uplift),
		Verdict:              verdictPtr(verdict.Classify(uplift, c.value, v.value, nil)),
		DenominatorControl:   c.value,
		DenominatorVariation: v.value,
		DenominatorSize:      c.value + v.value,
	}
}

// rpvStrategy is revenue per visit. Confidence treats revenue as the
// proportion numerator and visits as its denominator.
type rpvStrategy struct{}

func (rpvStrategy) needsControl() bool { return true }

func (rpvStrategy) measure(lk *lookup.Lookuper, kpi experiment.KPIConfig, col int) (side, []string) {
	revLabel := labelOr(kpi.Numerator, defaultRevenueLabel)
	visitsLabel := labelOr(kpi.Denominator, defaultVisitsLabel)
	var missing []string
	rev, ok := lk.Find(revLabel, col)
	if !ok {
		missing = append(missing, revLabel)
	}
	visits, ok := lk.Find(visitsLabel, col)
	if !ok {
		missing = append(missing, visitsLabel)
	}
	if len(missing) > 0 {
		return side{}, missing
	}
	rate := 0.0
	if visits > 0 {
		rate = rev / visits
	}
	return side{value: rev, den: ptr(visits), rate: ptr(rate)}, nil
}

func (rpvStrategy) compare(c, v *side) experiment.VariationResult {
	uplift := upliftPercent(*c.rate, *v.rate)
	_, conf := Confidence(c.value, *c.den, v.value, *v.den)
	return experiment.VariationResult{
		ControlValue:         ptr(c.value),
		VariationValue:       ptr(v.value),
		ControlRate:          c.rate,
		VariationRate:        v.rate,
		Uplift:               ptr(uplift),
		Confidence:           conf,
		Verdict:              verdictPtr(verdict.Classify(uplift, c.value, v.value, conf)),
		DenominatorControl:   *c.den,
		DenominatorVariation: *v.den,
		DenominatorSize:      *c.den + *v.den,
	}
}

// variationOnlyStrategy reports the variation side alone.
type variationOnlyStrategy struct{}

func (variationOnlyStrategy) needsControl() bool { return false }

func (variationOnlyStrategy) measure(lk *lookup.Lookuper, kpi experiment.KPIConfig, col int) (side, []string) {
	return measureRatio(lk, kpi, col)
}

func (variationOnlyStrategy) compare(_, v *side) experiment.VariationResult {
	den := valueOf(v.den)
	return experiment.VariationResult{
		VariationValue:       ptr(v.value),
		VariationRate:        v.rate,
		DenominatorVariation: den,
		DenominatorSize:      den,
	}
}
