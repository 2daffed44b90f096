package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

func ptr(f float64) *float64 { return &f }

// Confidence runs a two-sided two-proportion z-test with unpooled standard
// error and returns the control proportion and the confidence (1-p)*100.
//
// Degenerate inputs (a zero denominator, both proportions zero, zero standard
// error) give a nil rate and confidence 0. A non-finite result gives nil for both.
func Confidence(xC, nC, xV, nV float64) (controlRate, confidence *float64) {
	if nC == 0 || nV == 0 {
		return nil, ptr(0)
	}
	pC := xC / nC
	pV := xV / nV
	if pC == 0 && pV == 0 {
		return nil, ptr(0)
	}

	se := math.Sqrt(pC*(1-pC)/nC + pV*(1-pV)/nV)
	if se == 0 {
		return nil, ptr(0)
	}

	z := (pV - pC) / se
	p := 2 * (1 - distuv.UnitNormal.CDF(math.Abs(z)))
	conf := (1 - p) * 100
	if math.IsNaN(conf) || math.IsInf(conf, 0) {
		return nil, nil
	}
	return ptr(pC), ptr(conf)
}

// upliftPercent is (variation-control)/control*100, or 0 for a non-positive base.
func upliftPercent(control, variation float64) float64 {
	if control <= 0 {
		return 0
	}
	return (variation - control) / control * 100
}
