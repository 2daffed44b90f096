package verdict

// Verdict is the categorical outcome of comparing a variation to control.
type Verdict string

const (
	InsufficientSample       Verdict = "Insufficient Sample"
	NoDifference             Verdict = "No Difference"
	VariationWins            Verdict = "Variation Wins"
	ControlWins              Verdict = "Control Wins"
	VariationWinsProvisional Verdict = "Variation Wins (Provisional)"
	ControlWinsProvisional   Verdict = "Control Wins (Provisional)"
)

// Decision thresholds. These are fixed, not configuration.
const (
	MinSample             = 100.0
	SignificantConfidence = 95.0
	ProvisionalConfidence = 90.0
	MinUpliftPercent      = 3.0
)

// Classify maps an uplift, the two raw numerators and an optional confidence
// to a verdict. Rules apply in order; the first match wins.
func Classify(uplift, numControl, numVariation float64, confidence *float64) Verdict {
	if numControl < MinSample || numVariation < MinSample {
		return InsufficientSample
	}
	if confidence == nil {
		return NoDifference
	}
	c := *confidence
	switch {
	case c >= SignificantConfidence:
		if uplift >= MinUpliftPercent {
			return VariationWins
		}
		if uplift <= -MinUpliftPercent {
			return ControlWins
		}
	case c >= ProvisionalConfidence:
		if uplift >= MinUpliftPercent {
			return VariationWinsProvisional
		}
		if uplift <= -MinUpliftPercent {
			return ControlWinsProvisional
		}
	}
	return NoDifference
}

// IsWin reports a variation win, provisional or not.
func (v Verdict) IsWin() bool {
	return v == VariationWins || v == VariationWinsProvisional
}

// IsLoss reports a control win, provisional or not.
func (v Verdict) IsLoss() bool {
	return v == ControlWins || v == ControlWinsProvisional
}

// IsProvisional reports either provisional verdict.
func (v Verdict) IsProvisional() bool {
	return v == VariationWinsProvisional || v == ControlWinsProvisional
}

func (v Verdict) String() string { return string(v) }
