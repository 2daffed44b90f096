// Package experiment holds the A/B report data model shared by layout
// detection, the KPI engine and the orchestration layer.
package experiment

import (
	"strings"

	"abkpi/domain/core"
)

// KPIType selects how a KPI is computed.
type KPIType string

const (
	KPIRate          KPIType = "rate"
	KPISimple        KPIType = "simple"
	KPIRevenue       KPIType = "revenue"
	KPIRPV           KPIType = "rpv"
	KPIVariationOnly KPIType = "variation_only"
)

// ParseKPIType accepts the known type names; "" means rate.
func ParseKPIType(s string) (KPIType, bool) {
	switch t := KPIType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return KPIRate, true
	case KPIRate, KPISimple, KPIRevenue, KPIRPV, KPIVariationOnly:
		return t, true
	}
	return "", false
}

// KPIConfig declares one KPI to compute.
type KPIConfig struct {
	Name        string  `json:"name"`
	Type        KPIType `json:"type"`
	Numerator   string  `json:"numerator"`
	Denominator string  `json:"denominator,omitempty"`
	Category    string  `json:"category,omitempty"`
}

// DisplayName is the name, falling back to the numerator label.
func (k KPIConfig) DisplayName() string {
	if strings.TrimSpace(k.Name) != "" {
		return k.Name
	}
	return k.Numerator
}

// Validate checks that the KPI can be dispatched.
func (k KPIConfig) Validate() error {
	if _, ok := ParseKPIType(string(k.Type)); !ok {
		return core.NewInvalidKPIError(k.DisplayName(), "unknown type "+string(k.Type))
	}
	if strings.TrimSpace(k.DisplayName()) == "" {
		return core.NewInvalidKPIError("<unnamed>", "needs a name or a numerator")
	}
	return nil
}

// Normalized returns a copy with the type defaulted and labels trimmed.
func (k KPIConfig) Normalized() KPIConfig {
	t, _ := ParseKPIType(string(k.Type))
	k.Type = t
	k.Name = strings.TrimSpace(k.Name)
	k.Numerator = strings.TrimSpace(k.Numerator)
	k.Denominator = strings.TrimSpace(k.Denominator)
	if k.Numerator == "" && k.Type != KPIRevenue && k.Type != KPIRPV {
		k.Numerator = k.Name
	}
	return k
}
