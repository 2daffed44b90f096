package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"abkpi/domain/experiment"
	"abkpi/internal/errors"
	"abkpi/internal/segments"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// KPISpec is one KPI as written in an analysis config file.
type KPISpec struct {
	Name        string `json:"name" validate:"required_without=Numerator"`
	Numerator   string `json:"numerator" validate:"required_without=Name"`
	Denominator string `json:"denominator"`
	Type        string `json:"type" validate:"omitempty,oneof=rate simple revenue rpv variation_only"`
	Category    string `json:"category"`
}

// FileSpec tags one report file.
type FileSpec struct {
	Path        string `json:"path" validate:"required"`
	Country     string `json:"country"`
	ReportOrder string `json:"reportOrder"`
}

// AnalysisConfig is the per-run request: which KPIs over which segments.
type AnalysisConfig struct {
	KPIs           []KPISpec  `json:"primaryKPIs" validate:"required,min=1,dive"`
	Segments       []string   `json:"segments"`
	VariationCount int        `json:"variationCount" validate:"gte=0,lte=50"`
	Country        string     `json:"country"`
	Files          []FileSpec `json:"files" validate:"dive"`
	UseAI          bool       `json:"useAI"`
	SplitCountries bool       `json:"splitCountries"`
	AutoSegments   bool       `json:"autoSegments"`
	Debug          bool       `json:"debug"`
}

// UnmarshalJSON accepts "kpis" as an alias of "primaryKPIs".
func (c *AnalysisConfig) UnmarshalJSON(data []byte) error {
	type plain AnalysisConfig
	var aux struct {
		plain
		Alias []KPISpec `json:"kpis"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = AnalysisConfig(aux.plain)
	if len(c.KPIs) == 0 {
		c.KPIs = aux.Alias
	}
	return nil
}

// ParseAnalysisConfig decodes, defaults and validates a config document.
func ParseAnalysisConfig(data []byte) (*AnalysisConfig, error) {
	var cfg AnalysisConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &errors.AppError{Code: errors.CodeInvalidInput, Message: "analysis config is not valid JSON", Cause: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadAnalysisConfig reads a config file from disk.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read analysis config %s", path)
	}
	return ParseAnalysisConfig(data)
}

// Validate checks field rules and reports every violation at once.
func (c *AnalysisConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return errors.ConfigInvalid("invalid analysis config: " + strings.Join(msgs, "; "))
		}
		return errors.Wrap(err, "invalid analysis config")
	}
	return nil
}

func (c *AnalysisConfig) applyDefaults() {
	if c.VariationCount < 1 {
		c.VariationCount = 1
	}
	var segs []string
	for _, s := range c.Segments {
		if strings.TrimSpace(s) != "" {
			segs = append(segs, strings.TrimSpace(s))
		}
	}
	if len(segs) == 0 {
		segs = []string{segments.DefaultSegment}
	}
	c.Segments = segs
	c.Country = strings.ToUpper(strings.TrimSpace(c.Country))
}

// KPIConfigs converts the declared KPIs to the engine model.
func (c *AnalysisConfig) KPIConfigs() []experiment.KPIConfig {
	out := make([]experiment.KPIConfig, 0, len(c.KPIs))
	for _, k := range c.KPIs {
		t, _ := experiment.ParseKPIType(k.Type)
		out = append(out, experiment.KPIConfig{
			Name:        k.Name,
			Type:        t,
			Numerator:   k.Numerator,
			Denominator: k.Denominator,
			Category:    k.Category,
		}.Normalized())
	}
	return out
}
