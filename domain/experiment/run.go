package experiment

import (
	"time"

	"abkpi/domain/core"
)

// FileError records a report file that could not be analyzed.
type FileError struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// Insights is the narrative layer over a run's results.
type Insights struct {
	Summary        []string `json:"summary"`
	Recommendation string   `json:"recommendation"`
	Reason         string   `json:"reason"`
	AI             string   `json:"ai,omitempty"`
	Markdown       string   `json:"markdown"`
}

// Run is one analysis request and everything it produced.
type Run struct {
	ID         core.RunID      `json:"id"`
	CreatedAt  time.Time       `json:"createdAt"`
	KPIs       []KPIConfig     `json:"kpis"`
	Segments   []string        `json:"segments"`
	Variations int             `json:"variationCount"`
	Results    []KPIResult     `json:"results"`
	Missing    []MissingMetric `json:"missingMetrics"`
	Notices    []string        `json:"notices"`
	Insights   Insights        `json:"insights"`
	FileErrors []FileError     `json:"fileErrors,omitempty"`
}
