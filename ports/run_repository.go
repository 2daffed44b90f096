package ports

import (
	"context"
	"time"

	"abkpi/domain/core"
	"abkpi/domain/experiment"
)

// RunSummary is the listing view of a stored run.
type RunSummary struct {
	ID             core.RunID `json:"id" db:"id"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	KPICount       int        `json:"kpiCount" db:"kpi_count"`
	ResultCount    int        `json:"resultCount" db:"result_count"`
	Recommendation string     `json:"recommendation" db:"recommendation"`
}

// RunRepository stores analysis runs.
type RunRepository interface {
	Save(ctx context.Context, run *experiment.Run) error
	// Get returns core.ErrRunNotFound when no run has the id.
	Get(ctx context.Context, id core.RunID) (*experiment.Run, error)
	ListRecent(ctx context.Context, limit int) ([]RunSummary, error)
}
