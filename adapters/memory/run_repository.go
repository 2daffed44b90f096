package memory

import (
	"context"
	"sort"
	"sync"

	"abkpi/domain/core"
	"abkpi/domain/experiment"
	"abkpi/ports"
)

// RunRepository keeps runs in process memory. Used when no database URL is set.
type RunRepository struct {
	mu   sync.RWMutex
	runs map[core.RunID]*experiment.Run
}

func NewRunRepository() *RunRepository {
	return &RunRepository{runs: make(map[core.RunID]*experiment.Run)}
}

func (r *RunRepository) Save(ctx context.Context, run *experiment.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = run
	return nil
}

func (r *RunRepository) Get(ctx context.Context, id core.RunID) (*experiment.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, core.ErrRunNotFound
	}
	return run, nil
}

func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]ports.RunSummary, error) {
	r.mu.RLock()
	out := make([]ports.RunSummary, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, ports.RunSummary{
			ID:             run.ID,
			CreatedAt:      run.CreatedAt,
			KPICount:       len(run.KPIs),
			ResultCount:    len(run.Results),
			Recommendation: run.Insights.Recommendation,
		})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ ports.RunRepository = (*RunRepository)(nil)
