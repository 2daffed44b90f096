package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"

	"abkpi/domain/core"
	"abkpi/domain/experiment"
	"abkpi/internal/errors"
	"abkpi/ports"

	"github.com/jmoiron/sqlx"
)

// RunRepositoryImpl implements RunRepository for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

// Save inserts the run, replacing any stored run with the same ID.
func (r *RunRepositoryImpl) Save(ctx context.Context, run *experiment.Run) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO analysis_runs (id, created_at, kpi_count, result_count, recommendation, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			kpi_count = EXCLUDED.kpi_count,
			result_count = EXCLUDED.result_count,
			recommendation = EXCLUDED.recommendation,
			payload = EXCLUDED.payload
	`, run.ID.String(), run.CreatedAt, len(run.KPIs), len(run.Results), run.Insights.Recommendation, runPayload{Run: run})
	if err != nil {
		return errors.DatabaseError("failed to save run", err)
	}
	return nil
}

// Get retrieves a run by ID
func (r *RunRepositoryImpl) Get(ctx context.Context, id core.RunID) (*experiment.Run, error) {
	var payload runPayload
	err := r.db.QueryRowxContext(ctx, `
		SELECT payload FROM analysis_runs WHERE id = $1
	`, id.String()).Scan(&payload)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrRunNotFound
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to load run", err)
	}
	if payload.Run == nil {
		return nil, core.ErrRunNotFound
	}
	return payload.Run, nil
}

// ListRecent returns the newest runs first, optionally limited
func (r *RunRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]ports.RunSummary, error) {
	query := `
		SELECT id, created_at, kpi_count, result_count, recommendation
		FROM analysis_runs
		ORDER BY created_at DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	runs := []ports.RunSummary{}
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, errors.DatabaseError("failed to list runs", err)
	}
	return runs, nil
}
