package migration

import (
	"context"

	"abkpi/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in order. Every step is idempotent.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, step := range Steps() {
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			return errors.Wrap(err, "failed to "+step.Name)
		}
	}
	return nil
}

// Step is one named schema statement.
type Step struct {
	Name string
	SQL  string
}

// Steps lists the schema statements in the order Run applies them.
func Steps() []Step {
	return []Step{
		{
			Name: "create analysis_runs table",
			SQL: `
		CREATE TABLE IF NOT EXISTS analysis_runs (
			id UUID PRIMARY KEY,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			kpi_count INTEGER NOT NULL DEFAULT 0,
			result_count INTEGER NOT NULL DEFAULT 0,
			recommendation TEXT NOT NULL DEFAULT '',
			payload JSONB NOT NULL
		)`,
		},
		{
			Name: "create analysis_runs index",
			SQL: `
		CREATE INDEX IF NOT EXISTS idx_analysis_runs_created_at
			ON analysis_runs (created_at DESC)`,
		},
	}
}
