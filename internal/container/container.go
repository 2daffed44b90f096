package container

import (
	"context"
	"fmt"

	"abkpi/adapters/excel"
	"abkpi/adapters/llm"
	"abkpi/adapters/memory"
	"abkpi/adapters/postgres"
	"abkpi/app"
	"abkpi/internal"
	"abkpi/internal/config"
	"abkpi/internal/errors"
	"abkpi/internal/migration"
	"abkpi/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	Reader           ports.GridReader
	RunRepo          ports.RunRepository
	InsightGenerator ports.InsightGenerator

	AnalysisService *app.AnalysisService
}

// New creates a new dependency injection container. A database is opened and
// migrated only when DATABASE_URL is set; otherwise runs live in memory.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	level, _ := internal.ParseLogLevel(cfg.LogLevel)
	c := &Container{
		Config: cfg,
		Logger: internal.NewLogger(level),
	}
	c.Reader = excel.NewDataReader(excel.WithLogger(c.Logger))

	if cfg.Database.Enabled() {
		if err := c.initDatabase(ctx); err != nil {
			return nil, err
		}
	} else {
		c.Logger.Info("DATABASE_URL not set, keeping runs in memory")
		c.RunRepo = memory.NewRunRepository()
	}

	if cfg.AI.Enabled() {
		client, err := llm.NewClient(ctx, cfg.AI)
		if err != nil {
			c.Logger.Warn("AI insights disabled: %v", err)
		} else {
			c.InsightGenerator = llm.NewInsightGenerator(client, cfg.AI.Model, cfg.AI.MaxTokens, cfg.AI.Timeout)
			c.Logger.Info("AI insights enabled (%s, %s)", cfg.AI.Provider, cfg.AI.Model)
		}
	}

	c.AnalysisService = app.NewAnalysisService(c.Reader, c.RunRepo, c.InsightGenerator, cfg.Analysis, c.Logger)
	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	db, err := postgres.Open(ctx, c.Config.Database)
	if err != nil {
		return err
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return errors.Wrap(err, "database migration failed")
	}
	c.DB = db
	c.RunRepo = postgres.NewRunRepository(db)
	c.Logger.Info("connected to PostgreSQL, schema %s", migration.NewRunner().Version())
	return nil
}

// Shutdown releases the database connection.
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
