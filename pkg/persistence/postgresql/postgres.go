// Package postgresql provides the PostgreSQL persistence implementation for
// the sample workflow engine.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// PostgreSQL driver.
	_ "github.com/lib/pq"

	"github.com/foodreg/sampletrail/pkg/persistence"
	"github.com/foodreg/sampletrail/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db           *sql.DB
	logger       *slog.Logger
	graphRepo    *GraphRepository
	stateRepo    *StateRepository
	sampleRepo   *SampleRepository
	settingsRepo *SettingsRepository
}

// NewPersistence creates a new PostgreSQL persistence layer.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	postgres := &Persistence{
		db:           database,
		logger:       logger,
		graphRepo:    NewGraphRepository(database, logger),
		stateRepo:    NewStateRepository(database, logger),
		sampleRepo:   NewSampleRepository(database, logger),
		settingsRepo: NewSettingsRepository(database, logger),
	}

	// Run migrations on initialization
	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres, nil
}

// Graph returns the workflow graph repository.
func (p *Persistence) Graph() persistence.GraphRepository {
	return p.graphRepo
}

// States returns the sample workflow state repository.
func (p *Persistence) States() persistence.StateRepository {
	return p.stateRepo
}

// Samples returns the sample repository.
func (p *Persistence) Samples() persistence.SampleRepository {
	return p.sampleRepo
}

// Settings returns the workflow settings repository.
func (p *Persistence) Settings() persistence.SettingsRepository {
	return p.settingsRepo
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}
