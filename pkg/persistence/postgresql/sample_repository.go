package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/foodreg/sampletrail/pkg/models"
	"github.com/foodreg/sampletrail/pkg/persistence"
)

// SampleRepository handles legacy sample record database operations.
type SampleRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSampleRepository creates a new sample repository.
func NewSampleRepository(db *sql.DB, logger *slog.Logger) *SampleRepository {
	return &SampleRepository{db: db, logger: logger}
}

// SampleByID returns a sample by its ID.
func (r *SampleRepository) SampleByID(ctx context.Context, id string) (*models.Sample, error) {
	query := `
		SELECT
			id
		  , lifted_date
		  , dispatch_date
		  , lab_report_date
		  , lab_result
		  , created_at
		  , updated_at
		FROM samples
		WHERE id = $1
	`

	var sample models.Sample

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sample.ID,
		&sample.LiftedDate,
		&sample.DispatchDate,
		&sample.LabReportDate,
		&sample.LabResult,
		&sample.CreatedAt,
		&sample.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewSampleError("SampleByID", id, persistence.ErrSampleNotFound)
		}

		return nil, fmt.Errorf("failed to scan sample: %w", err)
	}

	return &sample, nil
}

// SaveSample inserts or updates a sample by its ID.
func (r *SampleRepository) SaveSample(ctx context.Context, sample *models.Sample) error {
	now := time.Now().UTC()

	if sample.CreatedAt.IsZero() {
		sample.CreatedAt = now
	}

	sample.UpdatedAt = now

	if sample.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate sample ID: %w", err)
		}

		sample.ID = id.String()
	}

	query := `
		INSERT INTO samples (id, lifted_date, dispatch_date, lab_report_date,
lab_result, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			lifted_date = EXCLUDED.lifted_date,
			dispatch_date = EXCLUDED.dispatch_date,
			lab_report_date = EXCLUDED.lab_report_date,
			lab_result = EXCLUDED.lab_result,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		sample.ID,
		sample.LiftedDate,
		sample.DispatchDate,
		sample.LabReportDate,
		sample.LabResult,
		sample.CreatedAt,
		sample.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save sample %s: %w", sample.ID, err)
	}

	return nil
}

// UpdateLabFields applies a partial update to the lab columns. Nil fields
// in the update keep their stored values.
func (r *SampleRepository) UpdateLabFields(ctx context.Context, id string, update persistence.LabFieldsUpdate) error {
	query := `
		UPDATE samples
		SET lab_result = COALESCE($2, lab_result),
			lab_report_date = COALESCE($3, lab_report_date),
			updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, update.LabResult, update.LabReportDate, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update lab fields for sample %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.NewSampleError("UpdateLabFields", id, persistence.ErrSampleNotFound)
	}

	return nil
}
