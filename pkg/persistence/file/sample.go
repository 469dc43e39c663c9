package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/foodreg/sampletrail/pkg/models"
	"github.com/foodreg/sampletrail/pkg/persistence"
)

// SampleRepository handles legacy sample record file operations. Samples
// live under <root>/samples/, one JSON document per record.
type SampleRepository struct {
	root string
}

// NewSampleRepository creates a new sample repository.
func NewSampleRepository(root string) *SampleRepository {
	return &SampleRepository{root: root}
}

// SampleByID retrieves a sample by its ID from the file system.
func (sr *SampleRepository) SampleByID(_ context.Context, id string) (*models.Sample, error) {
	if err := validateDocumentID(id); err != nil {
		return nil, persistence.NewSampleError("SampleByID", id, err)
	}

	filePath := filepath.Clean(filepath.Join(sr.root, "samples", id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewSampleError("SampleByID", id, persistence.ErrSampleNotFound)
		}

		return nil, fmt.Errorf("failed to fetch sample %s: %w", id, err)
	}

	var sample models.Sample

	err = json.Unmarshal(body, &sample)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal sample %s: %w", id, err)
	}

	return &sample, nil
}

// SaveSample saves a sample to the file system.
func (sr *SampleRepository) SaveSample(_ context.Context, sample *models.Sample) error {
	err := os.MkdirAll(filepath.Join(sr.root, "samples"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create samples directory: %w", err)
	}

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

	if err := validateDocumentID(sample.ID); err != nil {
		return persistence.NewSampleError("SaveSample", sample.ID, err)
	}

	data, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sample %s: %w", sample.ID, err)
	}

	filePath := filepath.Join(sr.root, "samples", sample.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}

// UpdateLabFields applies a partial update to the lab columns. Nil fields
// in the update keep their stored values.
func (sr *SampleRepository) UpdateLabFields(ctx context.Context, id string, update persistence.LabFieldsUpdate) error {
	sample, err := sr.SampleByID(ctx, id)
	if err != nil {
		return err
	}

	if update.LabResult != nil {
		sample.LabResult = *update.LabResult
	}

	if update.LabReportDate != nil {
		sample.LabReportDate = update.LabReportDate
	}

	return sr.SaveSample(ctx, sample)
}
