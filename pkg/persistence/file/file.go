// Package file provides a file-based persistence implementation for the
// sample workflow engine, intended for development and tests.
package file

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/foodreg/sampletrail/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root         string
	graphRepo    *GraphRepository
	stateRepo    *StateRepository
	sampleRepo   *SampleRepository
	settingsRepo *SettingsRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		graphRepo:    NewGraphRepository(cleanRoot),
		stateRepo:    NewStateRepository(cleanRoot),
		sampleRepo:   NewSampleRepository(cleanRoot),
		settingsRepo: NewSettingsRepository(cleanRoot),
	}
}

// Graph returns the workflow graph repository.
func (fp *Persistence) Graph() persistence.GraphRepository {
	return fp.graphRepo
}

// States returns the sample workflow state repository.
func (fp *Persistence) States() persistence.StateRepository {
	return fp.stateRepo
}

// Samples returns the sample repository.
func (fp *Persistence) Samples() persistence.SampleRepository {
	return fp.sampleRepo
}

// Settings returns the workflow settings repository.
func (fp *Persistence) Settings() persistence.SettingsRepository {
	return fp.settingsRepo
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// validateDocumentID validates that an identifier is safe for file operations.
func validateDocumentID(id string) error {
	if id == "" {
		return errors.New("identifier cannot be empty")
	}

	// Check for path traversal attempts
	if strings.Contains(id, "..") || strings.Contains(id, "/") || strings.Contains(id, "\\") {
		return errors.New("identifier contains invalid characters")
	}

	return nil
}
