package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/foodreg/sampletrail/pkg/models"
)

// SettingsRepository stores the workflow settings as a single JSON document
// at <root>/settings.json.
type SettingsRepository struct {
	root string
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(root string) *SettingsRepository {
	return &SettingsRepository{root: root}
}

// Settings returns the stored settings, or the defaults when nothing has
// been saved yet.
func (sr *SettingsRepository) Settings(_ context.Context) (models.WorkflowSettings, error) {
	filePath := filepath.Join(sr.root, "settings.json")

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.DefaultWorkflowSettings(), nil
		}

		return models.WorkflowSettings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	var settings models.WorkflowSettings

	err = json.Unmarshal(body, &settings)
	if err != nil {
		return models.WorkflowSettings{}, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	return settings, nil
}

// SaveSettings stores the settings, replacing any previous values.
func (sr *SettingsRepository) SaveSettings(_ context.Context, settings models.WorkflowSettings) error {
	err := os.MkdirAll(sr.root, 0750)
	if err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	return os.WriteFile(filepath.Join(sr.root, "settings.json"), data, 0600)
}
