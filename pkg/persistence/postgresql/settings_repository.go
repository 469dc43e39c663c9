package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/foodreg/sampletrail/pkg/models"
)

// SettingsRepository handles the singleton workflow settings row.
type SettingsRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *sql.DB, logger *slog.Logger) *SettingsRepository {
	return &SettingsRepository{db: db, logger: logger}
}

// Settings returns the stored settings, or the defaults when nothing has
// been saved yet.
func (r *SettingsRepository) Settings(ctx context.Context) (models.WorkflowSettings, error) {
	query := `
		SELECT node_edit_hours, allow_node_edit
		FROM workflow_settings
		WHERE id = 1
	`

	var settings models.WorkflowSettings

	err := r.db.QueryRowContext(ctx, query).Scan(&settings.NodeEditHours, &settings.AllowNodeEdit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultWorkflowSettings(), nil
		}

		return models.WorkflowSettings{}, fmt.Errorf("failed to scan settings: %w", err)
	}

	return settings, nil
}

// SaveSettings stores the settings, replacing any previous values.
func (r *SettingsRepository) SaveSettings(ctx context.Context, settings models.WorkflowSettings) error {
	query := `
		INSERT INTO workflow_settings (id, node_edit_hours, allow_node_edit, updated_at)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			node_edit_hours = EXCLUDED.node_edit_hours,
			allow_node_edit = EXCLUDED.allow_node_edit,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, settings.NodeEditHours, settings.AllowNodeEdit, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	return nil
}
