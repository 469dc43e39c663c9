package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/foodreg/sampletrail/pkg/models"
	"github.com/foodreg/sampletrail/pkg/persistence"
)

// StateRepository handles sample workflow state database operations.
// Rows are regulatory history: the repository inserts and overwrites but
// never deletes.
type StateRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStateRepository creates a new state repository.
func NewStateRepository(db *sql.DB, logger *slog.Logger) *StateRepository {
	return &StateRepository{db: db, logger: logger}
}

const stateColumns = `
	id
  , sample_id
  , node_id
  , node_data
  , entered_at
  , completed_at
  , status
`

// StatesBySample returns all state rows for a sample ordered by entered_at.
func (r *StateRepository) StatesBySample(ctx context.Context, sampleID string) ([]*models.SampleWorkflowState, error) {
	query := `
		SELECT ` + stateColumns + `
		FROM sample_workflow_states
		WHERE sample_id = $1
		ORDER BY entered_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, sampleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sample states: %w", err)
	}

	defer func(ctx context.Context, r *StateRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	states := make([]*models.SampleWorkflowState, 0)

	for rows.Next() {
		state, err := r.scanState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan state: %w", err)
		}

		states = append(states, state)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating states: %w", err)
	}

	return states, nil
}

// StateBySampleAndNode returns the state row for the given pair. When
// duplicate rows exist for the pair the earliest one is the canonical row.
func (r *StateRepository) StateBySampleAndNode(ctx context.Context, sampleID, nodeID string) (*models.SampleWorkflowState, error) {
	query := `
		SELECT ` + stateColumns + `
		FROM sample_workflow_states
		WHERE sample_id = $1 AND node_id = $2
		ORDER BY entered_at ASC, id ASC
		LIMIT 1
	`

	state, err := r.scanState(r.db.QueryRowContext(ctx, query, sampleID, nodeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStateError("StateBySampleAndNode", sampleID, nodeID, persistence.ErrStateNotFound)
		}

		return nil, fmt.Errorf("failed to scan state: %w", err)
	}

	return state, nil
}

// SaveState upserts the state row for (sampleID, nodeID). An existing row
// keeps its id and entered_at and has its node_data replaced; a new row is
// inserted with a fresh id. Either way the row comes back stamped completed.
// The lookup and write are two statements; concurrent submissions for the
// same pair can each insert a row, and reads then take the earliest.
func (r *StateRepository) SaveState(ctx context.Context, sampleID, nodeID string, nodeData map[string]any) (*models.SampleWorkflowState, error) {
	if nodeData == nil {
		nodeData = map[string]any{}
	}

	nodeDataJSON, err := json.Marshal(nodeData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal node data: %w", err)
	}

	now := time.Now().UTC()

	existing, err := r.StateBySampleAndNode(ctx, sampleID, nodeID)
	if err != nil && !persistence.IsStateNotFound(err) {
		return nil, fmt.Errorf("failed to look up existing state: %w", err)
	}

	if existing != nil {
		query := `
			UPDATE sample_workflow_states
			SET node_data = $1, completed_at = $2, status = $3
			WHERE id = $4
		`

		_, err = r.db.ExecContext(ctx, query, nodeDataJSON, now, models.StateStatusCompleted, existing.ID)
		if err != nil {
			return nil, persistence.NewStateError("SaveState", sampleID, nodeID, err)
		}

		existing.NodeData = nodeData
		existing.CompletedAt = &now
		existing.Status = models.StateStatusCompleted

		return existing, nil
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state ID: %w", err)
	}

	state := &models.SampleWorkflowState{
		ID:          id.String(),
		SampleID:    sampleID,
		NodeID:      nodeID,
		NodeData:    nodeData,
		EnteredAt:   now,
		CompletedAt: &now,
		Status:      models.StateStatusCompleted,
	}

	query := `
		INSERT INTO sample_workflow_states (id, sample_id, node_id, node_data,
entered_at, completed_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.ExecContext(ctx, query,
		state.ID,
		state.SampleID,
		state.NodeID,
		nodeDataJSON,
		state.EnteredAt,
		state.CompletedAt,
		state.Status,
	)
	if err != nil {
		return nil, persistence.NewStateError("SaveState", sampleID, nodeID, err)
	}

	return state, nil
}

func (r *StateRepository) scanState(scanner interface {
	Scan(dest ...any) error
}) (*models.SampleWorkflowState, error) {
	var (
		state        models.SampleWorkflowState
		nodeDataJSON []byte
	)

	err := scanner.Scan(
		&state.ID,
		&state.SampleID,
		&state.NodeID,
		&nodeDataJSON,
		&state.EnteredAt,
		&state.CompletedAt,
		&state.Status,
	)
	if err != nil {
		return nil, err
	}

	if nodeDataJSON != nil {
		err := json.Unmarshal(nodeDataJSON, &state.NodeData)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal node data: %w", err)
		}
	}

	return &state, nil
}
