package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/foodreg/sampletrail/pkg/models"
	"github.com/foodreg/sampletrail/pkg/persistence"
)

// StateRepository handles sample workflow state file operations. States are
// grouped per sample under <root>/states/<sampleID>/, one JSON document per
// row. Rows are created and overwritten, never deleted.
type StateRepository struct {
	root string
}

// NewStateRepository creates a new state repository.
func NewStateRepository(root string) *StateRepository {
	return &StateRepository{root: root}
}

// StatesBySample returns all state rows for a sample ordered by entered_at.
func (sr *StateRepository) StatesBySample(_ context.Context, sampleID string) ([]*models.SampleWorkflowState, error) {
	if err := validateDocumentID(sampleID); err != nil {
		return nil, persistence.NewStateError("StatesBySample", sampleID, "", err)
	}

	dir := filepath.Join(sr.root, "states", sampleID)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.SampleWorkflowState{}, nil
		}

		return nil, fmt.Errorf("failed to read states directory for sample %s: %w", sampleID, err)
	}

	states := make([]*models.SampleWorkflowState, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		body, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read state file %s: %w", entry.Name(), err)
		}

		var state models.SampleWorkflowState

		err = json.Unmarshal(body, &state)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal state file %s: %w", entry.Name(), err)
		}

		states = append(states, &state)
	}

	sort.SliceStable(states, func(i, j int) bool {
		if !states[i].EnteredAt.Equal(states[j].EnteredAt) {
			return states[i].EnteredAt.Before(states[j].EnteredAt)
		}

		return states[i].ID < states[j].ID
	})

	return states, nil
}

// StateBySampleAndNode returns the state row for the given pair. When
// duplicate rows exist for the pair the earliest one is the canonical row.
func (sr *StateRepository) StateBySampleAndNode(ctx context.Context, sampleID, nodeID string) (*models.SampleWorkflowState, error) {
	states, err := sr.StatesBySample(ctx, sampleID)
	if err != nil {
		return nil, err
	}

	for _, state := range states {
		if state.NodeID == nodeID {
			return state, nil
		}
	}

	return nil, persistence.NewStateError("StateBySampleAndNode", sampleID, nodeID, persistence.ErrStateNotFound)
}

// SaveState upserts the state row for (sampleID, nodeID). An existing row
// keeps its id and entered_at and has its node_data replaced; a new row is
// inserted with a fresh id. Either way the row comes back stamped completed.
func (sr *StateRepository) SaveState(ctx context.Context, sampleID, nodeID string, nodeData map[string]any) (*models.SampleWorkflowState, error) {
	if err := validateDocumentID(sampleID); err != nil {
		return nil, persistence.NewStateError("SaveState", sampleID, nodeID, err)
	}

	if nodeData == nil {
		nodeData = map[string]any{}
	}

	now := time.Now().UTC()

	state, err := sr.StateBySampleAndNode(ctx, sampleID, nodeID)
	if err != nil && !persistence.IsStateNotFound(err) {
		return nil, fmt.Errorf("failed to look up existing state: %w", err)
	}

	if state == nil {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate state ID: %w", err)
		}

		state = &models.SampleWorkflowState{
			ID:        id.String(),
			SampleID:  sampleID,
			NodeID:    nodeID,
			EnteredAt: now,
		}
	}

	state.NodeData = nodeData
	state.CompletedAt = &now
	state.Status = models.StateStatusCompleted

	dir := filepath.Join(sr.root, "states", sampleID)

	err = os.MkdirAll(dir, 0750)
	if err != nil {
		return nil, fmt.Errorf("failed to create states directory for sample %s: %w", sampleID, err)
	}

	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state %s: %w", state.ID, err)
	}

	filePath := filepath.Join(dir, state.ID+".json")

	err = os.WriteFile(filePath, data, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to write state %s: %w", state.ID, err)
	}

	return state, nil
}
