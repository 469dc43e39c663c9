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

// GraphRepository handles workflow node and transition file operations.
// Nodes live under <root>/nodes/ and transitions under <root>/transitions/,
// one JSON document per record.
type GraphRepository struct {
	root string
}

// NewGraphRepository creates a new graph repository.
func NewGraphRepository(root string) *GraphRepository {
	return &GraphRepository{root: root}
}

// ActiveNodes returns all active nodes ordered by position.
func (gr *GraphRepository) ActiveNodes(ctx context.Context) ([]*models.WorkflowNode, error) {
	all, err := gr.allNodes(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make([]*models.WorkflowNode, 0)

	for _, node := range all {
		if node.Status == models.NodeStatusActive {
			nodes = append(nodes, node)
		}
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Position != nodes[j].Position {
			return nodes[i].Position < nodes[j].Position
		}

		return nodes[i].CreatedAt.Before(nodes[j].CreatedAt)
	})

	return nodes, nil
}

// NodeByID retrieves a node by its ID from the file system.
func (gr *GraphRepository) NodeByID(_ context.Context, id string) (*models.WorkflowNode, error) {
	if err := validateDocumentID(id); err != nil {
		return nil, persistence.NewNodeError("NodeByID", id, err)
	}

	filePath := filepath.Clean(filepath.Join(gr.root, "nodes", id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewNodeError("NodeByID", id, persistence.ErrNodeNotFound)
		}

		return nil, fmt.Errorf("failed to fetch node %s: %w", id, err)
	}

	var node models.WorkflowNode

	err = json.Unmarshal(body, &node)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal node %s: %w", id, err)
	}

	return &node, nil
}

// SaveNode saves a node to the file system.
func (gr *GraphRepository) SaveNode(_ context.Context, node *models.WorkflowNode) error {
	err := os.MkdirAll(filepath.Join(gr.root, "nodes"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create nodes directory: %w", err)
	}

	now := time.Now().UTC()
	if node.CreatedAt.IsZero() {
		node.CreatedAt = now
	}

	node.UpdatedAt = now

	if node.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate node ID: %w", err)
		}

		node.ID = id.String()
	}

	if node.Status == "" {
		node.Status = models.NodeStatusActive
	}

	if node.InputFields == nil {
		node.InputFields = []models.InputField{}
	}

	if node.TemplateIDs == nil {
		node.TemplateIDs = []string{}
	}

	if err := validateDocumentID(node.ID); err != nil {
		return persistence.NewNodeError("SaveNode", node.ID, err)
	}

	data, err := json.MarshalIndent(node, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal node %s: %w", node.ID, err)
	}

	filePath := filepath.Join(gr.root, "nodes", node.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}

// DeleteNode removes a node and every transition referencing it. Nodes
// still referenced by sample history are protected.
func (gr *GraphRepository) DeleteNode(ctx context.Context, id string) error {
	if err := validateDocumentID(id); err != nil {
		return persistence.NewNodeError("DeleteNode", id, err)
	}

	filePath := filepath.Join(gr.root, "nodes", id+".json")

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return persistence.NewNodeError("DeleteNode", id, persistence.ErrNodeNotFound)
	}

	referenced, err := gr.nodeReferenced(id)
	if err != nil {
		return fmt.Errorf("failed to check node references: %w", err)
	}

	if referenced {
		return persistence.NewNodeError("DeleteNode", id, persistence.ErrNodeReferenced)
	}

	transitions, err := gr.allTransitions(ctx)
	if err != nil {
		return err
	}

	for _, transition := range transitions {
		if transition.FromNodeID != id && transition.ToNodeID != id {
			continue
		}

		err = gr.DeleteTransition(ctx, transition.ID)
		if err != nil && !persistence.IsTransitionNotFound(err) {
			return err
		}
	}

	err = os.Remove(filePath)
	if err != nil {
		return fmt.Errorf("failed to delete node %s: %w", id, err)
	}

	return nil
}

// ActiveTransitions returns all active transitions ordered by display_order.
func (gr *GraphRepository) ActiveTransitions(ctx context.Context) ([]*models.WorkflowTransition, error) {
	all, err := gr.allTransitions(ctx)
	if err != nil {
		return nil, err
	}

	transitions := make([]*models.WorkflowTransition, 0)

	for _, transition := range all {
		if transition.Status == models.TransitionStatusActive {
			transitions = append(transitions, transition)
		}
	}

	sort.SliceStable(transitions, func(i, j int) bool {
		if transitions[i].DisplayOrder != transitions[j].DisplayOrder {
			return transitions[i].DisplayOrder < transitions[j].DisplayOrder
		}

		return transitions[i].CreatedAt.Before(transitions[j].CreatedAt)
	})

	return transitions, nil
}

// TransitionByID retrieves a transition by its ID from the file system.
func (gr *GraphRepository) TransitionByID(_ context.Context, id string) (*models.WorkflowTransition, error) {
	if err := validateDocumentID(id); err != nil {
		return nil, persistence.NewTransitionError("TransitionByID", id, err)
	}

	filePath := filepath.Clean(filepath.Join(gr.root, "transitions", id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewTransitionError("TransitionByID", id, persistence.ErrTransitionNotFound)
		}

		return nil, fmt.Errorf("failed to fetch transition %s: %w", id, err)
	}

	var transition models.WorkflowTransition

	err = json.Unmarshal(body, &transition)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal transition %s: %w", id, err)
	}

	return &transition, nil
}

// SaveTransition saves a transition to the file system.
func (gr *GraphRepository) SaveTransition(_ context.Context, transition *models.WorkflowTransition) error {
	err := os.MkdirAll(filepath.Join(gr.root, "transitions"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create transitions directory: %w", err)
	}

	if transition.CreatedAt.IsZero() {
		transition.CreatedAt = time.Now().UTC()
	}

	if transition.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate transition ID: %w", err)
		}

		transition.ID = id.String()
	}

	if transition.Status == "" {
		transition.Status = models.TransitionStatusActive
	}

	if err := validateDocumentID(transition.ID); err != nil {
		return persistence.NewTransitionError("SaveTransition", transition.ID, err)
	}

	data, err := json.MarshalIndent(transition, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transition %s: %w", transition.ID, err)
	}

	filePath := filepath.Join(gr.root, "transitions", transition.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}

// DeleteTransition removes a transition by its ID.
func (gr *GraphRepository) DeleteTransition(_ context.Context, id string) error {
	if err := validateDocumentID(id); err != nil {
		return persistence.NewTransitionError("DeleteTransition", id, err)
	}

	filePath := filepath.Join(gr.root, "transitions", id+".json")

	err := os.Remove(filePath)

	if err != nil && os.IsNotExist(err) {
		return persistence.NewTransitionError("DeleteTransition", id, persistence.ErrTransitionNotFound)
	}

	if err != nil {
		return fmt.Errorf("failed to delete transition %s: %w", id, err)
	}

	return nil
}

func (gr *GraphRepository) allNodes(_ context.Context) ([]*models.WorkflowNode, error) {
	dir := filepath.Join(gr.root, "nodes")

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.WorkflowNode{}, nil
		}

		return nil, fmt.Errorf("failed to read nodes directory: %w", err)
	}

	nodes := make([]*models.WorkflowNode, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		body, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read node file %s: %w", entry.Name(), err)
		}

		var node models.WorkflowNode

		err = json.Unmarshal(body, &node)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal node file %s: %w", entry.Name(), err)
		}

		nodes = append(nodes, &node)
	}

	return nodes, nil
}

func (gr *GraphRepository) allTransitions(_ context.Context) ([]*models.WorkflowTransition, error) {
	dir := filepath.Join(gr.root, "transitions")

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.WorkflowTransition{}, nil
		}

		return nil, fmt.Errorf("failed to read transitions directory: %w", err)
	}

	transitions := make([]*models.WorkflowTransition, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		body, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read transition file %s: %w", entry.Name(), err)
		}

		var transition models.WorkflowTransition

		err = json.Unmarshal(body, &transition)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal transition file %s: %w", entry.Name(), err)
		}

		transitions = append(transitions, &transition)
	}

	return transitions, nil
}

// nodeReferenced walks the state store looking for any row pointing at the node.
func (gr *GraphRepository) nodeReferenced(nodeID string) (bool, error) {
	statesRoot := filepath.Join(gr.root, "states")

	sampleDirs, err := os.ReadDir(statesRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to read states directory: %w", err)
	}

	for _, sampleDir := range sampleDirs {
		if !sampleDir.IsDir() {
			continue
		}

		entries, err := os.ReadDir(filepath.Join(statesRoot, sampleDir.Name()))
		if err != nil {
			return false, fmt.Errorf("failed to read sample states directory %s: %w", sampleDir.Name(), err)
		}

		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
				continue
			}

			body, err := os.ReadFile(filepath.Join(statesRoot, sampleDir.Name(), entry.Name()))
			if err != nil {
				return false, fmt.Errorf("failed to read state file %s: %w", entry.Name(), err)
			}

			var state models.SampleWorkflowState

			err = json.Unmarshal(body, &state)
			if err != nil {
				return false, fmt.Errorf("failed to unmarshal state file %s: %w", entry.Name(), err)
			}

			if state.NodeID == nodeID {
				return true, nil
			}
		}
	}

	return false, nil
}
