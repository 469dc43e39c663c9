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

// GraphRepository handles workflow node and transition database operations.
type GraphRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewGraphRepository creates a new graph repository.
func NewGraphRepository(db *sql.DB, logger *slog.Logger) *GraphRepository {
	return &GraphRepository{db: db, logger: logger}
}

const nodeColumns = `
	id
  , name
  , description
  , position
  , node_type
  , icon
  , color
  , input_fields
  , template_ids
  , is_start_node
  , is_end_node
  , edit_freeze_hours
  , status
  , created_at
  , updated_at
`

// ActiveNodes returns all active nodes ordered by position. The ordering
// feeds straight into timeline rendering and must stay ascending.
func (r *GraphRepository) ActiveNodes(ctx context.Context) ([]*models.WorkflowNode, error) {
	query := `
		SELECT ` + nodeColumns + `
		FROM workflow_nodes
		WHERE status = $1
		ORDER BY position ASC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, models.NodeStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active nodes: %w", err)
	}

	defer func(ctx context.Context, r *GraphRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	nodes := make([]*models.WorkflowNode, 0)

	for rows.Next() {
		node, err := r.scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}

		nodes = append(nodes, node)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}

	return nodes, nil
}

// NodeByID returns a node by its ID.
func (r *GraphRepository) NodeByID(ctx context.Context, id string) (*models.WorkflowNode, error) {
	query := `
		SELECT ` + nodeColumns + `
		FROM workflow_nodes
		WHERE id = $1
	`

	node, err := r.scanNode(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewNodeError("NodeByID", id, persistence.ErrNodeNotFound)
		}

		return nil, fmt.Errorf("failed to scan node: %w", err)
	}

	return node, nil
}

// SaveNode inserts or updates a node by its ID.
func (r *GraphRepository) SaveNode(ctx context.Context, node *models.WorkflowNode) error {
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

	inputFieldsJSON, err := json.Marshal(node.InputFields)
	if err != nil {
		return fmt.Errorf("failed to marshal input fields: %w", err)
	}

	templateIDsJSON, err := json.Marshal(node.TemplateIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal template IDs: %w", err)
	}

	query := `
		INSERT INTO workflow_nodes (id, name, description, position, node_type,
icon, color, input_fields, template_ids, is_start_node, is_end_node,
edit_freeze_hours, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			position = EXCLUDED.position,
			node_type = EXCLUDED.node_type,
			icon = EXCLUDED.icon,
			color = EXCLUDED.color,
			input_fields = EXCLUDED.input_fields,
			template_ids = EXCLUDED.template_ids,
			is_start_node = EXCLUDED.is_start_node,
			is_end_node = EXCLUDED.is_end_node,
			edit_freeze_hours = EXCLUDED.edit_freeze_hours,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		node.ID,
		node.Name,
		node.Description,
		node.Position,
		node.NodeType,
		node.Icon,
		node.Color,
		inputFieldsJSON,
		templateIDsJSON,
		node.IsStartNode,
		node.IsEndNode,
		node.EditFreezeHours,
		node.Status,
		node.CreatedAt,
		node.UpdatedAt,
	)
	if err != nil {
		return persistence.NewNodeError("SaveNode", node.ID, err)
	}

	return nil
}

// DeleteNode removes a node and every transition referencing it in a single
// transaction. Nodes still referenced by sample history are protected.
func (r *GraphRepository) DeleteNode(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var referenced bool

	err = tx.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM sample_workflow_states WHERE node_id = $1)", id,
	).Scan(&referenced)
	if err != nil {
		return fmt.Errorf("failed to check node references: %w", err)
	}

	if referenced {
		err = persistence.NewNodeError("DeleteNode", id, persistence.ErrNodeReferenced)

		return err
	}

	_, err = tx.ExecContext(ctx,
		"DELETE FROM workflow_transitions WHERE from_node_id = $1 OR to_node_id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete node transitions: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM workflow_nodes WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		err = persistence.NewNodeError("DeleteNode", id, persistence.ErrNodeNotFound)

		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

const transitionColumns = `
	id
  , from_node_id
  , to_node_id
  , condition_type
  , condition_field
  , condition_operator
  , condition_value
  , label
  , display_order
  , status
  , created_at
`

// ActiveTransitions returns all active transitions ordered by display_order.
// Branch resolution breaks ties through this ordering.
func (r *GraphRepository) ActiveTransitions(ctx context.Context) ([]*models.WorkflowTransition, error) {
	query := `
		SELECT ` + transitionColumns + `
		FROM workflow_transitions
		WHERE status = $1
		ORDER BY display_order ASC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, models.TransitionStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active transitions: %w", err)
	}

	defer func(ctx context.Context, r *GraphRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	transitions := make([]*models.WorkflowTransition, 0)

	for rows.Next() {
		transition, err := r.scanTransition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}

		transitions = append(transitions, transition)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating transitions: %w", err)
	}

	return transitions, nil
}

// TransitionByID returns a transition by its ID.
func (r *GraphRepository) TransitionByID(ctx context.Context, id string) (*models.WorkflowTransition, error) {
	query := `
		SELECT ` + transitionColumns + `
		FROM workflow_transitions
		WHERE id = $1
	`

	transition, err := r.scanTransition(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewTransitionError("TransitionByID", id, persistence.ErrTransitionNotFound)
		}

		return nil, fmt.Errorf("failed to scan transition: %w", err)
	}

	return transition, nil
}

// SaveTransition inserts or updates a transition by its ID.
func (r *GraphRepository) SaveTransition(ctx context.Context, transition *models.WorkflowTransition) error {
	now := time.Now().UTC()

	if transition.CreatedAt.IsZero() {
		transition.CreatedAt = now
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

	query := `
		INSERT INTO workflow_transitions (id, from_node_id, to_node_id,
condition_type, condition_field, condition_operator, condition_value, label,
display_order, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			from_node_id = EXCLUDED.from_node_id,
			to_node_id = EXCLUDED.to_node_id,
			condition_type = EXCLUDED.condition_type,
			condition_field = EXCLUDED.condition_field,
			condition_operator = EXCLUDED.condition_operator,
			condition_value = EXCLUDED.condition_value,
			label = EXCLUDED.label,
			display_order = EXCLUDED.display_order,
			status = EXCLUDED.status
	`

	_, err := r.db.ExecContext(ctx, query,
		transition.ID,
		transition.FromNodeID,
		transition.ToNodeID,
		transition.ConditionType,
		transition.ConditionField,
		transition.ConditionOperator,
		transition.ConditionValue,
		transition.Label,
		transition.DisplayOrder,
		transition.Status,
		transition.CreatedAt,
	)
	if err != nil {
		return persistence.NewTransitionError("SaveTransition", transition.ID, err)
	}

	return nil
}

// DeleteTransition removes a transition by its ID.
func (r *GraphRepository) DeleteTransition(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM workflow_transitions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete transition: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.NewTransitionError("DeleteTransition", id, persistence.ErrTransitionNotFound)
	}

	return nil
}

func (r *GraphRepository) scanNode(scanner interface {
	Scan(dest ...any) error
}) (*models.WorkflowNode, error) {
	var (
		node                             models.WorkflowNode
		inputFieldsJSON, templateIDsJSON []byte
	)

	err := scanner.Scan(
		&node.ID,
		&node.Name,
		&node.Description,
		&node.Position,
		&node.NodeType,
		&node.Icon,
		&node.Color,
		&inputFieldsJSON,
		&templateIDsJSON,
		&node.IsStartNode,
		&node.IsEndNode,
		&node.EditFreezeHours,
		&node.Status,
		&node.CreatedAt,
		&node.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Unmarshal JSON fields
	if inputFieldsJSON != nil {
		err := json.Unmarshal(inputFieldsJSON, &node.InputFields)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal input fields: %w", err)
		}
	}

	if templateIDsJSON != nil {
		err := json.Unmarshal(templateIDsJSON, &node.TemplateIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal template IDs: %w", err)
		}
	}

	return &node, nil
}

func (r *GraphRepository) scanTransition(scanner interface {
	Scan(dest ...any) error
}) (*models.WorkflowTransition, error) {
	var transition models.WorkflowTransition

	err := scanner.Scan(
		&transition.ID,
		&transition.FromNodeID,
		&transition.ToNodeID,
		&transition.ConditionType,
		&transition.ConditionField,
		&transition.ConditionOperator,
		&transition.ConditionValue,
		&transition.Label,
		&transition.DisplayOrder,
		&transition.Status,
		&transition.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &transition, nil
}
