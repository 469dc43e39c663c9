// Package services provides graph administration functionality for the sample workflow.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"

	"github.com/foodreg/sampletrail/pkg/eventbus"
	"github.com/foodreg/sampletrail/pkg/events"
	"github.com/foodreg/sampletrail/pkg/models"
	"github.com/foodreg/sampletrail/pkg/persistence"
)

var (
	// ErrNodeNotFound is returned when a workflow node is not found.
	ErrNodeNotFound = persistence.ErrNodeNotFound
	// ErrTransitionNotFound is returned when a workflow transition is not found.
	ErrTransitionNotFound = persistence.ErrTransitionNotFound
	// ErrNodeReferenced is returned when deleting a node that sample history still points at.
	ErrNodeReferenced = persistence.ErrNodeReferenced
)

// inputFieldsSchema constrains the open input_fields array. Struct tags
// cannot see unknown keys or raw enum violations, so the definition is
// checked as JSON before it is persisted.
var inputFieldsSchema = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type":     "object",
		"required": []string{"name", "type", "label"},
		"properties": map[string]any{
			"name":     map[string]any{"type": "string", "minLength": 1},
			"type":     map[string]any{"type": "string", "enum": []string{"text", "date", "select", "textarea", "number", "image"}},
			"label":    map[string]any{"type": "string", "minLength": 1},
			"required": map[string]any{"type": "boolean"},
			"options":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"additionalProperties": false,
	},
}

// GraphView is the full active graph as rendered by admin and tracker UIs.
type GraphView struct {
	Nodes       []*models.WorkflowNode       `json:"nodes"`
	Transitions []*models.WorkflowTransition `json:"transitions"`
}

// Graph handles administrator operations on the workflow graph.
type Graph struct {
	persistence persistence.Persistence
	validate    *validator.Validate
	eventBus    eventbus.EventPublisher
	logger      *slog.Logger
}

// NewGraph creates a new graph administration service. The event bus may be
// nil; publishing is best-effort and never fails an operation.
func NewGraph(persistence persistence.Persistence, eventBus eventbus.EventPublisher, logger *slog.Logger) *Graph {
	return &Graph{
		persistence: persistence,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		eventBus:    eventBus,
		logger:      logger,
	}
}

// HealthCheck checks the health of the persistence layer.
func (g *Graph) HealthCheck(ctx context.Context) (string, bool) {
	if g.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := g.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ActiveGraph returns the active nodes and transitions in their render order.
func (g *Graph) ActiveGraph(ctx context.Context) (*GraphView, error) {
	nodes, err := g.persistence.Graph().ActiveNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	transitions, err := g.persistence.Graph().ActiveTransitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transitions: %w", err)
	}

	return &GraphView{Nodes: nodes, Transitions: transitions}, nil
}

// NodeByID retrieves a node definition by its ID.
func (g *Graph) NodeByID(ctx context.Context, id string) (*models.WorkflowNode, error) {
	return g.persistence.Graph().NodeByID(ctx, id)
}

// SaveNode validates and persists a node definition, creating it when the ID
// is empty.
func (g *Graph) SaveNode(ctx context.Context, node *models.WorkflowNode) (*models.WorkflowNode, error) {
	if err := g.validateNode(node); err != nil {
		return nil, err
	}

	if err := g.persistence.Graph().SaveNode(ctx, node); err != nil {
		return nil, fmt.Errorf("failed to save node: %w", err)
	}

	g.publishGraphUpdated(ctx, "node", node.ID, "saved")

	return node, nil
}

// DeleteNode removes a node and its transitions. It fails with
// ErrNodeReferenced while sample history still points at the node.
func (g *Graph) DeleteNode(ctx context.Context, id string) error {
	if err := g.persistence.Graph().DeleteNode(ctx, id); err != nil {
		return err
	}

	g.publishGraphUpdated(ctx, "node", id, "deleted")

	return nil
}

// TransitionByID retrieves a transition definition by its ID.
func (g *Graph) TransitionByID(ctx context.Context, id string) (*models.WorkflowTransition, error) {
	return g.persistence.Graph().TransitionByID(ctx, id)
}

// SaveTransition validates and persists a transition. Both endpoints must
// exist as nodes before the edge is accepted.
func (g *Graph) SaveTransition(ctx context.Context, transition *models.WorkflowTransition) (*models.WorkflowTransition, error) {
	if err := g.validateTransition(ctx, transition); err != nil {
		return nil, err
	}

	if err := g.persistence.Graph().SaveTransition(ctx, transition); err != nil {
		return nil, fmt.Errorf("failed to save transition: %w", err)
	}

	g.publishGraphUpdated(ctx, "transition", transition.ID, "saved")

	return transition, nil
}

// DeleteTransition removes a transition by its ID.
func (g *Graph) DeleteTransition(ctx context.Context, id string) error {
	if err := g.persistence.Graph().DeleteTransition(ctx, id); err != nil {
		return err
	}

	g.publishGraphUpdated(ctx, "transition", id, "deleted")

	return nil
}

// Settings returns the stored workflow settings, or the defaults when none
// have been saved.
func (g *Graph) Settings(ctx context.Context) (models.WorkflowSettings, error) {
	return g.persistence.Settings().Settings(ctx)
}

// SaveSettings validates and persists the global editability settings.
func (g *Graph) SaveSettings(ctx context.Context, settings models.WorkflowSettings) (models.WorkflowSettings, error) {
	if settings.NodeEditHours < models.FreezeWindowPermanent {
		return models.WorkflowSettings{}, NewValidationError(
			"SaveSettings",
			"INVALID_FREEZE_WINDOW",
			fmt.Sprintf("invalid freeze window %d, allowed: -1, 0, or a positive number of hours", settings.NodeEditHours),
			ErrInvalidFreezeWindow,
		)
	}

	if err := g.persistence.Settings().SaveSettings(ctx, settings); err != nil {
		return models.WorkflowSettings{}, fmt.Errorf("failed to save settings: %w", err)
	}

	if g.eventBus != nil {
		event := events.WorkflowSettingsUpdated{
			BaseEvent:     events.NewBaseEvent(events.WorkflowSettingsUpdatedEvent, ""),
			NodeEditHours: settings.NodeEditHours,
			AllowNodeEdit: settings.AllowNodeEdit,
		}

		if err := g.eventBus.Publish(ctx, "settings", event); err != nil {
			g.logger.ErrorContext(ctx, "Failed to publish WorkflowSettingsUpdated event", "error", err)
		}
	}

	return settings, nil
}

func (g *Graph) validateNode(node *models.WorkflowNode) error {
	if node == nil {
		return NewValidationError("SaveNode", "INVALID_NODE", "node cannot be nil", ErrInvalidRequest)
	}

	if err := g.validate.Struct(node); err != nil {
		return NewValidationError("SaveNode", "INVALID_NODE", err.Error(), ErrInvalidRequest)
	}

	if !node.NodeType.Valid() {
		return NewValidationError(
			"SaveNode",
			"INVALID_NODE_TYPE",
			fmt.Sprintf("invalid node type '%s', allowed: action, decision, end", node.NodeType),
			ErrInvalidNodeType,
		)
	}

	if node.EditFreezeHours != nil && *node.EditFreezeHours < models.FreezeWindowPermanent {
		return NewValidationError(
			"SaveNode",
			"INVALID_FREEZE_WINDOW",
			fmt.Sprintf("invalid freeze window %d, allowed: -1, 0, or a positive number of hours", *node.EditFreezeHours),
			ErrInvalidFreezeWindow,
		)
	}

	return g.validateInputFields(node.InputFields)
}

func (g *Graph) validateInputFields(fields []models.InputField) error {
	if len(fields) == 0 {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(inputFieldsSchema)
	dataLoader := gojsonschema.NewGoLoader(fields)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to validate input fields: %w", err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, schemaErr := range result.Errors() {
			details = append(details, schemaErr.String())
		}

		return NewValidationError(
			"SaveNode",
			"INVALID_INPUT_FIELDS",
			strings.Join(details, "; "),
			ErrInvalidInputFields,
		)
	}

	for _, field := range fields {
		if field.Type == models.FieldTypeSelect && len(field.Options) == 0 {
			return NewValidationError(
				"SaveNode",
				"INVALID_INPUT_FIELDS",
				fmt.Sprintf("select field '%s' must declare options", field.Name),
				ErrInvalidInputFields,
			)
		}
	}

	return nil
}

func (g *Graph) validateTransition(ctx context.Context, transition *models.WorkflowTransition) error {
	if transition == nil {
		return NewValidationError("SaveTransition", "INVALID_TRANSITION", "transition cannot be nil", ErrInvalidRequest)
	}

	if err := g.validate.Struct(transition); err != nil {
		return NewValidationError("SaveTransition", "INVALID_TRANSITION", err.Error(), ErrInvalidRequest)
	}

	if !transition.ConditionType.Valid() {
		return NewValidationError(
			"SaveTransition",
			"INVALID_CONDITION",
			fmt.Sprintf("invalid condition type '%s', allowed: always, lab_result, field_value", transition.ConditionType),
			ErrInvalidCondition,
		)
	}

	if transition.ConditionType != models.ConditionAlways && transition.ConditionValue == "" {
		return NewValidationError(
			"SaveTransition",
			"INVALID_CONDITION",
			fmt.Sprintf("condition type '%s' requires a condition value", transition.ConditionType),
			ErrInvalidCondition,
		)
	}

	if _, err := g.persistence.Graph().NodeByID(ctx, transition.FromNodeID); err != nil {
		if persistence.IsNodeNotFound(err) {
			return fmt.Errorf("from node %s: %w", transition.FromNodeID, ErrNodeNotFound)
		}

		return fmt.Errorf("failed to check from node: %w", err)
	}

	if _, err := g.persistence.Graph().NodeByID(ctx, transition.ToNodeID); err != nil {
		if persistence.IsNodeNotFound(err) {
			return fmt.Errorf("to node %s: %w", transition.ToNodeID, ErrNodeNotFound)
		}

		return fmt.Errorf("failed to check to node: %w", err)
	}

	return nil
}

func (g *Graph) publishGraphUpdated(ctx context.Context, entityKind, entityID, action string) {
	if g.eventBus == nil {
		return
	}

	event := events.WorkflowGraphUpdated{
		BaseEvent:  events.NewBaseEvent(events.WorkflowGraphUpdatedEvent, ""),
		EntityKind: entityKind,
		EntityID:   entityID,
		Action:     action,
	}

	if err := g.eventBus.Publish(ctx, entityID, event); err != nil {
		g.logger.ErrorContext(ctx, "Failed to publish WorkflowGraphUpdated event", "error", err)
	}
}
