// Package web provides HTTP handlers and REST API endpoints for sample workflow management.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/foodreg/sampletrail/pkg/audit"
	"github.com/foodreg/sampletrail/pkg/models"
	"github.com/foodreg/sampletrail/pkg/persistence"
	"github.com/foodreg/sampletrail/pkg/services"
	"github.com/foodreg/sampletrail/pkg/session"
)

// sessionTokenHeader carries the officer session token used for audit attribution.
const sessionTokenHeader = "X-Session-Token"

const (
	anonymousActor    = "anonymous"
	defaultAuditLimit = 50
)

type APIHandlers struct {
	graphService      *services.Graph
	trackerService    *services.Tracker
	submissionService *services.Submission
	validator         *validator.Validate
	sessions          session.Store
	trail             audit.Trail
}

func NewAPIHandlers(
	graphService *services.Graph,
	trackerService *services.Tracker,
	submissionService *services.Submission,
	validator *validator.Validate,
	sessions session.Store,
	trail audit.Trail,
) *APIHandlers {
	return &APIHandlers{
		graphService:      graphService,
		trackerService:    trackerService,
		submissionService: submissionService,
		validator:         validator,
		sessions:          sessions,
		trail:             trail,
	}
}

// actor resolves the request's session token to an officer name. Requests
// without a resolvable session are attributed to "anonymous"; the token
// grants no authorization.
func (h *APIHandlers) actor(c fiber.Ctx) string {
	if h.sessions == nil {
		return anonymousActor
	}

	token := c.Get(sessionTokenHeader)
	if token == "" {
		return anonymousActor
	}

	sess, err := h.sessions.Get(c.Context(), token)
	if err != nil {
		return anonymousActor
	}

	return sess.Officer
}

// recordAudit appends a trail entry for a mutating operation. The trail is
// best-effort: a write failure never fails the request.
func (h *APIHandlers) recordAudit(c fiber.Ctx, action, sampleID, entityID, detail string) {
	if h.trail == nil {
		return
	}

	_ = h.trail.Record(c.Context(), audit.Entry{
		Actor:    h.actor(c),
		Action:   action,
		SampleID: sampleID,
		EntityID: entityID,
		Detail:   detail,
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.graphService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Sampletrail API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Sampletrail API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetGraph(c fiber.Ctx) error {
	graph, err := h.graphService.ActiveGraph(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(graph)
}

func (h *APIHandlers) CreateNode(c fiber.Ctx) error {
	var req CreateNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	node := &models.WorkflowNode{
		Name:            req.Name,
		Description:     req.Description,
		Position:        req.Position,
		NodeType:        models.NodeType(req.NodeType),
		Icon:            req.Icon,
		Color:           req.Color,
		InputFields:     req.InputFields,
		TemplateIDs:     req.TemplateIDs,
		IsStartNode:     req.IsStartNode,
		IsEndNode:       req.IsEndNode,
		EditFreezeHours: req.EditFreezeHours,
	}

	created, err := h.graphService.SaveNode(c.Context(), node)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.recordAudit(c, "node.created", "", created.ID, created.Name)

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateNode(c fiber.Ctx) error {
	id := c.Params("nodeId")
	if id == "" {
		return badRequest(c, "Node ID is required")
	}

	var req UpdateNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	// Get existing node and merge changes
	existing, err := h.graphService.NodeByID(c.Context(), id)
	if err != nil {
		if persistence.IsNodeNotFound(err) {
			return notFound(c, "Workflow node not found")
		}

		return internalError(c, err)
	}

	// Apply partial updates (the node type is fixed at creation)
	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.Description != nil {
		existing.Description = *req.Description
	}

	if req.Position != nil {
		existing.Position = *req.Position
	}

	if req.Icon != nil {
		existing.Icon = *req.Icon
	}

	if req.Color != nil {
		existing.Color = *req.Color
	}

	if req.InputFields != nil {
		existing.InputFields = req.InputFields
	}

	if req.TemplateIDs != nil {
		existing.TemplateIDs = req.TemplateIDs
	}

	if req.IsStartNode != nil {
		existing.IsStartNode = *req.IsStartNode
	}

	if req.IsEndNode != nil {
		existing.IsEndNode = *req.IsEndNode
	}

	if req.EditFreezeHours != nil {
		existing.EditFreezeHours = req.EditFreezeHours
	}

	if req.Status != nil {
		existing.Status = models.NodeStatus(*req.Status)
	}

	updated, err := h.graphService.SaveNode(c.Context(), existing)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.recordAudit(c, "node.updated", "", updated.ID, updated.Name)

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteNode(c fiber.Ctx) error {
	id := c.Params("nodeId")
	if id == "" {
		return badRequest(c, "Node ID is required")
	}

	if err := h.graphService.DeleteNode(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	h.recordAudit(c, "node.deleted", "", id, "")

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) CreateTransition(c fiber.Ctx) error {
	var req CreateTransitionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	transition := &models.WorkflowTransition{
		FromNodeID:        req.FromNodeID,
		ToNodeID:          req.ToNodeID,
		ConditionType:     models.ConditionType(req.ConditionType),
		ConditionField:    req.ConditionField,
		ConditionOperator: models.ConditionOperator(req.ConditionOperator),
		ConditionValue:    req.ConditionValue,
		Label:             req.Label,
		DisplayOrder:      req.DisplayOrder,
	}

	created, err := h.graphService.SaveTransition(c.Context(), transition)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.recordAudit(c, "transition.created", "", created.ID, created.Label)

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateTransition(c fiber.Ctx) error {
	id := c.Params("transitionId")
	if id == "" {
		return badRequest(c, "Transition ID is required")
	}

	var req UpdateTransitionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	// Get existing transition and merge changes
	existing, err := h.graphService.TransitionByID(c.Context(), id)
	if err != nil {
		if persistence.IsTransitionNotFound(err) {
			return notFound(c, "Workflow transition not found")
		}

		return internalError(c, err)
	}

	// Apply partial updates (the endpoints are fixed at creation)
	if req.ConditionType != nil {
		existing.ConditionType = models.ConditionType(*req.ConditionType)
	}

	if req.ConditionField != nil {
		existing.ConditionField = *req.ConditionField
	}

	if req.ConditionOperator != nil {
		existing.ConditionOperator = models.ConditionOperator(*req.ConditionOperator)
	}

	if req.ConditionValue != nil {
		existing.ConditionValue = *req.ConditionValue
	}

	if req.Label != nil {
		existing.Label = *req.Label
	}

	if req.DisplayOrder != nil {
		existing.DisplayOrder = *req.DisplayOrder
	}

	if req.Status != nil {
		existing.Status = models.TransitionStatus(*req.Status)
	}

	updated, err := h.graphService.SaveTransition(c.Context(), existing)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.recordAudit(c, "transition.updated", "", updated.ID, updated.Label)

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteTransition(c fiber.Ctx) error {
	id := c.Params("transitionId")
	if id == "" {
		return badRequest(c, "Transition ID is required")
	}

	if err := h.graphService.DeleteTransition(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	h.recordAudit(c, "transition.deleted", "", id, "")

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetSettings(c fiber.Ctx) error {
	settings, err := h.graphService.Settings(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(settings)
}

func (h *APIHandlers) UpdateSettings(c fiber.Ctx) error {
	var req UpdateSettingsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	saved, err := h.graphService.SaveSettings(c.Context(), models.WorkflowSettings{
		NodeEditHours: req.NodeEditHours,
		AllowNodeEdit: req.AllowNodeEdit,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	h.recordAudit(c, "settings.updated", "", "", strconv.Itoa(saved.NodeEditHours))

	return c.JSON(saved)
}

func (h *APIHandlers) GetSampleWorkflow(c fiber.Ctx) error {
	sampleID := c.Params("sampleId")
	if sampleID == "" {
		return badRequest(c, "Sample ID is required")
	}

	report, err := h.trackerService.Report(c.Context(), sampleID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(report)
}

func (h *APIHandlers) GetSampleStates(c fiber.Ctx) error {
	sampleID := c.Params("sampleId")
	if sampleID == "" {
		return badRequest(c, "Sample ID is required")
	}

	states, err := h.trackerService.States(c.Context(), sampleID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(states)
}

func (h *APIHandlers) SubmitState(c fiber.Ctx) error {
	sampleID := c.Params("sampleId")
	if sampleID == "" {
		return badRequest(c, "Sample ID is required")
	}

	var req SubmitStateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	state, err := h.submissionService.SubmitState(c.Context(), services.SubmitStateRequest{
		SampleID:    sampleID,
		NodeID:      req.NodeID,
		NodeData:    req.NodeData,
		SubmittedBy: h.actor(c),
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	h.recordAudit(c, "state.submitted", sampleID, req.NodeID, "")

	return c.Status(fiber.StatusCreated).JSON(state)
}

func (h *APIHandlers) GetAuditRecent(c fiber.Ctx) error {
	limit := defaultAuditLimit

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			return badRequest(c, "Invalid limit parameter")
		}

		limit = parsed
	}

	if h.trail == nil {
		return c.JSON([]audit.Entry{})
	}

	entries, err := h.trail.Recent(c.Context(), limit)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(entries)
}
