package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/foodreg/sampletrail/pkg/eventbus"
	"github.com/foodreg/sampletrail/pkg/events"
	"github.com/foodreg/sampletrail/pkg/models"
	"github.com/foodreg/sampletrail/pkg/persistence"
	"github.com/foodreg/sampletrail/pkg/workflow"
)

// SubmitStateRequest carries one officer submission for a workflow step.
type SubmitStateRequest struct {
	SampleID    string `validate:"required,min=1"`
	NodeID      string `validate:"required,min=1"`
	NodeData    map[string]any
	SubmittedBy string
}

// Submission handles officer submissions of workflow step data.
type Submission struct {
	persistence  persistence.Persistence
	synchronizer *workflow.Synchronizer
	guard        workflow.EditabilityGuard
	eventBus     eventbus.EventPublisher
	logger       *slog.Logger
}

// NewSubmission creates a new submission service. The event bus may be nil;
// publishing is best-effort and never fails a submission.
func NewSubmission(persistence persistence.Persistence, eventBus eventbus.EventPublisher, logger *slog.Logger) *Submission {
	return &Submission{
		persistence:  persistence,
		synchronizer: workflow.NewSynchronizer(persistence.Samples(), logger),
		eventBus:     eventBus,
		logger:       logger,
	}
}

// SubmitState persists one step submission. The freeze window is consulted
// before anything is written, so a locked node rejects without partial
// writes. Mirroring decision data onto the sample record happens after the
// state is saved and never fails the submission.
func (s *Submission) SubmitState(ctx context.Context, req SubmitStateRequest) (*models.SampleWorkflowState, error) {
	if req.SampleID == "" {
		return nil, NewValidationError("SubmitState", "EMPTY_SAMPLE_ID", "sample ID cannot be empty", ErrEmptySampleID)
	}

	if req.NodeID == "" {
		return nil, NewValidationError("SubmitState", "EMPTY_NODE_ID", "node ID cannot be empty", ErrInvalidRequest)
	}

	node, err := s.persistence.Graph().NodeByID(ctx, req.NodeID)
	if err != nil {
		if persistence.IsNodeNotFound(err) {
			return nil, ErrNodeNotFound
		}

		return nil, fmt.Errorf("failed to get node: %w", err)
	}

	settings, err := s.persistence.Settings().Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	existing, err := s.persistence.States().StateBySampleAndNode(ctx, req.SampleID, req.NodeID)
	if err != nil {
		if !persistence.IsStateNotFound(err) {
			return nil, fmt.Errorf("failed to get state: %w", err)
		}

		existing = nil
	}

	decision := s.guard.Evaluate(node, existing, settings, time.Now().UTC())
	if !decision.Editable {
		return nil, NewLockedError("SubmitState", decision.Reason)
	}

	state, err := s.persistence.States().SaveState(ctx, req.SampleID, req.NodeID, req.NodeData)
	if err != nil {
		return nil, fmt.Errorf("failed to save state: %w", err)
	}

	s.publishStateSaved(ctx, req, state)

	report := s.synchronizer.Sync(ctx, node, req.SampleID, req.NodeData)
	if report.Attempted {
		s.publishSyncOutcome(ctx, req, report)
	}

	return state, nil
}

func (s *Submission) publishStateSaved(ctx context.Context, req SubmitStateRequest, state *models.SampleWorkflowState) {
	if s.eventBus == nil {
		return
	}

	event := events.SampleStateSaved{
		BaseEvent:   events.NewBaseEvent(events.SampleStateSavedEvent, req.SampleID),
		NodeID:      state.NodeID,
		NodeData:    state.NodeData,
		SubmittedBy: req.SubmittedBy,
	}

	if err := s.eventBus.Publish(ctx, req.SampleID, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish SampleStateSaved event", "error", err)
	}
}

func (s *Submission) publishSyncOutcome(ctx context.Context, req SubmitStateRequest, report workflow.SyncReport) {
	if s.eventBus == nil {
		return
	}

	var event eventbus.Event

	if report.Synced() {
		labResult, _ := models.StringValue(req.NodeData, models.NodeDataKeyLabResult)
		labReportDate, _ := models.StringValue(req.NodeData, models.NodeDataKeyLabReportDate)

		event = events.SampleFieldsSynced{
			BaseEvent:     events.NewBaseEvent(events.SampleFieldsSyncedEvent, req.SampleID),
			NodeID:        req.NodeID,
			LabResult:     labResult,
			LabReportDate: labReportDate,
		}
	} else {
		event = events.SampleSyncFailed{
			BaseEvent: events.NewBaseEvent(events.SampleSyncFailedEvent, req.SampleID),
			NodeID:    req.NodeID,
			Error:     report.Err.Error(),
		}
	}

	if err := s.eventBus.Publish(ctx, req.SampleID, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish sync outcome event", "error", err)
	}
}
