package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/foodreg/sampletrail/pkg/eventbus"
	"github.com/foodreg/sampletrail/pkg/events"
	"github.com/foodreg/sampletrail/pkg/models"
	"github.com/foodreg/sampletrail/pkg/persistence"
	"github.com/foodreg/sampletrail/pkg/persistence/file"
)

func setupSubmission(t *testing.T, bus eventbus.EventPublisher) (*Submission, *Graph, persistence.Persistence, map[string]*models.WorkflowNode) {
	t.Helper()

	fp := file.NewPersistence(t.TempDir())
	graph := NewGraph(fp, nil, serviceTestLogger())
	nodes := seedGraph(t.Context(), t, graph)

	return NewSubmission(fp, bus, serviceTestLogger()), graph, fp, nodes
}

func TestSubmission_SubmitState(t *testing.T) {
	submission, _, _, nodes := setupSubmission(t, nil)
	ctx := t.Context()

	state, err := submission.SubmitState(ctx, SubmitStateRequest{
		SampleID: "FS-2024-001",
		NodeID:   nodes["Sample Lifted"].ID,
		NodeData: map[string]any{"place": "market", "liftedDate": "15-01-2024"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, state.ID)
	assert.Equal(t, "FS-2024-001", state.SampleID)
	assert.Equal(t, models.StateStatusCompleted, state.Status)
	require.NotNil(t, state.CompletedAt)
	assert.Equal(t, "market", state.NodeData["place"])
}

func TestSubmission_SubmitState_ValidationFailures(t *testing.T) {
	submission, _, _, nodes := setupSubmission(t, nil)
	ctx := t.Context()

	_, err := submission.SubmitState(ctx, SubmitStateRequest{NodeID: nodes["Sample Lifted"].ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptySampleID)

	_, err = submission.SubmitState(ctx, SubmitStateRequest{SampleID: "FS-2024-001"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestSubmission_SubmitState_UnknownNode(t *testing.T) {
	submission, _, _, _ := setupSubmission(t, nil)

	_, err := submission.SubmitState(t.Context(), SubmitStateRequest{
		SampleID: "FS-2024-001",
		NodeID:   "missing-node",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestSubmission_SubmitState_ResubmitUpdatesInPlace(t *testing.T) {
	submission, _, _, nodes := setupSubmission(t, nil)
	ctx := t.Context()

	first, err := submission.SubmitState(ctx, SubmitStateRequest{
		SampleID: "FS-2024-001",
		NodeID:   nodes["Sample Lifted"].ID,
		NodeData: map[string]any{"place": "market"},
	})
	require.NoError(t, err)

	second, err := submission.SubmitState(ctx, SubmitStateRequest{
		SampleID: "FS-2024-001",
		NodeID:   nodes["Sample Lifted"].ID,
		NodeData: map[string]any{"place": "warehouse"},
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.EnteredAt.Equal(second.EnteredAt))
	assert.Equal(t, "warehouse", second.NodeData["place"])
}

func TestSubmission_SubmitState_LockedRejectsBeforeWrite(t *testing.T) {
	submission, graph, fp, nodes := setupSubmission(t, nil)
	ctx := t.Context()

	permanent := models.FreezeWindowPermanent
	frozen := nodes["Sample Dispatched"]
	frozen.EditFreezeHours = &permanent

	_, err := graph.SaveNode(ctx, frozen)
	require.NoError(t, err)

	_, err = submission.SubmitState(ctx, SubmitStateRequest{
		SampleID: "FS-2024-001",
		NodeID:   frozen.ID,
		NodeData: map[string]any{"lab": "central"},
	})
	require.NoError(t, err, "first submission is always allowed")

	_, err = submission.SubmitState(ctx, SubmitStateRequest{
		SampleID: "FS-2024-001",
		NodeID:   frozen.ID,
		NodeData: map[string]any{"lab": "tampered"},
	})
	require.Error(t, err)
	assert.True(t, IsLockedError(err))

	state, err := fp.States().StateBySampleAndNode(ctx, "FS-2024-001", frozen.ID)
	require.NoError(t, err)
	assert.Equal(t, "central", state.NodeData["lab"], "locked submission must not overwrite data")
}

func TestSubmission_SubmitState_KillSwitchLocks(t *testing.T) {
	submission, graph, _, nodes := setupSubmission(t, nil)
	ctx := t.Context()

	_, err := graph.SaveSettings(ctx, models.WorkflowSettings{NodeEditHours: 48, AllowNodeEdit: false})
	require.NoError(t, err)

	_, err = submission.SubmitState(ctx, SubmitStateRequest{
		SampleID: "FS-2024-001",
		NodeID:   nodes["Sample Lifted"].ID,
		NodeData: map[string]any{"place": "market"},
	})
	require.Error(t, err)
	assert.True(t, IsLockedError(err))
}

func TestSubmission_SubmitState_MirrorsDecisionData(t *testing.T) {
	submission, _, fp, nodes := setupSubmission(t, nil)
	ctx := t.Context()

	require.NoError(t, fp.Samples().SaveSample(ctx, &models.Sample{ID: "FS-2024-002"}))

	_, err := submission.SubmitState(ctx, SubmitStateRequest{
		SampleID: "FS-2024-002",
		NodeID:   nodes["Lab Result"].ID,
		NodeData: map[string]any{"labResult": "unsafe", "labReportDate": "20-01-2024"},
	})
	require.NoError(t, err)

	sample, err := fp.Samples().SampleByID(ctx, "FS-2024-002")
	require.NoError(t, err)
	assert.Equal(t, "unsafe", sample.LabResult)
	require.NotNil(t, sample.LabReportDate)
	assert.Equal(t, time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), sample.LabReportDate.UTC())
}

func TestSubmission_SubmitState_SyncFailureDoesNotFailSubmission(t *testing.T) {
	bus := new(MockEventPublisher)
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	submission, _, _, nodes := setupSubmission(t, bus)
	ctx := t.Context()

	// No sample record exists, so the mirror write fails server-side.
	state, err := submission.SubmitState(ctx, SubmitStateRequest{
		SampleID: "FS-2024-404",
		NodeID:   nodes["Lab Result"].ID,
		NodeData: map[string]any{"labResult": "safe"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StateStatusCompleted, state.Status)

	bus.AssertCalled(t, "Publish", mock.Anything, "FS-2024-404", mock.MatchedBy(func(event eventbus.Event) bool {
		_, ok := event.(events.SampleSyncFailed)

		return ok
	}))
}

func TestSubmission_SubmitState_PublishesEvents(t *testing.T) {
	bus := new(MockEventPublisher)
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	submission, _, fp, nodes := setupSubmission(t, bus)
	ctx := t.Context()

	require.NoError(t, fp.Samples().SaveSample(ctx, &models.Sample{ID: "FS-2024-003"}))

	_, err := submission.SubmitState(ctx, SubmitStateRequest{
		SampleID:    "FS-2024-003",
		NodeID:      nodes["Lab Result"].ID,
		NodeData:    map[string]any{"labResult": "safe"},
		SubmittedBy: "officer-jain",
	})
	require.NoError(t, err)

	bus.AssertCalled(t, "Publish", mock.Anything, "FS-2024-003", mock.MatchedBy(func(event eventbus.Event) bool {
		saved, ok := event.(events.SampleStateSaved)

		return ok && saved.SubmittedBy == "officer-jain"
	}))
	bus.AssertCalled(t, "Publish", mock.Anything, "FS-2024-003", mock.MatchedBy(func(event eventbus.Event) bool {
		synced, ok := event.(events.SampleFieldsSynced)

		return ok && synced.LabResult == "safe"
	}))
}
