package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodreg/sampletrail/pkg/models"
	"github.com/foodreg/sampletrail/pkg/persistence"
	"github.com/foodreg/sampletrail/pkg/persistence/file"
	"github.com/foodreg/sampletrail/pkg/workflow"
)

// seedGraph loads the canonical food-sample lifecycle: four main-path nodes
// ending in a decision, with safe and unsafe branch targets.
func seedGraph(ctx context.Context, t *testing.T, graph *Graph) map[string]*models.WorkflowNode {
	t.Helper()

	byName := make(map[string]*models.WorkflowNode)

	definitions := []*models.WorkflowNode{
		{Name: "Sample Lifted", Position: 1, NodeType: models.NodeTypeAction},
		{Name: "Sample Dispatched", Position: 2, NodeType: models.NodeTypeAction},
		{Name: "Report Received", Position: 3, NodeType: models.NodeTypeAction},
		{Name: "Lab Result", Position: 4, NodeType: models.NodeTypeDecision},
		{Name: "Case Closed", Position: 5, NodeType: models.NodeTypeEnd},
		{Name: "Prosecution Initiated", Position: 6, NodeType: models.NodeTypeEnd},
	}

	for _, definition := range definitions {
		node, err := graph.SaveNode(ctx, definition)
		require.NoError(t, err)

		byName[node.Name] = node
	}

	_, err := graph.SaveTransition(ctx, &models.WorkflowTransition{
		FromNodeID:     byName["Lab Result"].ID,
		ToNodeID:       byName["Case Closed"].ID,
		ConditionType:  models.ConditionLabResult,
		ConditionValue: "safe",
		Label:          "Safe",
		DisplayOrder:   1,
	})
	require.NoError(t, err)

	_, err = graph.SaveTransition(ctx, &models.WorkflowTransition{
		FromNodeID:     byName["Lab Result"].ID,
		ToNodeID:       byName["Prosecution Initiated"].ID,
		ConditionType:  models.ConditionLabResult,
		ConditionValue: "unsafe",
		Label:          "Unsafe",
		DisplayOrder:   2,
	})
	require.NoError(t, err)

	return byName
}

func setupTracker(t *testing.T) (*Tracker, *Graph, persistence.Persistence, map[string]*models.WorkflowNode) {
	t.Helper()

	fp := file.NewPersistence(t.TempDir())
	graph := NewGraph(fp, nil, serviceTestLogger())
	nodes := seedGraph(t.Context(), t, graph)

	return NewTracker(fp, workflow.NameHeuristic{}), graph, fp, nodes
}

func TestTracker_Report_EmptySampleID(t *testing.T) {
	tracker, _, _, _ := setupTracker(t)

	_, err := tracker.Report(t.Context(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptySampleID)
}

func TestTracker_Report_NothingRecorded(t *testing.T) {
	tracker, _, _, _ := setupTracker(t)

	report, err := tracker.Report(t.Context(), "FS-2024-001")
	require.NoError(t, err)

	assert.Nil(t, report.Sample)
	assert.Len(t, report.Timeline, 4)
	assert.Equal(t, 0, report.CurrentIndex)
	assert.Empty(t, report.CompletedPositions)
	assert.True(t, report.Timeline[0].Current)
	assert.False(t, report.AwaitingResult)
	assert.Empty(t, report.Branches)
}

func TestTracker_Report_Progression(t *testing.T) {
	tracker, _, fp, nodes := setupTracker(t)
	ctx := t.Context()

	_, err := fp.States().SaveState(ctx, "FS-2024-001", nodes["Sample Lifted"].ID, map[string]any{"place": "market"})
	require.NoError(t, err)

	_, err = fp.States().SaveState(ctx, "FS-2024-001", nodes["Sample Dispatched"].ID, map[string]any{"lab": "central"})
	require.NoError(t, err)

	report, err := tracker.Report(ctx, "FS-2024-001")
	require.NoError(t, err)

	assert.Equal(t, 2, report.CurrentIndex)
	assert.Equal(t, []int{0, 1}, report.CompletedPositions)
	assert.True(t, report.Timeline[0].Completed)
	assert.True(t, report.Timeline[1].Completed)
	assert.False(t, report.Timeline[2].Completed)
	assert.True(t, report.Timeline[2].Current)
	assert.True(t, report.Timeline[0].Editability.Editable)
	assert.NotNil(t, report.Timeline[0].State)
	assert.Nil(t, report.Timeline[2].State)
}

func TestTracker_Report_UnsafeBranch(t *testing.T) {
	tracker, _, fp, nodes := setupTracker(t)
	ctx := t.Context()

	_, err := fp.States().SaveState(ctx, "FS-2024-002", nodes["Lab Result"].ID, map[string]any{
		"labResult": "unsafe",
	})
	require.NoError(t, err)

	report, err := tracker.Report(ctx, "FS-2024-002")
	require.NoError(t, err)

	require.NotNil(t, report.Decision)
	assert.Equal(t, "Lab Result", report.Decision.Name)
	assert.Equal(t, "unsafe", report.Outcome)
	require.Len(t, report.Branches, 1)
	assert.Equal(t, "Prosecution Initiated", report.Branches[0].Name)
	assert.False(t, report.ConfigurationGap)
}

func TestTracker_Report_AwaitingResult(t *testing.T) {
	tracker, _, fp, _ := setupTracker(t)
	ctx := t.Context()

	reportDate := time.Date(2024, 1, 18, 0, 0, 0, 0, time.UTC)
	require.NoError(t, fp.Samples().SaveSample(ctx, &models.Sample{
		ID:            "FS-2024-003",
		LabReportDate: &reportDate,
	}))

	report, err := tracker.Report(ctx, "FS-2024-003")
	require.NoError(t, err)

	assert.True(t, report.AwaitingResult)
	assert.Empty(t, report.Branches)
	assert.NotNil(t, report.Sample)
}

func TestTracker_Report_LegacyDatesComplete(t *testing.T) {
	tracker, _, fp, _ := setupTracker(t)
	ctx := t.Context()

	lifted := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, fp.Samples().SaveSample(ctx, &models.Sample{
		ID:         "FS-2024-004",
		LiftedDate: &lifted,
	}))

	report, err := tracker.Report(ctx, "FS-2024-004")
	require.NoError(t, err)

	assert.Equal(t, 1, report.CurrentIndex)
	assert.Equal(t, []int{0}, report.CompletedPositions)
	assert.True(t, report.Timeline[0].Completed)
	assert.Nil(t, report.Timeline[0].State)
}

func TestTracker_Report_KillSwitchLocksTimeline(t *testing.T) {
	tracker, graph, fp, nodes := setupTracker(t)
	ctx := t.Context()

	_, err := graph.SaveSettings(ctx, models.WorkflowSettings{NodeEditHours: 48, AllowNodeEdit: false})
	require.NoError(t, err)

	_, err = fp.States().SaveState(ctx, "FS-2024-005", nodes["Sample Lifted"].ID, map[string]any{"place": "market"})
	require.NoError(t, err)

	report, err := tracker.Report(ctx, "FS-2024-005")
	require.NoError(t, err)

	for _, progress := range report.Timeline {
		assert.False(t, progress.Editability.Editable)
		assert.Equal(t, workflow.ReasonEditingDisabled, progress.Editability.Reason)
	}
}
