package workflow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/foodreg/sampletrail/pkg/models"
	"github.com/foodreg/sampletrail/pkg/workflow"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func testNode(id, name string, position int, nodeType models.NodeType) *models.WorkflowNode {
	return &models.WorkflowNode{
		ID:       id,
		Name:     name,
		Position: position,
		NodeType: nodeType,
		Status:   models.NodeStatusActive,
	}
}

func completedState(sampleID, nodeID string) *models.SampleWorkflowState {
	now := time.Now().UTC()

	return &models.SampleWorkflowState{
		ID:          "state-" + nodeID,
		SampleID:    sampleID,
		NodeID:      nodeID,
		NodeData:    map[string]any{},
		EnteredAt:   now,
		CompletedAt: &now,
		Status:      models.StateStatusCompleted,
	}
}

// mainPathNodes is the canonical primary timeline used across these tests:
// three action steps and a decision, all non-end.
func mainPathNodes() []*models.WorkflowNode {
	return []*models.WorkflowNode{
		testNode("n-lifted", "Sample Lifted", 1, models.NodeTypeAction),
		testNode("n-dispatched", "Sample Dispatched", 2, models.NodeTypeAction),
		testNode("n-report", "Report Received", 3, models.NodeTypeAction),
		testNode("n-decision", "Lab Result", 4, models.NodeTypeDecision),
	}
}

func TestMainPath(t *testing.T) {
	nodes := append(mainPathNodes(),
		testNode("n-closed", "Case Closed", 5, models.NodeTypeEnd),
		testNode("n-prosecution", "Prosecution Initiated", 6, models.NodeTypeEnd),
	)

	tests := []struct {
		name    string
		nodes   []*models.WorkflowNode
		limit   int
		wantIDs []string
	}{
		{
			name:    "end nodes are excluded",
			nodes:   nodes,
			limit:   workflow.DefaultMainPathLimit,
			wantIDs: []string{"n-lifted", "n-dispatched", "n-report", "n-decision"},
		},
		{
			name:    "limit clamps the path",
			nodes:   nodes,
			limit:   2,
			wantIDs: []string{"n-lifted", "n-dispatched"},
		},
		{
			name:    "zero limit means unbounded",
			nodes:   nodes,
			limit:   0,
			wantIDs: []string{"n-lifted", "n-dispatched", "n-report", "n-decision"},
		},
		{
			name:    "empty graph",
			nodes:   nil,
			limit:   workflow.DefaultMainPathLimit,
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := workflow.MainPath(tt.nodes, tt.limit)

			ids := make([]string, 0, len(path))
			for _, node := range path {
				ids = append(ids, node.ID)
			}

			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestPositionResolver_Resolve(t *testing.T) {
	path := mainPathNodes()

	tests := []struct {
		name          string
		sample        *models.Sample
		states        []*models.SampleWorkflowState
		wantIndex     int
		wantCompleted map[int]bool
	}{
		{
			name:          "nothing recorded",
			sample:        &models.Sample{ID: "FS-2024-001"},
			wantIndex:     0,
			wantCompleted: map[int]bool{},
		},
		{
			name:   "leading run of explicit states",
			sample: &models.Sample{ID: "FS-2024-001"},
			states: []*models.SampleWorkflowState{
				completedState("FS-2024-001", "n-lifted"),
				completedState("FS-2024-001", "n-dispatched"),
			},
			wantIndex:     2,
			wantCompleted: map[int]bool{0: true, 1: true},
		},
		{
			name:   "out-of-order completion does not advance the pointer",
			sample: &models.Sample{ID: "FS-2024-001"},
			states: []*models.SampleWorkflowState{
				completedState("FS-2024-001", "n-report"),
			},
			wantIndex:     0,
			wantCompleted: map[int]bool{2: true},
		},
		{
			name:   "gap holds the pointer at the first incomplete node",
			sample: &models.Sample{ID: "FS-2024-001"},
			states: []*models.SampleWorkflowState{
				completedState("FS-2024-001", "n-lifted"),
				completedState("FS-2024-001", "n-report"),
			},
			wantIndex:     1,
			wantCompleted: map[int]bool{0: true, 2: true},
		},
		{
			name:   "fully completed path clamps to the last index",
			sample: &models.Sample{ID: "FS-2024-001"},
			states: []*models.SampleWorkflowState{
				completedState("FS-2024-001", "n-lifted"),
				completedState("FS-2024-001", "n-dispatched"),
				completedState("FS-2024-001", "n-report"),
				completedState("FS-2024-001", "n-decision"),
			},
			wantIndex:     3,
			wantCompleted: map[int]bool{0: true, 1: true, 2: true, 3: true},
		},
		{
			name: "legacy lifted date completes the lifted node",
			sample: &models.Sample{
				ID:         "FS-2024-001",
				LiftedDate: timePtr(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
			},
			wantIndex:     1,
			wantCompleted: map[int]bool{0: true},
		},
		{
			name: "legacy report date completes report and decision nodes",
			sample: &models.Sample{
				ID:            "FS-2024-001",
				LiftedDate:    timePtr(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
				DispatchDate:  timePtr(time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)),
				LabReportDate: timePtr(time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)),
			},
			wantIndex:     3,
			wantCompleted: map[int]bool{0: true, 1: true, 2: true, 3: true},
		},
		{
			name:   "active state row does not count as completed",
			sample: &models.Sample{ID: "FS-2024-001"},
			states: []*models.SampleWorkflowState{
				{
					ID:        "state-n-lifted",
					SampleID:  "FS-2024-001",
					NodeID:    "n-lifted",
					EnteredAt: time.Now().UTC(),
					Status:    models.StateStatusActive,
				},
			},
			wantIndex:     0,
			wantCompleted: map[int]bool{},
		},
		{
			name:   "explicit state and legacy inference combine",
			sample: &models.Sample{ID: "FS-2024-001", LiftedDate: timePtr(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))},
			states: []*models.SampleWorkflowState{
				completedState("FS-2024-001", "n-dispatched"),
			},
			wantIndex:     2,
			wantCompleted: map[int]bool{0: true, 1: true},
		},
	}

	resolver := workflow.NewPositionResolver(workflow.NameHeuristic{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			progress := resolver.Resolve(path, tt.sample, tt.states)

			assert.Equal(t, tt.wantIndex, progress.CurrentIndex)
			assert.Equal(t, tt.wantCompleted, progress.Completed)
		})
	}
}

func TestPositionResolver_Resolve_PrimaryTimeline(t *testing.T) {
	// Lifted done, dispatch pending: the pointer sits on the dispatch step.
	path := []*models.WorkflowNode{
		testNode("n-lifted", "Sample Lifted", 0, models.NodeTypeAction),
		testNode("n-dispatched", "Sample Dispatched", 1, models.NodeTypeAction),
		testNode("n-decision", "Lab Result", 2, models.NodeTypeDecision),
	}

	sample := &models.Sample{
		ID:         "FS-2024-001",
		LiftedDate: timePtr(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
	}

	resolver := workflow.NewPositionResolver(workflow.NameHeuristic{})
	progress := resolver.Resolve(path, sample, nil)

	assert.Equal(t, 1, progress.CurrentIndex)
	assert.Equal(t, map[int]bool{0: true}, progress.Completed)
}

func TestPositionResolver_Resolve_EmptyPath(t *testing.T) {
	resolver := workflow.NewPositionResolver(workflow.NameHeuristic{})
	progress := resolver.Resolve(nil, &models.Sample{ID: "FS-2024-001"}, nil)

	assert.Equal(t, 0, progress.CurrentIndex)
	assert.Empty(t, progress.Completed)
}

func TestPositionResolver_Resolve_DisabledLegacy(t *testing.T) {
	path := mainPathNodes()

	sample := &models.Sample{
		ID:            "FS-2024-001",
		LiftedDate:    timePtr(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
		DispatchDate:  timePtr(time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)),
		LabReportDate: timePtr(time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)),
	}

	resolver := workflow.NewPositionResolver(workflow.Disabled{})
	progress := resolver.Resolve(path, sample, nil)

	// Legacy dates alone no longer imply completion
	assert.Equal(t, 0, progress.CurrentIndex)
	assert.Empty(t, progress.Completed)
}

func TestPositionResolver_Resolve_PointerBounds(t *testing.T) {
	path := mainPathNodes()
	resolver := workflow.NewPositionResolver(workflow.Disabled{})

	// Every subset of explicitly completed nodes keeps the pointer within
	// its bounds: at most one past the completed count, and never behind
	// the leading completed run.
	for mask := range 16 {
		var states []*models.SampleWorkflowState

		leading := 0
		counting := true

		for i, node := range path {
			if mask&(1<<i) == 0 {
				counting = false

				continue
			}

			states = append(states, completedState("FS-2024-001", node.ID))

			if counting {
				leading++
			}
		}

		progress := resolver.Resolve(path, &models.Sample{ID: "FS-2024-001"}, states)

		assert.LessOrEqual(t, progress.CurrentIndex, len(progress.Completed)+1, "mask %04b", mask)
		assert.GreaterOrEqual(t, progress.CurrentIndex, min(leading, len(path)-1), "mask %04b", mask)
	}
}
