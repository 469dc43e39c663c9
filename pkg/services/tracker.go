package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/foodreg/sampletrail/pkg/models"
	"github.com/foodreg/sampletrail/pkg/persistence"
	"github.com/foodreg/sampletrail/pkg/workflow"
)

// NodeProgress is one main-path node in a sample's tracker timeline.
type NodeProgress struct {
	Node        *models.WorkflowNode        `json:"node"`
	State       *models.SampleWorkflowState `json:"state,omitempty"`
	Completed   bool                        `json:"completed"`
	Current     bool                        `json:"current"`
	Editability workflow.Decision           `json:"editability"`
}

// TrackerReport is the composite view the tracker UI renders for one sample.
type TrackerReport struct {
	SampleID           string                        `json:"sample_id"`
	Sample             *models.Sample                `json:"sample,omitempty"`
	Timeline           []NodeProgress                `json:"timeline"`
	States             []*models.SampleWorkflowState `json:"states"`
	CurrentIndex       int                           `json:"current_index"`
	CompletedPositions []int                         `json:"completed_positions"`
	Decision           *models.WorkflowNode          `json:"decision,omitempty"`
	Outcome            string                        `json:"outcome,omitempty"`
	Branches           []*models.WorkflowNode        `json:"branches"`
	AwaitingResult     bool                          `json:"awaiting_result"`
	ConfigurationGap   bool                          `json:"configuration_gap"`
}

// Tracker assembles the read-side view of a sample's workflow progress.
type Tracker struct {
	persistence persistence.Persistence
	positions   *workflow.PositionResolver
	branches    workflow.BranchResolver
	guard       workflow.EditabilityGuard
	pathLimit   int
}

// NewTracker creates a new tracker service. The legacy inference strategy
// decides how records that predate the graph are interpreted; pass
// workflow.Disabled{} for deployments without legacy data.
func NewTracker(persistence persistence.Persistence, legacy workflow.LegacyInference) *Tracker {
	return &Tracker{
		persistence: persistence,
		positions:   workflow.NewPositionResolver(legacy),
		pathLimit:   workflow.DefaultMainPathLimit,
	}
}

// Report computes the tracker view for one sample. A sample with no server
// record still reports: intake may live in another system, so a missing
// sample row degrades to graph-and-states-only resolution.
func (t *Tracker) Report(ctx context.Context, sampleID string) (*TrackerReport, error) {
	if sampleID == "" {
		return nil, NewValidationError("Report", "EMPTY_SAMPLE_ID", "sample ID cannot be empty", ErrEmptySampleID)
	}

	nodes, err := t.persistence.Graph().ActiveNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	transitions, err := t.persistence.Graph().ActiveTransitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transitions: %w", err)
	}

	states, err := t.persistence.States().StatesBySample(ctx, sampleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}

	sample, err := t.persistence.Samples().SampleByID(ctx, sampleID)
	if err != nil {
		if !persistence.IsSampleNotFound(err) {
			return nil, fmt.Errorf("failed to get sample: %w", err)
		}

		sample = nil
	}

	settings, err := t.persistence.Settings().Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	path := workflow.MainPath(nodes, t.pathLimit)
	progress := t.positions.Resolve(path, sample, states)
	resolution := t.branches.Resolve(nodes, transitions, sample, states)
	now := time.Now().UTC()

	byNode := make(map[string]*models.SampleWorkflowState)
	for _, state := range states {
		if _, ok := byNode[state.NodeID]; !ok {
			byNode[state.NodeID] = state
		}
	}

	timeline := make([]NodeProgress, 0, len(path))

	for i, node := range path {
		state := byNode[node.ID]
		timeline = append(timeline, NodeProgress{
			Node:        node,
			State:       state,
			Completed:   progress.Completed[i],
			Current:     i == progress.CurrentIndex,
			Editability: t.guard.Evaluate(node, state, settings, now),
		})
	}

	completed := make([]int, 0, len(progress.Completed))
	for i := range progress.Completed {
		completed = append(completed, i)
	}

	sort.Ints(completed)

	return &TrackerReport{
		SampleID:           sampleID,
		Sample:             sample,
		Timeline:           timeline,
		States:             states,
		CurrentIndex:       progress.CurrentIndex,
		CompletedPositions: completed,
		Decision:           resolution.Decision,
		Outcome:            resolution.Outcome,
		Branches:           resolution.Branches,
		AwaitingResult:     resolution.Awaiting,
		ConfigurationGap:   resolution.ConfigurationGap(),
	}, nil
}

// States returns the raw workflow state rows for one sample, oldest first.
func (t *Tracker) States(ctx context.Context, sampleID string) ([]*models.SampleWorkflowState, error) {
	if sampleID == "" {
		return nil, NewValidationError("States", "EMPTY_SAMPLE_ID", "sample ID cannot be empty", ErrEmptySampleID)
	}

	states, err := t.persistence.States().StatesBySample(ctx, sampleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}

	return states, nil
}
