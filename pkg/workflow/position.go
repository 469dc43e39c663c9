// Package workflow implements the sample lifecycle engine: position
// resolution along the main path, lab-result branch resolution, editability
// decisions, and the legacy-field synchronizer.
package workflow

import (
	"github.com/foodreg/sampletrail/pkg/models"
)

// DefaultMainPathLimit bounds the primary timeline to the canonical
// lifted/dispatched/report/decision run. End nodes and overflow nodes are
// rendered as branch outcomes instead.
const DefaultMainPathLimit = 4

// Progress is a sample's computed position on the main path.
type Progress struct {
	// CurrentIndex points just past the latest sequentially completed node,
	// clamped to the last valid index of the path.
	CurrentIndex int
	// Completed records every completed index, including nodes completed
	// out of order.
	Completed map[int]bool
}

// MainPath returns the ordered subsequence of non-end nodes the timeline
// treats as primary, clamped to the first limit entries. A limit of zero or
// less means unbounded. Nodes must already be sorted by position.
func MainPath(nodes []*models.WorkflowNode, limit int) []*models.WorkflowNode {
	path := make([]*models.WorkflowNode, 0, len(nodes))

	for _, node := range nodes {
		if node.IsTerminalNode() {
			continue
		}

		path = append(path, node)

		if limit > 0 && len(path) == limit {
			break
		}
	}

	return path
}

// PositionResolver computes sample progress along the main path. It is a
// pure function of its inputs and safe for unbounded concurrent use.
type PositionResolver struct {
	legacy LegacyInference
}

// NewPositionResolver creates a resolver using the given legacy strategy.
func NewPositionResolver(legacy LegacyInference) *PositionResolver {
	if legacy == nil {
		legacy = Disabled{}
	}

	return &PositionResolver{legacy: legacy}
}

// Resolve walks the main path in order and reports which nodes are completed
// and where the position pointer sits. A node is completed when a state row
// for it carries status completed, or, failing that, when the legacy
// strategy infers completion from the sample's date columns. The pointer
// advances only across the leading run of completed nodes: an out-of-order
// completion is recorded but never lets the pointer skip past earlier
// incomplete nodes.
func (r *PositionResolver) Resolve(path []*models.WorkflowNode, sample *models.Sample, states []*models.SampleWorkflowState) Progress {
	progress := Progress{
		CurrentIndex: 0,
		Completed:    make(map[int]bool),
	}

	if len(path) == 0 {
		return progress
	}

	byNode := statesByNode(states)

	for i, node := range path {
		if !r.nodeCompleted(node, sample, byNode[node.ID]) {
			continue
		}

		progress.Completed[i] = true

		if i == progress.CurrentIndex {
			progress.CurrentIndex = i + 1
		}
	}

	if progress.CurrentIndex > len(path)-1 {
		progress.CurrentIndex = len(path) - 1
	}

	return progress
}

func (r *PositionResolver) nodeCompleted(node *models.WorkflowNode, sample *models.Sample, state *models.SampleWorkflowState) bool {
	if state.Completed() {
		return true
	}

	return r.legacy.Completed(node, sample)
}

// statesByNode indexes state rows by node ID, keeping the first row seen for
// a node so duplicate rows resolve the same way the repositories do.
func statesByNode(states []*models.SampleWorkflowState) map[string]*models.SampleWorkflowState {
	byNode := make(map[string]*models.SampleWorkflowState, len(states))

	for _, state := range states {
		if _, ok := byNode[state.NodeID]; !ok {
			byNode[state.NodeID] = state
		}
	}

	return byNode
}
