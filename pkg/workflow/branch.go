package workflow

import (
	"sort"

	"github.com/foodreg/sampletrail/pkg/models"
)

// Resolution is the outcome of resolving a sample's decision branches.
type Resolution struct {
	// Decision is the graph's decision node, nil when the graph has none.
	Decision *models.WorkflowNode
	// Outcome is the resolved lab result, empty when neither the sample nor
	// the decision node's recorded data carries one.
	Outcome string
	// Branches holds the target nodes of matching lab_result transitions in
	// display order.
	Branches []*models.WorkflowNode
	// Awaiting marks the distinct non-error condition where the lab report
	// has arrived but its result has not been recorded yet.
	Awaiting bool
}

// ConfigurationGap reports a resolved outcome that no configured transition
// matches. Admins see it as an awaiting-style view state, never an error.
func (r Resolution) ConfigurationGap() bool {
	return r.Decision != nil && r.Outcome != "" && len(r.Branches) == 0
}

// BranchResolver resolves which outcome branches apply to a sample. It is a
// pure function of its inputs and safe for unbounded concurrent use.
type BranchResolver struct{}

// Resolve locates the graph's decision node, resolves the sample's lab
// result, and maps matching lab_result transitions to their target nodes.
// The outcome is read from the sample first, then from the decision node's
// recorded nodeData. Transitions whose target is not in the node list are
// dropped silently.
func (BranchResolver) Resolve(nodes []*models.WorkflowNode, transitions []*models.WorkflowTransition, sample *models.Sample, states []*models.SampleWorkflowState) Resolution {
	resolution := Resolution{
		Branches: make([]*models.WorkflowNode, 0),
	}

	for _, node := range nodes {
		if node.IsDecisionNode() {
			resolution.Decision = node

			break
		}
	}

	if resolution.Decision == nil {
		return resolution
	}

	resolution.Outcome = resolveOutcome(resolution.Decision, sample, states)

	outgoing := 0

	matching := make([]*models.WorkflowTransition, 0)

	for _, transition := range transitions {
		if transition.FromNodeID != resolution.Decision.ID {
			continue
		}

		outgoing++

		if transition.ConditionType == models.ConditionLabResult && transition.Matches(resolution.Outcome) {
			matching = append(matching, transition)
		}
	}

	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].DisplayOrder < matching[j].DisplayOrder
	})

	byID := make(map[string]*models.WorkflowNode, len(nodes))
	for _, node := range nodes {
		byID[node.ID] = node
	}

	for _, transition := range matching {
		target, ok := byID[transition.ToNodeID]
		if !ok {
			continue
		}

		resolution.Branches = append(resolution.Branches, target)
	}

	if resolution.Outcome == "" && sample != nil && sample.LabReportDate != nil && outgoing > 0 {
		resolution.Awaiting = true
	}

	return resolution
}

// resolveOutcome reads the lab result from the sample, falling back to the
// decision node's own recorded submission.
func resolveOutcome(decision *models.WorkflowNode, sample *models.Sample, states []*models.SampleWorkflowState) string {
	if sample != nil && sample.LabResult != "" {
		return sample.LabResult
	}

	for _, state := range states {
		if state.NodeID != decision.ID {
			continue
		}

		if value, ok := models.StringValue(state.NodeData, models.NodeDataKeyLabResult); ok {
			return value
		}
	}

	return ""
}
