package workflow

import (
	"strings"

	"github.com/foodreg/sampletrail/pkg/models"
)

// LegacyInference decides node completion for samples recorded before
// explicit state rows existed. Implementations are consulted only when no
// completed state row is found for a node.
type LegacyInference interface {
	Completed(node *models.WorkflowNode, sample *models.Sample) bool
}

// NameHeuristic infers completion from the legacy sample date columns,
// keyed off substrings of the node name. It is fragile on purpose-renamed
// nodes and exists only to keep pre-migration samples interpretable.
type NameHeuristic struct{}

// Completed reports whether the legacy sample fields imply the node was done.
func (NameHeuristic) Completed(node *models.WorkflowNode, sample *models.Sample) bool {
	if node == nil || sample == nil {
		return false
	}

	name := strings.ToLower(node.Name)

	switch {
	case strings.Contains(name, "lifted"):
		return sample.LiftedDate != nil
	case strings.Contains(name, "dispatch"):
		return sample.DispatchDate != nil
	case strings.Contains(name, "report"), strings.Contains(name, "received"):
		return sample.LabReportDate != nil
	case node.IsDecisionNode():
		return sample.LabReportDate != nil
	default:
		return false
	}
}

// Disabled reports nothing as legacy-completed. Deployments whose historical
// samples have been migrated to explicit state rows run with this strategy.
type Disabled struct{}

// Completed always reports false.
func (Disabled) Completed(_ *models.WorkflowNode, _ *models.Sample) bool {
	return false
}
