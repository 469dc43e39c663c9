package workflow

import (
	"fmt"
	"math"
	"time"

	"github.com/foodreg/sampletrail/pkg/models"
)

// ReasonEditingDisabled is the locked reason when the administrator has
// switched node editing off globally.
const ReasonEditingDisabled = "disabled by administrator"

// ReasonPermanentlyLocked is the locked reason under a permanent freeze.
const ReasonPermanentlyLocked = "permanently locked once completed"

// Decision is the result of an editability evaluation.
type Decision struct {
	Editable bool
	Reason   string // Set only when locked
}

// EditabilityGuard decides whether a completed node submission may still be
// edited. It is a pure function of its inputs and safe for unbounded
// concurrent use.
type EditabilityGuard struct{}

// Evaluate applies the freeze rules in strict priority order:
//
//  1. editing disabled globally: locked
//  2. nothing completed yet: editable (first submission)
//  3. effective window = node override if set, else the global setting
//  4. window 0: editable, data never freezes
//  5. window -1: locked permanently, elapsed time is irrelevant
//  6. otherwise locked once the elapsed time exceeds the window
func (EditabilityGuard) Evaluate(node *models.WorkflowNode, state *models.SampleWorkflowState, settings models.WorkflowSettings, now time.Time) Decision {
	if !settings.AllowNodeEdit {
		return Decision{Editable: false, Reason: ReasonEditingDisabled}
	}

	if state == nil || state.CompletedAt == nil {
		return Decision{Editable: true}
	}

	window := settings.NodeEditHours
	if node != nil && node.EditFreezeHours != nil {
		window = *node.EditFreezeHours
	}

	if window == models.FreezeWindowDisabled {
		return Decision{Editable: true}
	}

	if window == models.FreezeWindowPermanent {
		return Decision{Editable: false, Reason: ReasonPermanentlyLocked}
	}

	elapsed := now.Sub(*state.CompletedAt)
	if elapsed.Hours() <= float64(window) {
		return Decision{Editable: true}
	}

	elapsedHours := int(math.Round(elapsed.Hours()))

	return Decision{
		Editable: false,
		Reason:   fmt.Sprintf("completed %d hours ago, editing window is %s", elapsedHours, windowText(window)),
	}
}

// windowText renders the configured window in hours, adding the rounded day
// count once the window spans a day or more.
func windowText(window int) string {
	if window < 24 {
		return fmt.Sprintf("%d hours", window)
	}

	days := int(math.Round(float64(window) / 24))

	return fmt.Sprintf("%d hours (%d days)", window, days)
}
