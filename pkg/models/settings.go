package models

// Freeze-window sentinel values for WorkflowSettings.NodeEditHours and
// WorkflowNode.EditFreezeHours.
const (
	// FreezeWindowDisabled means completed node data never locks.
	FreezeWindowDisabled = 0
	// FreezeWindowPermanent locks completed node data immediately.
	FreezeWindowPermanent = -1
	// DefaultNodeEditHours applies when no settings row has been saved.
	DefaultNodeEditHours = 48
)

// WorkflowSettings holds the global editability configuration.
type WorkflowSettings struct {
	NodeEditHours int  `json:"node_edit_hours"` // Hours a completed node stays editable
	AllowNodeEdit bool `json:"allow_node_edit"` // Global kill switch for node edits
}

// DefaultWorkflowSettings returns the settings used when none are stored.
func DefaultWorkflowSettings() WorkflowSettings {
	return WorkflowSettings{
		NodeEditHours: DefaultNodeEditHours,
		AllowNodeEdit: true,
	}
}
