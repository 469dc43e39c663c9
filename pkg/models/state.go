package models

import "time"

// StateStatus represents the recorded status of a sample's progress on one node.
type StateStatus string

const (
	StateStatusActive    StateStatus = "active"
	StateStatusCompleted StateStatus = "completed"
	// StateStatusSkipped exists in recorded data but no current flow sets it.
	StateStatusSkipped StateStatus = "skipped"
)

// SampleWorkflowState is the authoritative record of one sample's progress on
// one node. At most one row exists per (SampleID, NodeID) pair; the state
// repository's upsert enforces this, not a database constraint.
type SampleWorkflowState struct {
	ID          string         `json:"id"`
	SampleID    string         `json:"sample_id"    validate:"required"`
	NodeID      string         `json:"node_id"      validate:"required"`
	NodeData    map[string]any `json:"node_data"`
	EnteredAt   time.Time      `json:"entered_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Status      StateStatus    `json:"status"`
}

// Completed reports whether the state records a finished submission.
func (s *SampleWorkflowState) Completed() bool {
	return s != nil && s.Status == StateStatusCompleted
}
