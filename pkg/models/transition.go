package models

import (
	"strings"
	"time"
)

// ConditionType classifies how a transition's guard is evaluated.
type ConditionType string

const (
	ConditionAlways     ConditionType = "always"      // Unconditional edge
	ConditionLabResult  ConditionType = "lab_result"  // Guarded by the sample's resolved lab result
	ConditionFieldValue ConditionType = "field_value" // Guarded by an arbitrary nodeData field
)

// Valid reports whether the condition type is one of the known variants.
func (t ConditionType) Valid() bool {
	switch t {
	case ConditionAlways, ConditionLabResult, ConditionFieldValue:
		return true
	default:
		return false
	}
}

// ConditionOperator compares a transition's condition value against a sample value.
type ConditionOperator string

const (
	OperatorEquals    ConditionOperator = "equals"
	OperatorNotEquals ConditionOperator = "not_equals"
	OperatorContains  ConditionOperator = "contains"
)

// TransitionStatus represents the lifecycle state of a transition definition.
type TransitionStatus string

const (
	TransitionStatusActive   TransitionStatus = "active"
	TransitionStatusInactive TransitionStatus = "inactive"
)

// WorkflowTransition is a directed, optionally-guarded edge between two nodes.
type WorkflowTransition struct {
	ID                string            `json:"id"`
	FromNodeID        string            `json:"from_node_id"       validate:"required"`
	ToNodeID          string            `json:"to_node_id"         validate:"required"`
	ConditionType     ConditionType     `json:"condition_type"     validate:"required"`
	ConditionField    string            `json:"condition_field"`
	ConditionOperator ConditionOperator `json:"condition_operator"`
	ConditionValue    string            `json:"condition_value"`
	Label             string            `json:"label"`
	DisplayOrder      int               `json:"display_order"` // Branch tie-break order, ascending
	Status            TransitionStatus  `json:"status"`
	CreatedAt         time.Time         `json:"created_at"`
}

// Matches reports whether the transition's guard accepts the given value.
// Lab-result guards compare case-insensitively regardless of operator;
// field-value guards honor the configured operator.
func (t *WorkflowTransition) Matches(value string) bool {
	switch t.ConditionType {
	case ConditionAlways:
		return true
	case ConditionLabResult:
		return value != "" && strings.EqualFold(t.ConditionValue, value)
	case ConditionFieldValue:
		return t.compare(value)
	default:
		return false
	}
}

func (t *WorkflowTransition) compare(value string) bool {
	switch t.ConditionOperator {
	case OperatorEquals:
		return strings.EqualFold(t.ConditionValue, value)
	case OperatorNotEquals:
		return !strings.EqualFold(t.ConditionValue, value)
	case OperatorContains:
		return strings.Contains(strings.ToLower(value), strings.ToLower(t.ConditionValue))
	default:
		return false
	}
}
