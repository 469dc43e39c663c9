// Package models defines the core domain models for the configurable sample lifecycle graph.
package models

import "time"

// NodeType classifies how a node participates in the lifecycle graph.
type NodeType string

const (
	NodeTypeAction   NodeType = "action"   // Regular data-entry step on the main path
	NodeTypeDecision NodeType = "decision" // Branching step driven by the lab result
	NodeTypeEnd      NodeType = "end"      // Terminal step, excluded from the main path
)

// Valid reports whether the node type is one of the known variants.
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeAction, NodeTypeDecision, NodeTypeEnd:
		return true
	default:
		return false
	}
}

// NodeStatus represents the lifecycle state of a node definition.
type NodeStatus string

const (
	NodeStatusActive   NodeStatus = "active"   // Visible to officers, part of the live graph
	NodeStatusInactive NodeStatus = "inactive" // Soft-deprecated, kept for historical rows
)

// FieldType enumerates the input widget kinds a node form may declare.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeDate     FieldType = "date"
	FieldTypeSelect   FieldType = "select"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeNumber   FieldType = "number"
	FieldTypeImage    FieldType = "image"
)

// Valid reports whether the field type is one of the known variants.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeDate, FieldTypeSelect, FieldTypeTextarea, FieldTypeNumber, FieldTypeImage:
		return true
	default:
		return false
	}
}

// InputField describes one field of a node's data-entry form. The definition
// is advisory: submitted nodeData is never validated against it, so admins
// can reshape forms without breaking rows recorded under older definitions.
type InputField struct {
	Name     string    `json:"name"              validate:"required,min=1"`
	Type     FieldType `json:"type"              validate:"required"`
	Label    string    `json:"label"             validate:"required,min=1"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"` // select fields only
}

// WorkflowNode is one administrator-authored step in the sample lifecycle.
type WorkflowNode struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"              validate:"required,min=1"`
	Description     string       `json:"description"`
	Position        int          `json:"position"` // Main-path order, ascending
	NodeType        NodeType     `json:"node_type"         validate:"required"`
	Icon            string       `json:"icon"`
	Color           string       `json:"color"`
	InputFields     []InputField `json:"input_fields"`
	TemplateIDs     []string     `json:"template_ids"` // Associated document templates, opaque here
	IsStartNode     bool         `json:"is_start_node"`
	IsEndNode       bool         `json:"is_end_node"`
	EditFreezeHours *int         `json:"edit_freeze_hours,omitempty"` // nil = use the global setting
	Status          NodeStatus   `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// Helper methods for node-type checking.
func (n *WorkflowNode) IsDecisionNode() bool {
	return n.NodeType == NodeTypeDecision
}

func (n *WorkflowNode) IsTerminalNode() bool {
	return n.NodeType == NodeTypeEnd
}
