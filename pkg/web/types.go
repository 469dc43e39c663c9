// Package web provides HTTP request and response types for the sample workflow API.
package web

import "github.com/foodreg/sampletrail/pkg/models"

// CreateNodeRequest represents the request body for creating a workflow node.
type CreateNodeRequest struct {
	Name            string              `json:"name"              validate:"required,min=1"`
	Description     string              `json:"description"`
	Position        int                 `json:"position"`
	NodeType        string              `json:"node_type"         validate:"required,oneof=action decision end"`
	Icon            string              `json:"icon"`
	Color           string              `json:"color"`
	InputFields     []models.InputField `json:"input_fields"`
	TemplateIDs     []string            `json:"template_ids"`
	IsStartNode     bool                `json:"is_start_node"`
	IsEndNode       bool                `json:"is_end_node"`
	EditFreezeHours *int                `json:"edit_freeze_hours,omitempty"`
}

// UpdateNodeRequest represents the request body for updating a workflow node.
// All fields are optional to support partial updates; the node type cannot be
// changed once rows reference the node.
type UpdateNodeRequest struct {
	Name            *string             `json:"name,omitempty"        validate:"omitempty,min=1"`
	Description     *string             `json:"description,omitempty"`
	Position        *int                `json:"position,omitempty"`
	Icon            *string             `json:"icon,omitempty"`
	Color           *string             `json:"color,omitempty"`
	InputFields     []models.InputField `json:"input_fields,omitempty"`
	TemplateIDs     []string            `json:"template_ids,omitempty"`
	IsStartNode     *bool               `json:"is_start_node,omitempty"`
	IsEndNode       *bool               `json:"is_end_node,omitempty"`
	EditFreezeHours *int                `json:"edit_freeze_hours,omitempty"`
	Status          *string             `json:"status,omitempty"      validate:"omitempty,oneof=active inactive"`
}

// CreateTransitionRequest represents the request body for creating a transition.
type CreateTransitionRequest struct {
	FromNodeID        string `json:"from_node_id"       validate:"required"`
	ToNodeID          string `json:"to_node_id"         validate:"required"`
	ConditionType     string `json:"condition_type"     validate:"required,oneof=always lab_result field_value"`
	ConditionField    string `json:"condition_field"`
	ConditionOperator string `json:"condition_operator" validate:"omitempty,oneof=equals not_equals contains"`
	ConditionValue    string `json:"condition_value"`
	Label             string `json:"label"`
	DisplayOrder      int    `json:"display_order"`
}

// UpdateTransitionRequest represents the request body for updating a transition.
// All fields are optional to support partial updates; the endpoints cannot be
// changed, delete and recreate the edge instead.
type UpdateTransitionRequest struct {
	ConditionType     *string `json:"condition_type,omitempty"     validate:"omitempty,oneof=always lab_result field_value"`
	ConditionField    *string `json:"condition_field,omitempty"`
	ConditionOperator *string `json:"condition_operator,omitempty" validate:"omitempty,oneof=equals not_equals contains"`
	ConditionValue    *string `json:"condition_value,omitempty"`
	Label             *string `json:"label,omitempty"`
	DisplayOrder      *int    `json:"display_order,omitempty"`
	Status            *string `json:"status,omitempty"             validate:"omitempty,oneof=active inactive"`
}

// UpdateSettingsRequest represents the request body for replacing the global
// editability settings.
type UpdateSettingsRequest struct {
	NodeEditHours int  `json:"node_edit_hours" validate:"min=-1"`
	AllowNodeEdit bool `json:"allow_node_edit"`
}

// SubmitStateRequest represents the request body for submitting step data for
// a sample. NodeData is an open document and passes through unvalidated.
type SubmitStateRequest struct {
	NodeID   string         `json:"node_id" validate:"required,min=1"`
	NodeData map[string]any `json:"node_data"`
}
