package models

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeType_Valid(t *testing.T) {
	testCases := []struct {
		name     string
		nodeType NodeType
		want     bool
	}{
		{name: "action is valid", nodeType: NodeTypeAction, want: true},
		{name: "decision is valid", nodeType: NodeTypeDecision, want: true},
		{name: "end is valid", nodeType: NodeTypeEnd, want: true},
		{name: "empty is invalid", nodeType: NodeType(""), want: false},
		{name: "unknown is invalid", nodeType: NodeType("trigger"), want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.nodeType.Valid())
		})
	}
}

func TestFieldType_Valid(t *testing.T) {
	for _, ft := range []FieldType{FieldTypeText, FieldTypeDate, FieldTypeSelect, FieldTypeTextarea, FieldTypeNumber, FieldTypeImage} {
		assert.True(t, ft.Valid(), "field type %q should be valid", ft)
	}

	assert.False(t, FieldType("checkbox").Valid())
	assert.False(t, FieldType("").Valid())
}

func TestWorkflowNode_Validation(t *testing.T) {
	validate := validator.New()

	node := &WorkflowNode{
		ID:       "node-1",
		Name:     "Sample Lifted",
		Position: 0,
		NodeType: NodeTypeAction,
		Status:   NodeStatusActive,
	}

	err := validate.Struct(node)
	assert.NoError(t, err)

	node.Name = ""
	err = validate.Struct(node)
	require.Error(t, err)
}

func TestWorkflowNode_TypeHelpers(t *testing.T) {
	decision := &WorkflowNode{NodeType: NodeTypeDecision}
	assert.True(t, decision.IsDecisionNode())
	assert.False(t, decision.IsTerminalNode())

	end := &WorkflowNode{NodeType: NodeTypeEnd}
	assert.True(t, end.IsTerminalNode())
	assert.False(t, end.IsDecisionNode())
}

func TestWorkflowNode_JSONRoundTrip(t *testing.T) {
	freeze := 72
	node := &WorkflowNode{
		ID:       "node-lab",
		Name:     "Lab Result",
		NodeType: NodeTypeDecision,
		Position: 2,
		InputFields: []InputField{
			{Name: "labResult", Type: FieldTypeSelect, Label: "Lab Result", Required: true, Options: []string{"safe", "unsafe"}},
			{Name: "labReportDate", Type: FieldTypeDate, Label: "Report Date"},
		},
		TemplateIDs:     []string{"tmpl-1"},
		EditFreezeHours: &freeze,
		Status:          NodeStatusActive,
	}

	payload, err := json.Marshal(node)
	require.NoError(t, err)

	var decoded WorkflowNode
	require.NoError(t, json.Unmarshal(payload, &decoded))

	assert.Equal(t, node.ID, decoded.ID)
	assert.Equal(t, NodeTypeDecision, decoded.NodeType)
	require.NotNil(t, decoded.EditFreezeHours)
	assert.Equal(t, 72, *decoded.EditFreezeHours)
	require.Len(t, decoded.InputFields, 2)
	assert.Equal(t, FieldTypeSelect, decoded.InputFields[0].Type)
	assert.Equal(t, []string{"safe", "unsafe"}, decoded.InputFields[0].Options)
}
