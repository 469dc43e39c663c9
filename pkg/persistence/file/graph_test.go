package file

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodreg/sampletrail/pkg/models"
	"github.com/foodreg/sampletrail/pkg/persistence"
)

func TestGraphRepository_SaveNode(t *testing.T) {
	testDir := t.TempDir()
	fp := NewPersistence(testDir)

	node := &models.WorkflowNode{
		Name:     "Sample Lifted",
		Position: 1,
		NodeType: models.NodeTypeAction,
		InputFields: []models.InputField{
			{Name: "liftedDate", Type: models.FieldTypeDate, Label: "Date Lifted", Required: true},
		},
	}

	err := fp.Graph().SaveNode(t.Context(), node)
	require.NoError(t, err)

	// Verify defaults were filled in
	assert.NotEmpty(t, node.ID)
	assert.Equal(t, models.NodeStatusActive, node.Status)
	assert.False(t, node.CreatedAt.IsZero())
	assert.False(t, node.UpdatedAt.IsZero())

	// Verify file was created
	assert.FileExists(t, filepath.Join(testDir, "nodes", node.ID+".json"))

	loaded, err := fp.Graph().NodeByID(t.Context(), node.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sample Lifted", loaded.Name)
	assert.Len(t, loaded.InputFields, 1)
	assert.Equal(t, models.FieldTypeDate, loaded.InputFields[0].Type)
}

func TestGraphRepository_NodeByID_NotFound(t *testing.T) {
	fp := NewPersistence(t.TempDir())

	_, err := fp.Graph().NodeByID(t.Context(), "missing")
	require.Error(t, err)
	assert.True(t, persistence.IsNodeNotFound(err))
}

func TestGraphRepository_ActiveNodes_OrderedByPosition(t *testing.T) {
	fp := NewPersistence(t.TempDir())

	for _, node := range []*models.WorkflowNode{
		{Name: "Report Received", Position: 3, NodeType: models.NodeTypeAction},
		{Name: "Sample Lifted", Position: 1, NodeType: models.NodeTypeAction},
		{Name: "Retired Step", Position: 2, NodeType: models.NodeTypeAction, Status: models.NodeStatusInactive},
		{Name: "Sample Dispatched", Position: 2, NodeType: models.NodeTypeAction},
	} {
		require.NoError(t, fp.Graph().SaveNode(t.Context(), node))
	}

	nodes, err := fp.Graph().ActiveNodes(t.Context())
	require.NoError(t, err)

	require.Len(t, nodes, 3)
	assert.Equal(t, "Sample Lifted", nodes[0].Name)
	assert.Equal(t, "Sample Dispatched", nodes[1].Name)
	assert.Equal(t, "Report Received", nodes[2].Name)
}

func TestGraphRepository_ActiveTransitions_OrderedByDisplayOrder(t *testing.T) {
	fp := NewPersistence(t.TempDir())

	for _, transition := range []*models.WorkflowTransition{
		{FromNodeID: "a", ToNodeID: "c", ConditionType: models.ConditionLabResult, ConditionValue: "unsafe", DisplayOrder: 2},
		{FromNodeID: "a", ToNodeID: "b", ConditionType: models.ConditionLabResult, ConditionValue: "safe", DisplayOrder: 1},
		{FromNodeID: "a", ToNodeID: "d", ConditionType: models.ConditionAlways, DisplayOrder: 3, Status: models.TransitionStatusInactive},
	} {
		require.NoError(t, fp.Graph().SaveTransition(t.Context(), transition))
	}

	transitions, err := fp.Graph().ActiveTransitions(t.Context())
	require.NoError(t, err)

	require.Len(t, transitions, 2)
	assert.Equal(t, "b", transitions[0].ToNodeID)
	assert.Equal(t, "c", transitions[1].ToNodeID)
}

func TestGraphRepository_DeleteTransition(t *testing.T) {
	fp := NewPersistence(t.TempDir())

	transition := &models.WorkflowTransition{
		FromNodeID:    "a",
		ToNodeID:      "b",
		ConditionType: models.ConditionAlways,
	}
	require.NoError(t, fp.Graph().SaveTransition(t.Context(), transition))

	err := fp.Graph().DeleteTransition(t.Context(), transition.ID)
	require.NoError(t, err)

	_, err = fp.Graph().TransitionByID(t.Context(), transition.ID)
	assert.True(t, persistence.IsTransitionNotFound(err))

	err = fp.Graph().DeleteTransition(t.Context(), transition.ID)
	assert.True(t, persistence.IsTransitionNotFound(err))
}

func TestGraphRepository_DeleteNode_CascadesTransitions(t *testing.T) {
	fp := NewPersistence(t.TempDir())

	decision := &models.WorkflowNode{Name: "Lab Result", Position: 4, NodeType: models.NodeTypeDecision}
	closed := &models.WorkflowNode{Name: "Case Closed", Position: 5, NodeType: models.NodeTypeEnd}
	require.NoError(t, fp.Graph().SaveNode(t.Context(), decision))
	require.NoError(t, fp.Graph().SaveNode(t.Context(), closed))

	inbound := &models.WorkflowTransition{FromNodeID: "elsewhere", ToNodeID: decision.ID, ConditionType: models.ConditionAlways}
	outbound := &models.WorkflowTransition{FromNodeID: decision.ID, ToNodeID: closed.ID, ConditionType: models.ConditionLabResult, ConditionValue: "safe"}
	unrelated := &models.WorkflowTransition{FromNodeID: "elsewhere", ToNodeID: closed.ID, ConditionType: models.ConditionAlways}
	require.NoError(t, fp.Graph().SaveTransition(t.Context(), inbound))
	require.NoError(t, fp.Graph().SaveTransition(t.Context(), outbound))
	require.NoError(t, fp.Graph().SaveTransition(t.Context(), unrelated))

	err := fp.Graph().DeleteNode(t.Context(), decision.ID)
	require.NoError(t, err)

	_, err = fp.Graph().NodeByID(t.Context(), decision.ID)
	assert.True(t, persistence.IsNodeNotFound(err))

	transitions, err := fp.Graph().ActiveTransitions(t.Context())
	require.NoError(t, err)
	require.Len(t, transitions, 1)
	assert.Equal(t, unrelated.ID, transitions[0].ID)
}

func TestGraphRepository_DeleteNode_RefusedWhileReferenced(t *testing.T) {
	fp := NewPersistence(t.TempDir())

	node := &models.WorkflowNode{Name: "Sample Lifted", Position: 1, NodeType: models.NodeTypeAction}
	require.NoError(t, fp.Graph().SaveNode(t.Context(), node))

	_, err := fp.States().SaveState(t.Context(), "FS-2024-001", node.ID, map[string]any{"liftedDate": "15-01-2024"})
	require.NoError(t, err)

	err = fp.Graph().DeleteNode(t.Context(), node.ID)
	require.Error(t, err)
	assert.True(t, persistence.IsNodeReferenced(err))

	// Node survives the refused delete
	_, err = fp.Graph().NodeByID(t.Context(), node.ID)
	assert.NoError(t, err)
}

func TestGraphRepository_DeleteNode_NotFound(t *testing.T) {
	fp := NewPersistence(t.TempDir())

	err := fp.Graph().DeleteNode(t.Context(), "missing")
	assert.True(t, persistence.IsNodeNotFound(err))
}
