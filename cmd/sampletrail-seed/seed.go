// Package main seeds the canonical default sample lifecycle graph.
package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/foodreg/sampletrail/pkg/models"
	"github.com/foodreg/sampletrail/pkg/services"
)

// defaultNodes is the canonical lifecycle most jurisdictions start from:
// a four-step main path ending in a lab-result decision, branching to two
// terminal outcomes. Administrators reshape it from there.
func defaultNodes() []*models.WorkflowNode {
	return []*models.WorkflowNode{
		{
			Name:        "Sample Lifted",
			Description: "Sample collected at the premises",
			Position:    0,
			NodeType:    models.NodeTypeAction,
			Icon:        "flask",
			Color:       "#2563eb",
			IsStartNode: true,
			InputFields: []models.InputField{
				{Name: "liftedDate", Type: models.FieldTypeDate, Label: "Date Lifted", Required: true},
				{Name: "premises", Type: models.FieldTypeText, Label: "Premises"},
				{Name: "samplePhoto", Type: models.FieldTypeImage, Label: "Sample Photo"},
			},
		},
		{
			Name:        "Sample Dispatched",
			Description: "Sample dispatched to the laboratory",
			Position:    1,
			NodeType:    models.NodeTypeAction,
			Icon:        "truck",
			Color:       "#7c3aed",
			InputFields: []models.InputField{
				{Name: "dispatchDate", Type: models.FieldTypeDate, Label: "Dispatch Date", Required: true},
				{Name: "labName", Type: models.FieldTypeText, Label: "Laboratory"},
			},
		},
		{
			Name:        "Report Received",
			Description: "Laboratory report received",
			Position:    2,
			NodeType:    models.NodeTypeAction,
			Icon:        "file-text",
			Color:       "#0891b2",
			InputFields: []models.InputField{
				{Name: "labReportDate", Type: models.FieldTypeDate, Label: "Report Date", Required: true},
				{Name: "reportNumber", Type: models.FieldTypeText, Label: "Report Number"},
			},
		},
		{
			Name:        "Lab Result",
			Description: "Record the laboratory verdict",
			Position:    3,
			NodeType:    models.NodeTypeDecision,
			Icon:        "git-branch",
			Color:       "#d97706",
			InputFields: []models.InputField{
				{Name: "labResult", Type: models.FieldTypeSelect, Label: "Result", Required: true, Options: []string{"safe", "unsafe"}},
				{Name: "labReportDate", Type: models.FieldTypeDate, Label: "Report Date"},
				{Name: "remarks", Type: models.FieldTypeTextarea, Label: "Remarks"},
			},
		},
		{
			Name:        "Case Closed",
			Description: "Sample found safe, case closed",
			Position:    4,
			NodeType:    models.NodeTypeEnd,
			Icon:        "check-circle",
			Color:       "#16a34a",
			IsEndNode:   true,
			InputFields: []models.InputField{
				{Name: "closureRemarks", Type: models.FieldTypeTextarea, Label: "Closure Remarks"},
			},
		},
		{
			Name:        "Prosecution Initiated",
			Description: "Sample found unsafe, prosecution case opened",
			Position:    5,
			NodeType:    models.NodeTypeEnd,
			Icon:        "gavel",
			Color:       "#dc2626",
			IsEndNode:   true,
			InputFields: []models.InputField{
				{Name: "caseNumber", Type: models.FieldTypeText, Label: "Case Number"},
				{Name: "remarks", Type: models.FieldTypeTextarea, Label: "Remarks"},
			},
		},
	}
}

// Seed writes the default graph and settings through the graph service.
// It refuses to touch a store that already has nodes.
func Seed(ctx context.Context, graphService *services.Graph, logger *slog.Logger) error {
	graph, err := graphService.ActiveGraph(ctx)
	if err != nil {
		return fmt.Errorf("failed to inspect existing graph: %w", err)
	}

	if len(graph.Nodes) > 0 {
		return fmt.Errorf("refusing to seed: store already has %d nodes", len(graph.Nodes))
	}

	nodes := defaultNodes()
	for _, node := range nodes {
		if _, err := graphService.SaveNode(ctx, node); err != nil {
			return fmt.Errorf("failed to seed node %q: %w", node.Name, err)
		}

		logger.InfoContext(ctx, "Seeded node", "name", node.Name, "position", node.Position)
	}

	byName := make(map[string]*models.WorkflowNode, len(nodes))
	for _, node := range nodes {
		byName[node.Name] = node
	}

	transitions := []*models.WorkflowTransition{
		{
			FromNodeID:     byName["Lab Result"].ID,
			ToNodeID:       byName["Case Closed"].ID,
			ConditionType:  models.ConditionLabResult,
			ConditionValue: "safe",
			Label:          "Safe",
			DisplayOrder:   0,
		},
		{
			FromNodeID:     byName["Lab Result"].ID,
			ToNodeID:       byName["Prosecution Initiated"].ID,
			ConditionType:  models.ConditionLabResult,
			ConditionValue: "unsafe",
			Label:          "Unsafe",
			DisplayOrder:   1,
		},
	}

	for _, transition := range transitions {
		if _, err := graphService.SaveTransition(ctx, transition); err != nil {
			return fmt.Errorf("failed to seed transition %q: %w", transition.Label, err)
		}

		logger.InfoContext(ctx, "Seeded transition", "label", transition.Label)
	}

	if _, err := graphService.SaveSettings(ctx, models.DefaultWorkflowSettings()); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}

	logger.InfoContext(ctx, "Seed complete", "nodes", len(nodes), "transitions", len(transitions))

	return nil
}
