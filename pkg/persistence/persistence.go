// Package persistence defines the storage contracts shared by all
// sampletrail persistence implementations.
package persistence

import (
	"context"
	"time"

	"github.com/foodreg/sampletrail/pkg/models"
)

// Persistence aggregates the repositories backing the workflow engine.
// Implementations must hand out repositories that share one underlying
// store so that cross-aggregate rules (node deletion guarded by state
// history) observe a consistent view.
type Persistence interface {
	Graph() GraphRepository
	States() StateRepository
	Samples() SampleRepository
	Settings() SettingsRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// GraphRepository stores the configurable workflow graph: nodes and the
// transitions connecting them.
type GraphRepository interface {
	// ActiveNodes returns active nodes ordered by position ascending.
	// Callers depend on this ordering for timeline rendering.
	ActiveNodes(ctx context.Context) ([]*models.WorkflowNode, error)
	NodeByID(ctx context.Context, id string) (*models.WorkflowNode, error)
	SaveNode(ctx context.Context, node *models.WorkflowNode) error

	// DeleteNode removes a node and every transition referencing it in a
	// single transaction. It fails with ErrNodeReferenced while any sample
	// state row points at the node; history rows are never orphaned.
	DeleteNode(ctx context.Context, id string) error

	// ActiveTransitions returns active transitions ordered by display_order
	// ascending. Branch resolution depends on this ordering.
	ActiveTransitions(ctx context.Context) ([]*models.WorkflowTransition, error)
	TransitionByID(ctx context.Context, id string) (*models.WorkflowTransition, error)
	SaveTransition(ctx context.Context, transition *models.WorkflowTransition) error
	DeleteTransition(ctx context.Context, id string) error
}

// StateRepository stores per-sample workflow progress. Rows are treated as
// regulatory history: they are created and overwritten, never deleted.
type StateRepository interface {
	// StatesBySample returns all state rows for a sample ordered by
	// entered_at ascending.
	StatesBySample(ctx context.Context, sampleID string) ([]*models.SampleWorkflowState, error)
	StateBySampleAndNode(ctx context.Context, sampleID, nodeID string) (*models.SampleWorkflowState, error)

	// SaveState upserts the state row for (sampleID, nodeID): an existing
	// row keeps its id and entered_at and has node_data replaced; a new row
	// is inserted with a fresh id. Either way the row is stamped completed.
	// The lookup and write are not atomic; concurrent submissions for the
	// same pair may race, which operations accepts for this workload.
	SaveState(ctx context.Context, sampleID, nodeID string, nodeData map[string]any) (*models.SampleWorkflowState, error)
}

// LabFieldsUpdate is a partial update of the legacy lab columns on a
// sample. Nil fields are left untouched.
type LabFieldsUpdate struct {
	LabResult     *string
	LabReportDate *time.Time
}

// SampleRepository stores the legacy sample records that predate the
// configurable workflow. The engine reads them for inference and mirrors
// decision-node submissions back into them.
type SampleRepository interface {
	SampleByID(ctx context.Context, id string) (*models.Sample, error)
	SaveSample(ctx context.Context, sample *models.Sample) error

	// UpdateLabFields applies a partial update to the lab columns.
	// It fails with ErrSampleNotFound when the sample does not exist.
	UpdateLabFields(ctx context.Context, id string, update LabFieldsUpdate) error
}

// SettingsRepository stores the singleton workflow settings record.
type SettingsRepository interface {
	// Settings returns the stored settings, or the defaults when nothing
	// has been saved yet.
	Settings(ctx context.Context) (models.WorkflowSettings, error)
	SaveSettings(ctx context.Context, settings models.WorkflowSettings) error
}
