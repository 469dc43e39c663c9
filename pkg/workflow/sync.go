package workflow

import (
	"context"
	"log/slog"

	"github.com/foodreg/sampletrail/pkg/models"
	"github.com/foodreg/sampletrail/pkg/persistence"
)

// SyncReport describes what the synchronizer did with one submission.
// Callers use it for telemetry only; a failed mirror never fails the
// submission that triggered it.
type SyncReport struct {
	Attempted bool  // A mirrorable field was present
	Err       error // Swallowed failure cause, already logged
}

// Synced reports a mirror write that landed.
func (r SyncReport) Synced() bool {
	return r.Attempted && r.Err == nil
}

// Synchronizer mirrors decision-node submissions back onto the legacy
// sample record so reports built from the old columns keep working.
type Synchronizer struct {
	samples persistence.SampleRepository
	logger  *slog.Logger
}

// NewSynchronizer creates a synchronizer writing through the given
// sample repository.
func NewSynchronizer(samples persistence.SampleRepository, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{samples: samples, logger: logger}
}

// Sync mirrors labResult and labReportDate from a decision-node submission
// onto the sample record. It runs strictly after the state write has
// committed and is best-effort: unparseable dates are dropped with a warn
// log and a failed mirror write is logged and swallowed, never propagated.
// Non-decision nodes are ignored.
func (s *Synchronizer) Sync(ctx context.Context, node *models.WorkflowNode, sampleID string, nodeData map[string]any) SyncReport {
	if node == nil || !node.IsDecisionNode() {
		return SyncReport{}
	}

	var update persistence.LabFieldsUpdate

	if value, ok := models.StringValue(nodeData, models.NodeDataKeyLabResult); ok {
		update.LabResult = &value
	}

	if value, ok := models.StringValue(nodeData, models.NodeDataKeyLabReportDate); ok {
		reportDate, err := models.ParseDisplayDate(value)
		if err != nil {
			s.logger.WarnContext(ctx, "dropping unparseable lab report date",
				"sample_id", sampleID, "value", value)
		} else {
			update.LabReportDate = &reportDate
		}
	}

	if update.LabResult == nil && update.LabReportDate == nil {
		return SyncReport{}
	}

	err := s.samples.UpdateLabFields(ctx, sampleID, update)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to mirror lab fields onto sample",
			"sample_id", sampleID, "error", err)

		return SyncReport{Attempted: true, Err: err}
	}

	return SyncReport{Attempted: true}
}
