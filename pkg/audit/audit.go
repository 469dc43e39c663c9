// Package audit records officer and administrator actions for later review.
package audit

import (
	"context"
	"time"
)

// Entry is one recorded action. SampleID and EntityID are optional; which
// one is set depends on what the action touched.
type Entry struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	SampleID  string    `json:"sample_id,omitempty"`
	EntityID  string    `json:"entity_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Trail is the audit storage contract. Recording is best-effort from the
// caller's point of view: engine correctness never depends on it.
type Trail interface {
	Record(ctx context.Context, entry Entry) error
	Recent(ctx context.Context, n int) ([]Entry, error)
}
