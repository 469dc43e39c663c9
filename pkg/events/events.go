// Package events defines event types and structures for sample workflow notifications.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Kafka topic.
const Topic = "sampletrail.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Sample lifecycle events.
	SampleStateSavedEvent   EventType = "sample.state.saved"
	SampleFieldsSyncedEvent EventType = "sample.fields.synced"
	SampleSyncFailedEvent   EventType = "sample.sync.failed"

	// Graph administration events.
	WorkflowGraphUpdatedEvent    EventType = "workflow.graph.updated"
	WorkflowSettingsUpdatedEvent EventType = "workflow.settings.updated"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	SampleID  string         `json:"sample_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// SampleStateSaved is published after a workflow step submission has been persisted.
type SampleStateSaved struct {
	BaseEvent

	NodeID      string         `json:"node_id"`
	NodeData    map[string]any `json:"node_data,omitempty"`
	SubmittedBy string         `json:"submitted_by,omitempty"`
}

func (s SampleStateSaved) GetType() EventType {
	return SampleStateSavedEvent
}

// SampleFieldsSynced is published when a decision submission was mirrored
// onto the sample record's lab fields.
type SampleFieldsSynced struct {
	BaseEvent

	NodeID        string `json:"node_id"`
	LabResult     string `json:"lab_result,omitempty"`
	LabReportDate string `json:"lab_report_date,omitempty"`
}

func (s SampleFieldsSynced) GetType() EventType {
	return SampleFieldsSyncedEvent
}

// SampleSyncFailed is published when mirroring lab fields onto the sample
// record failed. The submission itself has already been persisted.
type SampleSyncFailed struct {
	BaseEvent

	NodeID string `json:"node_id"`
	Error  string `json:"error"`
}

func (s SampleSyncFailed) GetType() EventType {
	return SampleSyncFailedEvent
}

// Graph administration events

type WorkflowGraphUpdated struct {
	BaseEvent

	EntityKind string `json:"entity_kind"` // "node" or "transition"
	EntityID   string `json:"entity_id"`
	Action     string `json:"action"` // "saved" or "deleted"
}

func (w WorkflowGraphUpdated) GetType() EventType {
	return WorkflowGraphUpdatedEvent
}

type WorkflowSettingsUpdated struct {
	BaseEvent

	NodeEditHours int  `json:"node_edit_hours"`
	AllowNodeEdit bool `json:"allow_node_edit"`
}

func (w WorkflowSettingsUpdated) GetType() EventType {
	return WorkflowSettingsUpdatedEvent
}

func NewBaseEvent(eventType EventType, sampleID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		SampleID:  sampleID,
		Metadata:  make(map[string]any),
	}
}
