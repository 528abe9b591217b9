package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType defines the type of event
type EventType string

const (
	// EventTypeVerdictDuplicate is emitted when a lead matched an
	// existing contact or entity, or hit the blocklist.
	EventTypeVerdictDuplicate EventType = "verdict.duplicate"
	// EventTypeVerdictClear is emitted when a lead came back clean and
	// is safe to work.
	EventTypeVerdictClear EventType = "verdict.clear"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType     EventType `json:"event_type"`
	SchemaVersion string    `json:"schema_version"`
	TenantID      string    `json:"tenant_id"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// NewBaseEvent creates the common envelope for an outbound event
func NewBaseEvent(eventType EventType, tenantID string) BaseEvent {
	return BaseEvent{
		EventType:     eventType,
		SchemaVersion: SchemaVersion,
		TenantID:      tenantID,
		Timestamp:     time.Now().UTC(),
		CorrelationID: uuid.New().String(),
	}
}
