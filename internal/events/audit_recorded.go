package events

import "time"

const AuditRecordedTopic = "leave.audit.v1"

type AuditRecordedEvent struct {
	EventType  string         `json:"event_type"`
	AuditID    string         `json:"audit_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	ActorID    string         `json:"actor_id"`
	Changes    map[string]any `json:"changes,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
