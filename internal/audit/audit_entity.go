package audit

import (
	"time"

	"github.com/google/uuid"
)

// Actions recorded in the system audit log. These name business outcomes,
// not HTTP routes.
const (
	ActionLeaveCreated    = "leave_created"
	ActionLeaveUpdated    = "leave_updated"
	ActionLeaveApproved   = "leave_approved"
	ActionLeaveRejected   = "leave_rejected"
	ActionLeaveCancelled  = "leave_cancelled"
	ActionLeaveOverridden = "leave_overridden"
	ActionBalanceUpdated  = "balance_updated"
	ActionPolicyUpdated   = "policy_updated"
	ActionUserCreated     = "user_created"
	ActionUserUpdated     = "user_updated"
)

const (
	EntityLeaveRequest = "LeaveRequest"
	EntityUser         = "User"
	EntityLeavePolicy  = "LeavePolicy"
)

// AuditLog is one immutable row in the system-wide audit log. Unlike the
// per-request audit trail embedded in a leave row, these records span every
// entity type and survive the entity's deletion.
type AuditLog struct {
	ID         uuid.UUID      `json:"id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	ActorID    string         `json:"actor_id"`
	Changes    map[string]any `json:"changes"`
	IPAddress  string         `json:"ip_address"`
	UserAgent  string         `json:"user_agent"`
	CreatedAt  time.Time      `json:"created_at"`
}
