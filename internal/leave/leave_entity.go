package leave

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
	StatusCanceled = "CANCELLED"
)

// Per-request audit trail actions. The trail is owned by the request and
// appended in the same write as the transition it records.
const (
	TrailCreated    = "created"
	TrailUpdated    = "updated"
	TrailApproved   = "approved"
	TrailRejected   = "rejected"
	TrailCancelled  = "cancelled"
	TrailOverridden = "overridden"
)

type AuditEntry struct {
	Action string         `json:"action"`
	By     string         `json:"by"`
	At     time.Time      `json:"at"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// AuditTrail is stored as a jsonb array so trail appends can ride the same
// conditional UPDATE as the status change.
type AuditTrail []AuditEntry

func (t AuditTrail) Value() (driver.Value, error) {
	if t == nil {
		t = AuditTrail{}
	}
	return json.Marshal(t)
}

func (t *AuditTrail) Scan(value any) error {
	if value == nil {
		*t = AuditTrail{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("audit trail: unsupported scan type %T", value)
	}
	return json.Unmarshal(raw, t)
}

type LeaveRequest struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_user_status;index:idx_leave_requests_user_dates"`

	LeaveType string    `gorm:"type:varchar(20);not null"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_leave_requests_user_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leave_requests_user_dates"`
	TotalDays float64   `gorm:"type:numeric(5,1);not null"`
	Reason    string    `gorm:"type:text;not null"`

	Status    string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leave_requests_user_status"`
	ManagerID *uuid.UUID `gorm:"type:uuid;index"` // manager snapshot at creation time

	ManagerComment *string `gorm:"type:varchar(500)"`
	HRComment      *string `gorm:"column:hr_comment;type:varchar(500)"`

	AuditTrail AuditTrail `gorm:"type:jsonb;not null;default:'[]'"`
	Attachment *string    `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

func newAuditEntry(action, by string, meta map[string]any) AuditEntry {
	return AuditEntry{
		Action: action,
		By:     by,
		At:     time.Now().UTC(),
		Meta:   meta,
	}
}
