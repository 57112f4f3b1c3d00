package policy

import (
	"time"

	"go-leaveflow/internal/domain"

	"github.com/google/uuid"
)

// LeavePolicy is per-type configuration: how days are counted, whether a
// supporting document is required, and the annual allowance used when
// balances reset.
type LeavePolicy struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LeaveType        string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"leave_type"`
	MaxDays          float64   `gorm:"type:numeric(5,1);not null;default:0" json:"max_days"`
	CarryForward     bool      `gorm:"not null;default:false" json:"carry_forward"`
	RequiresDocument bool      `gorm:"not null;default:false" json:"requires_document"`
	BusinessDaysOnly bool      `gorm:"not null;default:false" json:"business_days_only"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (LeavePolicy) TableName() string {
	return "leave_policies"
}

// Rule is the subset of a policy the leave state machine consults. The zero
// value means calendar-day counting with no document requirement.
type Rule struct {
	MaxDays          float64
	CarryForward     bool
	RequiresDocument bool
	BusinessDaysOnly bool
}

// defaultRules back every leave type that has no stored policy row.
var defaultRules = map[string]Rule{
	domain.LeaveCasual: {MaxDays: 12},
	domain.LeaveSick:   {MaxDays: 10},
	domain.LeaveEarned: {MaxDays: 15},
	domain.LeaveUnpaid: {},
}
