package policy

import "time"

type UpdatePolicyRequest struct {
	MaxDays          *float64 `json:"max_days" binding:"omitempty,min=0"`
	CarryForward     *bool    `json:"carry_forward"`
	RequiresDocument *bool    `json:"requires_document"`
	BusinessDaysOnly *bool    `json:"business_days_only"`
}

type PolicyResponse struct {
	LeaveType        string     `json:"leave_type"`
	MaxDays          float64    `json:"max_days"`
	CarryForward     bool       `json:"carry_forward"`
	RequiresDocument bool       `json:"requires_document"`
	BusinessDaysOnly bool       `json:"business_days_only"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

func mapToResponse(leaveType string, rule Rule, updatedAt *time.Time) PolicyResponse {
	return PolicyResponse{
		LeaveType:        leaveType,
		MaxDays:          rule.MaxDays,
		CarryForward:     rule.CarryForward,
		RequiresDocument: rule.RequiresDocument,
		BusinessDaysOnly: rule.BusinessDaysOnly,
		UpdatedAt:        updatedAt,
	}
}
