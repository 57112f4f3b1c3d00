package leave

import "time"

type CreateLeaveRequest struct {
	LeaveType  string  `json:"leave_type" binding:"required,oneof=CASUAL SICK EARNED UNPAID"`
	StartDate  string  `json:"start_date" binding:"required"`
	EndDate    string  `json:"end_date" binding:"required"`
	Reason     string  `json:"reason" binding:"required"`
	HalfDay    bool    `json:"half_day"`
	Attachment *string `json:"attachment"`
}

type UpdateLeaveRequest struct {
	LeaveType  *string `json:"leave_type" binding:"omitempty,oneof=CASUAL SICK EARNED UNPAID"`
	StartDate  *string `json:"start_date"`
	EndDate    *string `json:"end_date"`
	Reason     *string `json:"reason"`
	HalfDay    *bool   `json:"half_day"`
	Attachment *string `json:"attachment"`
}

type DecisionRequest struct {
	Comment string `json:"comment" binding:"max=500"`
}

type OverrideRequest struct {
	Status  string `json:"status" binding:"required,oneof=APPROVED REJECTED"`
	Comment string `json:"comment" binding:"required,max=500"`
}

type BulkApproveRequest struct {
	LeaveIDs []string `json:"leave_ids" binding:"required,min=1"`
	Comment  string   `json:"comment" binding:"max=500"`
}

type ListQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED CANCELLED"`
	Type     string `form:"type" binding:"omitempty,oneof=CASUAL SICK EARNED UNPAID"`
	From     string `form:"from"`
	To       string `form:"to"`
	UserID   string `form:"user_id"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=10"`
}

type AuditEntryResponse struct {
	Action string         `json:"action"`
	By     string         `json:"by"`
	At     string         `json:"at"`
	Meta   map[string]any `json:"meta,omitempty"`
}

type LeaveResponse struct {
	ID             string               `json:"id"`
	UserID         string               `json:"user_id"`
	LeaveType      string               `json:"leave_type"`
	StartDate      string               `json:"start_date"`
	EndDate        string               `json:"end_date"`
	TotalDays      float64              `json:"total_days"`
	Reason         string               `json:"reason"`
	Status         string               `json:"status"`
	ManagerID      *string              `json:"manager_id,omitempty"`
	ManagerComment *string              `json:"manager_comment,omitempty"`
	HRComment      *string              `json:"hr_comment,omitempty"`
	Attachment     *string              `json:"attachment,omitempty"`
	AuditTrail     []AuditEntryResponse `json:"audit_trail"`
	CreatedAt      string               `json:"created_at"`
}

type BulkFailure struct {
	LeaveID string `json:"leave_id"`
	Reason  string `json:"reason"`
}

type BulkApproveResult struct {
	Approved []string      `json:"approved"`
	Failed   []BulkFailure `json:"failed"`
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:             l.ID.String(),
		UserID:         l.UserID.String(),
		LeaveType:      l.LeaveType,
		StartDate:      l.StartDate.Format("2006-01-02"),
		EndDate:        l.EndDate.Format("2006-01-02"),
		TotalDays:      l.TotalDays,
		Reason:         l.Reason,
		Status:         l.Status,
		ManagerComment: l.ManagerComment,
		HRComment:      l.HRComment,
		Attachment:     l.Attachment,
		AuditTrail:     make([]AuditEntryResponse, 0, len(l.AuditTrail)),
		CreatedAt:      l.CreatedAt.Format(time.RFC3339),
	}
	if l.ManagerID != nil {
		v := l.ManagerID.String()
		resp.ManagerID = &v
	}
	for _, e := range l.AuditTrail {
		resp.AuditTrail = append(resp.AuditTrail, AuditEntryResponse{
			Action: e.Action,
			By:     e.By,
			At:     e.At.Format(time.RFC3339),
			Meta:   e.Meta,
		})
	}
	return resp
}

func mapToListResponse(leaves []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
