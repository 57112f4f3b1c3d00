package audit

import "time"

type ListAuditQuery struct {
	ActorID    string `form:"actor_id"`
	EntityType string `form:"entity_type"`
	EntityID   string `form:"entity_id"`
	Action     string `form:"action"`
	From       string `form:"from"`
	To         string `form:"to"`
	Page       int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

type AuditLogResponse struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	ActorID    string         `json:"actor_id"`
	Changes    map[string]any `json:"changes,omitempty"`
	IPAddress  string         `json:"ip_address,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func mapToResponse(log AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:         log.ID.String(),
		Action:     log.Action,
		EntityType: log.EntityType,
		EntityID:   log.EntityID,
		ActorID:    log.ActorID,
		Changes:    log.Changes,
		IPAddress:  log.IPAddress,
		UserAgent:  log.UserAgent,
		CreatedAt:  log.CreatedAt,
	}
}

func mapToListResponse(logs []AuditLog) []AuditLogResponse {
	out := make([]AuditLogResponse, 0, len(logs))
	for _, log := range logs {
		out = append(out, mapToResponse(log))
	}
	return out
}
