package audit

import (
	"context"
	"time"

	"go-leaveflow/internal/domain"
	"go-leaveflow/internal/shared/apperror"

	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, actorRole string, q ListAuditQuery) ([]AuditLogResponse, int64, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("audit.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) List(ctx context.Context, actorRole string, q ListAuditQuery) ([]AuditLogResponse, int64, error) {
	if actorRole != domain.RoleHR {
		return nil, 0, apperror.ErrForbidden
	}

	f := ListFilter{
		ActorID:    q.ActorID,
		EntityType: q.EntityType,
		EntityID:   q.EntityID,
		Action:     q.Action,
		Page:       q.Page,
		PageSize:   q.PageSize,
	}
	if q.From != "" {
		from, err := time.Parse("2006-01-02", q.From)
		if err != nil {
			return nil, 0, apperror.InvalidField("from")
		}
		f.From = &from
	}
	if q.To != "" {
		to, err := time.Parse("2006-01-02", q.To)
		if err != nil {
			return nil, 0, apperror.InvalidField("to")
		}
		// Inclusive day bound.
		to = to.Add(24*time.Hour - time.Nanosecond)
		f.To = &to
	}

	logs, total, err := s.repo.List(ctx, f)
	if err != nil {
		s.logger.Error("list audit logs failed", zap.Error(err))
		return nil, 0, err
	}

	return mapToListResponse(logs), total, nil
}
