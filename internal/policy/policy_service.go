package policy

import (
	"context"
	"errors"
	"sort"

	"go-leaveflow/internal/audit"
	"go-leaveflow/internal/domain"
	"go-leaveflow/internal/shared/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Reader is what the leave state machine depends on. Lookups never fail on
// a missing row; built-in defaults cover every leave type.
type Reader interface {
	Rule(ctx context.Context, leaveType string) (Rule, error)
}

type Service interface {
	Reader
	List(ctx context.Context) ([]PolicyResponse, error)
	Get(ctx context.Context, leaveType string) (PolicyResponse, error)
	Update(ctx context.Context, actorID, leaveType string, req UpdatePolicyRequest) (PolicyResponse, error)
}

type service struct {
	repo     Repository
	recorder audit.Recorder
	logger   *zap.Logger
}

func NewService(repo Repository, recorder audit.Recorder, logger ...*zap.Logger) Service {
	l := zap.L().Named("policy.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("policy.service")
	}
	return &service{repo: repo, recorder: recorder, logger: l}
}

func (s *service) Rule(ctx context.Context, leaveType string) (Rule, error) {
	p, err := s.repo.FindByType(ctx, leaveType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return defaultRules[leaveType], nil
		}
		return Rule{}, err
	}
	return Rule{
		MaxDays:          p.MaxDays,
		CarryForward:     p.CarryForward,
		RequiresDocument: p.RequiresDocument,
		BusinessDaysOnly: p.BusinessDaysOnly,
	}, nil
}

func (s *service) List(ctx context.Context) ([]PolicyResponse, error) {
	stored, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("list policies failed", zap.Error(err))
		return nil, err
	}

	byType := make(map[string]LeavePolicy, len(stored))
	for _, p := range stored {
		byType[p.LeaveType] = p
	}

	// Every known type is reported even without a stored row.
	out := make([]PolicyResponse, 0, len(defaultRules))
	for leaveType, rule := range defaultRules {
		if p, ok := byType[leaveType]; ok {
			updatedAt := p.UpdatedAt
			out = append(out, mapToResponse(leaveType, Rule{
				MaxDays:          p.MaxDays,
				CarryForward:     p.CarryForward,
				RequiresDocument: p.RequiresDocument,
				BusinessDaysOnly: p.BusinessDaysOnly,
			}, &updatedAt))
			continue
		}
		out = append(out, mapToResponse(leaveType, rule, nil))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeaveType < out[j].LeaveType })

	return out, nil
}

func (s *service) Get(ctx context.Context, leaveType string) (PolicyResponse, error) {
	if !domain.ValidLeaveType(leaveType) {
		return PolicyResponse{}, apperror.InvalidField("leave_type")
	}

	p, err := s.repo.FindByType(ctx, leaveType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return mapToResponse(leaveType, defaultRules[leaveType], nil), nil
		}
		s.logger.Error("get policy failed", zap.String("leave_type", leaveType), zap.Error(err))
		return PolicyResponse{}, err
	}

	updatedAt := p.UpdatedAt
	return mapToResponse(leaveType, Rule{
		MaxDays:          p.MaxDays,
		CarryForward:     p.CarryForward,
		RequiresDocument: p.RequiresDocument,
		BusinessDaysOnly: p.BusinessDaysOnly,
	}, &updatedAt), nil
}

func (s *service) Update(ctx context.Context, actorID, leaveType string, req UpdatePolicyRequest) (PolicyResponse, error) {
	s.logger.Debug("update policy requested",
		zap.String("actor_id", actorID),
		zap.String("leave_type", leaveType),
	)

	if !domain.ValidLeaveType(leaveType) {
		return PolicyResponse{}, apperror.InvalidField("leave_type")
	}

	// Start from the effective rule so partial updates keep current values.
	current, err := s.Rule(ctx, leaveType)
	if err != nil {
		return PolicyResponse{}, err
	}

	changes := map[string]any{}
	if req.MaxDays != nil {
		current.MaxDays = *req.MaxDays
		changes["max_days"] = *req.MaxDays
	}
	if req.CarryForward != nil {
		current.CarryForward = *req.CarryForward
		changes["carry_forward"] = *req.CarryForward
	}
	if req.RequiresDocument != nil {
		current.RequiresDocument = *req.RequiresDocument
		changes["requires_document"] = *req.RequiresDocument
	}
	if req.BusinessDaysOnly != nil {
		current.BusinessDaysOnly = *req.BusinessDaysOnly
		changes["business_days_only"] = *req.BusinessDaysOnly
	}

	p := &LeavePolicy{
		ID:               uuid.New(),
		LeaveType:        leaveType,
		MaxDays:          current.MaxDays,
		CarryForward:     current.CarryForward,
		RequiresDocument: current.RequiresDocument,
		BusinessDaysOnly: current.BusinessDaysOnly,
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		s.logger.Error("update policy persist failed", zap.String("leave_type", leaveType), zap.Error(err))
		return PolicyResponse{}, err
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:     audit.ActionPolicyUpdated,
		EntityType: audit.EntityLeavePolicy,
		EntityID:   leaveType,
		ActorID:    actorID,
		Changes:    changes,
	})
	s.logger.Info("update policy success", zap.String("leave_type", leaveType))

	return s.Get(ctx, leaveType)
}
