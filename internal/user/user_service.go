package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-leaveflow/internal/audit"
	"go-leaveflow/internal/domain"
	"go-leaveflow/internal/shared/apperror"
	"go-leaveflow/internal/shared/counter"
	usererrors "go-leaveflow/internal/user/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	employeeNumberCounter = "employee_number"
	teamCacheTTL          = 5 * time.Minute

	defaultBalanceCasual = 12
	defaultBalanceSick   = 10
	defaultBalanceEarned = 15
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actorID string, req CreateUserRequest) (UserResponse, error)
	GetAll(ctx context.Context, actorID, actorRole string, q ListUsersQuery) ([]UserResponse, int64, error)
	GetByID(ctx context.Context, actorID, actorRole, id string) (UserResponse, error)
	Update(ctx context.Context, actorID, actorRole, id string, req UpdateUserRequest) (UserResponse, error)
	SetBalance(ctx context.Context, actorID, id string, req SetBalanceRequest) (UserResponse, error)

	// Directory lookups consumed by the leave state machine.
	ManagerOf(ctx context.Context, userID string) (*string, error)
	TeamMemberIDs(ctx context.Context, managerID string) ([]string, error)
}

type service struct {
	repo     Repository
	counters counter.Repository
	rdb      *redis.Client
	recorder audit.Recorder
	group    singleflight.Group
	logger   *zap.Logger
}

func NewService(
	repo Repository,
	counters counter.Repository,
	rdb *redis.Client,
	recorder audit.Recorder,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{
		repo:     repo,
		counters: counters,
		rdb:      rdb,
		recorder: recorder,
		logger:   l,
	}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateUserRequest) (UserResponse, error) {
	s.logger.Debug("create user requested",
		zap.String("actor_id", actorID),
		zap.String("email", req.Email),
	)

	role := req.Role
	if role == "" {
		role = domain.RoleEmployee
	}
	if !domain.ValidRole(role) {
		return UserResponse{}, usererrors.ErrInvalidRole
	}

	managerID, err := s.resolveManager(ctx, req.ManagerID)
	if err != nil {
		return UserResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("create user hash failed", zap.Error(err))
		return UserResponse{}, err
	}

	seq, err := s.counters.GetNextValue(ctx, employeeNumberCounter)
	if err != nil {
		s.logger.Error("create user counter failed", zap.Error(err))
		return UserResponse{}, err
	}

	u := &User{
		ID:             uuid.New(),
		EmployeeNumber: fmt.Sprintf("EMP-%05d", seq),
		Name:           req.Name,
		Email:          req.Email,
		Password:       string(hashed),
		Role:           role,
		ManagerID:      managerID,
		BalanceCasual:  defaultBalanceCasual,
		BalanceSick:    defaultBalanceSick,
		BalanceEarned:  defaultBalanceEarned,
		IsActive:       true,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		s.logger.Warn("create user persist failed", zap.String("email", req.Email), zap.Error(err))
		return UserResponse{}, err
	}

	if managerID != nil {
		s.invalidateTeam(ctx, managerID.String())
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:     audit.ActionUserCreated,
		EntityType: audit.EntityUser,
		EntityID:   u.ID.String(),
		ActorID:    actorID,
		Changes: map[string]any{
			"email":           u.Email,
			"role":            u.Role,
			"employee_number": u.EmployeeNumber,
		},
	})
	s.logger.Info("create user success",
		zap.String("user_id", u.ID.String()),
		zap.String("employee_number", u.EmployeeNumber),
	)

	return mapToResponse(*u), nil
}

func (s *service) GetAll(ctx context.Context, actorID, actorRole string, q ListUsersQuery) ([]UserResponse, int64, error) {
	filter := ListFilter{
		Role:     q.Role,
		Search:   q.Search,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	switch actorRole {
	case domain.RoleHR:
	case domain.RoleManager:
		// Managers only see their direct reports.
		filter.ManagerID = actorID
	default:
		return nil, 0, apperror.ErrForbidden
	}

	users, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return nil, 0, err
	}
	return mapToListResponse(users), total, nil
}

func (s *service) GetByID(ctx context.Context, actorID, actorRole, id string) (UserResponse, error) {
	u, err := s.findByID(ctx, id)
	if err != nil {
		return UserResponse{}, err
	}

	allowed := actorRole == domain.RoleHR ||
		u.ID.String() == actorID ||
		(u.ManagerID != nil && u.ManagerID.String() == actorID)
	if !allowed {
		return UserResponse{}, apperror.ErrForbidden
	}

	return mapToResponse(*u), nil
}

func (s *service) Update(ctx context.Context, actorID, actorRole, id string, req UpdateUserRequest) (UserResponse, error) {
	s.logger.Debug("update user requested",
		zap.String("actor_id", actorID),
		zap.String("user_id", id),
	)

	if actorRole != domain.RoleHR {
		// Non-HR callers may rename their own profile, nothing else.
		if actorID != id {
			return UserResponse{}, apperror.ErrForbidden
		}
		if req.Role != nil || req.ManagerID != nil || req.IsActive != nil {
			return UserResponse{}, apperror.ErrForbidden
		}
	}

	u, err := s.findByID(ctx, id)
	if err != nil {
		return UserResponse{}, err
	}

	changes := map[string]any{}
	staleTeams := make([]string, 0, 2)

	if req.Name != nil {
		u.Name = *req.Name
		changes["name"] = *req.Name
	}
	if req.Role != nil {
		if !domain.ValidRole(*req.Role) {
			return UserResponse{}, usererrors.ErrInvalidRole
		}
		u.Role = *req.Role
		changes["role"] = *req.Role
	}
	if req.ManagerID != nil {
		if u.ManagerID != nil {
			staleTeams = append(staleTeams, u.ManagerID.String())
		}
		managerID, err := s.resolveManager(ctx, req.ManagerID)
		if err != nil {
			return UserResponse{}, err
		}
		u.ManagerID = managerID
		if managerID != nil {
			staleTeams = append(staleTeams, managerID.String())
			changes["manager_id"] = managerID.String()
		}
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
		changes["is_active"] = *req.IsActive
	}

	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.Error("update user persist failed", zap.String("user_id", id), zap.Error(err))
		return UserResponse{}, err
	}

	for _, managerID := range staleTeams {
		s.invalidateTeam(ctx, managerID)
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:     audit.ActionUserUpdated,
		EntityType: audit.EntityUser,
		EntityID:   id,
		ActorID:    actorID,
		Changes:    changes,
	})
	s.logger.Info("update user success", zap.String("user_id", id))

	return mapToResponse(*u), nil
}

func (s *service) SetBalance(ctx context.Context, actorID, id string, req SetBalanceRequest) (UserResponse, error) {
	s.logger.Debug("set balance requested",
		zap.String("actor_id", actorID),
		zap.String("user_id", id),
		zap.String("leave_type", req.LeaveType),
		zap.Float64("balance", req.Balance),
	)

	if req.Balance < 0 {
		return UserResponse{}, usererrors.ErrNegativeBalance
	}

	var column string
	switch req.LeaveType {
	case domain.LeaveCasual:
		column = "balance_casual"
	case domain.LeaveSick:
		column = "balance_sick"
	case domain.LeaveEarned:
		column = "balance_earned"
	case domain.LeaveUnpaid:
		return UserResponse{}, usererrors.ErrUnpaidBalance
	default:
		return UserResponse{}, usererrors.ErrInvalidLeaveType
	}

	u, err := s.findByID(ctx, id)
	if err != nil {
		return UserResponse{}, err
	}
	old := balanceOf(u, req.LeaveType)

	if err := s.repo.SetBalance(ctx, id, column, req.Balance); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, usererrors.ErrUserNotFound
		}
		s.logger.Error("set balance persist failed", zap.String("user_id", id), zap.Error(err))
		return UserResponse{}, err
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:     audit.ActionBalanceUpdated,
		EntityType: audit.EntityUser,
		EntityID:   id,
		ActorID:    actorID,
		Changes: map[string]any{
			"leave_type":  req.LeaveType,
			"old_balance": old,
			"new_balance": req.Balance,
		},
	})
	s.logger.Info("set balance success",
		zap.String("user_id", id),
		zap.String("leave_type", req.LeaveType),
		zap.Float64("old_balance", old),
		zap.Float64("new_balance", req.Balance),
	)

	return s.GetByID(ctx, actorID, domain.RoleHR, id)
}

func (s *service) ManagerOf(ctx context.Context, userID string) (*string, error) {
	u, err := s.findByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.ManagerID == nil {
		return nil, nil
	}
	managerID := u.ManagerID.String()
	return &managerID, nil
}

// TeamMemberIDs is hit on every manager-scoped list, so it is cached in
// redis and collapsed through singleflight under concurrent misses.
func (s *service) TeamMemberIDs(ctx context.Context, managerID string) ([]string, error) {
	cacheKey := teamCacheKey(managerID)

	if s.rdb != nil {
		if val, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var ids []string
			if json.Unmarshal([]byte(val), &ids) == nil {
				return ids, nil
			}
		}
	}

	v, err, _ := s.group.Do(cacheKey, func() (any, error) {
		ids, err := s.repo.TeamMemberIDs(ctx, managerID)
		if err != nil {
			return nil, err
		}
		if s.rdb != nil {
			if payload, err := json.Marshal(ids); err == nil {
				s.rdb.Set(ctx, cacheKey, payload, teamCacheTTL)
			}
		}
		return ids, nil
	})
	if err != nil {
		s.logger.Error("team lookup failed", zap.String("manager_id", managerID), zap.Error(err))
		return nil, err
	}

	return v.([]string), nil
}

func (s *service) resolveManager(ctx context.Context, managerID *string) (*uuid.UUID, error) {
	if managerID == nil || *managerID == "" {
		return nil, nil
	}

	m, err := s.repo.FindByID(ctx, *managerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usererrors.ErrManagerNotFound
		}
		return nil, err
	}
	if m.Role != domain.RoleManager && m.Role != domain.RoleHR {
		return nil, usererrors.ErrManagerRole
	}

	id := m.ID
	return &id, nil
}

func (s *service) invalidateTeam(ctx context.Context, managerID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, teamCacheKey(managerID)).Err(); err != nil {
		s.logger.Warn("team cache invalidation failed",
			zap.String("manager_id", managerID), zap.Error(err))
	}
}

func (s *service) findByID(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, usererrors.ErrInvalidUserID
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usererrors.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func balanceOf(u *User, leaveType string) float64 {
	switch leaveType {
	case domain.LeaveCasual:
		return u.BalanceCasual
	case domain.LeaveSick:
		return u.BalanceSick
	case domain.LeaveEarned:
		return u.BalanceEarned
	default:
		return 0
	}
}

func teamCacheKey(managerID string) string {
	return "team:" + managerID
}
