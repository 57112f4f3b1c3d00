package leave

import (
	"context"
	"errors"
	"time"

	"go-leaveflow/internal/audit"
	"go-leaveflow/internal/domain"
	leaveerrors "go-leaveflow/internal/leave/errors"
	"go-leaveflow/internal/ledger"
	"go-leaveflow/internal/policy"
	"go-leaveflow/internal/shared/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Actor is the authenticated principal acting on a request.
type Actor struct {
	ID   string
	Role string
}

// Directory answers org-structure questions the state machine needs: the
// requester's current manager at creation time and a manager's team for
// list scoping.
type Directory interface {
	ManagerOf(ctx context.Context, userID string) (*string, error)
	TeamMemberIDs(ctx context.Context, managerID string) ([]string, error)
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor Actor, req CreateLeaveRequest) (LeaveResponse, error)
	List(ctx context.Context, actor Actor, q ListQuery) ([]LeaveResponse, int64, error)
	GetByID(ctx context.Context, actor Actor, id string) (LeaveResponse, error)
	Update(ctx context.Context, actor Actor, id string, req UpdateLeaveRequest) (LeaveResponse, error)
	Cancel(ctx context.Context, actor Actor, id string) (LeaveResponse, error)
	Approve(ctx context.Context, actor Actor, id, comment string) (LeaveResponse, error)
	Reject(ctx context.Context, actor Actor, id, comment string) (LeaveResponse, error)
	Override(ctx context.Context, actor Actor, id, newStatus, comment string) (LeaveResponse, error)
	BulkApprove(ctx context.Context, actor Actor, ids []string, comment string) (BulkApproveResult, error)
}

type service struct {
	repo      Repository
	ledger    ledger.Ledger
	directory Directory
	policies  policy.Reader
	recorder  audit.Recorder
	logger    *zap.Logger
}

func NewService(
	repo Repository,
	ldg ledger.Ledger,
	directory Directory,
	policies policy.Reader,
	recorder audit.Recorder,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		repo:      repo,
		ledger:    ldg,
		directory: directory,
		policies:  policies,
		recorder:  recorder,
		logger:    l,
	}
}

func (s *service) Create(ctx context.Context, actor Actor, req CreateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("create leave requested",
		zap.String("actor_id", actor.ID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	userID, err := uuid.Parse(actor.ID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	if !domain.ValidLeaveType(req.LeaveType) {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveType
	}
	if len(req.Reason) > 500 {
		return LeaveResponse{}, leaveerrors.ErrReasonTooLong
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	if startDate.After(endDate) {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateRange
	}

	rule := s.policyRule(ctx, req.LeaveType)
	if rule.RequiresDocument && (req.Attachment == nil || *req.Attachment == "") {
		return LeaveResponse{}, leaveerrors.ErrAttachmentRequired
	}

	totalDays, err := s.chargedDays(startDate, endDate, req.HalfDay, rule.BusinessDaysOnly)
	if err != nil {
		return LeaveResponse{}, err
	}

	overlap, err := s.repo.HasOverlappingPeriod(ctx, actor.ID, startDate, endDate, nil)
	if err != nil {
		s.logger.Error("create leave overlap check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if overlap {
		s.logger.Warn("create leave overlap detected",
			zap.String("actor_id", actor.ID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	if req.LeaveType != domain.LeaveUnpaid {
		bal, err := s.ledger.Check(ctx, actor.ID, req.LeaveType, totalDays)
		if err != nil {
			s.logger.Error("create leave balance check failed", zap.Error(err))
			return LeaveResponse{}, mapLedgerError(err)
		}
		if !bal.Sufficient {
			return LeaveResponse{}, leaveerrors.InsufficientBalance(req.LeaveType, bal.Available, totalDays)
		}
	}

	duplicate, err := s.repo.HasDuplicatePending(ctx, actor.ID, startDate, endDate)
	if err != nil {
		s.logger.Error("create leave duplicate check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if duplicate {
		return LeaveResponse{}, leaveerrors.ErrDuplicatePending
	}

	managerID, err := s.directory.ManagerOf(ctx, actor.ID)
	if err != nil {
		s.logger.Error("create leave manager lookup failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	l := &LeaveRequest{
		ID:         uuid.New(),
		UserID:     userID,
		LeaveType:  req.LeaveType,
		StartDate:  startDate,
		EndDate:    endDate,
		TotalDays:  totalDays,
		Reason:     req.Reason,
		Status:     StatusPending,
		Attachment: req.Attachment,
		AuditTrail: AuditTrail{newAuditEntry(TrailCreated, actor.ID, map[string]any{
			"start_date": req.StartDate,
			"end_date":   req.EndDate,
			"leave_type": req.LeaveType,
			"total_days": totalDays,
		})},
	}
	if managerID != nil {
		mid, err := uuid.Parse(*managerID)
		if err == nil {
			l.ManagerID = &mid
		}
	}

	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.record(ctx, audit.ActionLeaveCreated, l.ID.String(), actor.ID, map[string]any{
		"start_date": req.StartDate,
		"end_date":   req.EndDate,
		"leave_type": req.LeaveType,
		"total_days": totalDays,
	})
	s.logger.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("actor_id", actor.ID),
		zap.Float64("total_days", totalDays),
	)

	return mapToResponse(*l), nil
}

func (s *service) List(ctx context.Context, actor Actor, q ListQuery) ([]LeaveResponse, int64, error) {
	f := ListFilter{
		Status:   q.Status,
		Type:     q.Type,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if q.From != "" {
		from, err := parseDate(q.From)
		if err != nil {
			return nil, 0, err
		}
		f.From = &from
	}
	if q.To != "" {
		to, err := parseDate(q.To)
		if err != nil {
			return nil, 0, err
		}
		f.To = &to
	}

	switch actor.Role {
	case domain.RoleEmployee:
		f.UserIDs = []string{actor.ID}
	case domain.RoleManager:
		teamIDs, err := s.directory.TeamMemberIDs(ctx, actor.ID)
		if err != nil {
			s.logger.Error("list leaves team lookup failed", zap.Error(err))
			return nil, 0, err
		}
		if teamIDs == nil {
			// A nil id set means "no restriction" to the repo; a manager
			// with an empty team must match nothing instead.
			teamIDs = []string{}
		}
		if q.UserID != "" {
			if !contains(teamIDs, q.UserID) {
				return nil, 0, apperror.ErrForbidden
			}
			f.UserIDs = []string{q.UserID}
		} else {
			f.UserIDs = teamIDs
		}
	case domain.RoleHR:
		if q.UserID != "" {
			f.UserIDs = []string{q.UserID}
		}
	default:
		return nil, 0, apperror.ErrForbidden
	}

	leaves, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return mapToListResponse(leaves), total, nil
}

func (s *service) GetByID(ctx context.Context, actor Actor, id string) (LeaveResponse, error) {
	l, err := s.findByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !canAccess(actor, l) {
		return LeaveResponse{}, apperror.ErrForbidden
	}
	return mapToResponse(*l), nil
}

func (s *service) Update(ctx context.Context, actor Actor, id string, req UpdateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("update leave requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID),
	)

	l, err := s.findByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if l.UserID.String() != actor.ID {
		return LeaveResponse{}, apperror.ErrForbidden
	}
	if l.Status != StatusPending {
		return LeaveResponse{}, leaveerrors.ErrNotEditable
	}

	datesChanged := req.StartDate != nil || req.EndDate != nil || req.HalfDay != nil
	typeChanged := req.LeaveType != nil && *req.LeaveType != l.LeaveType

	changes := map[string]any{}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			return LeaveResponse{}, err
		}
		l.StartDate = start
		changes["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		end, err := parseDate(*req.EndDate)
		if err != nil {
			return LeaveResponse{}, err
		}
		l.EndDate = end
		changes["end_date"] = *req.EndDate
	}
	if l.StartDate.After(l.EndDate) {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateRange
	}
	if req.LeaveType != nil {
		if !domain.ValidLeaveType(*req.LeaveType) {
			return LeaveResponse{}, leaveerrors.ErrInvalidLeaveType
		}
		l.LeaveType = *req.LeaveType
		changes["leave_type"] = *req.LeaveType
	}
	if req.Reason != nil {
		if len(*req.Reason) > 500 {
			return LeaveResponse{}, leaveerrors.ErrReasonTooLong
		}
		l.Reason = *req.Reason
		changes["reason"] = *req.Reason
	}
	if req.Attachment != nil {
		l.Attachment = req.Attachment
		changes["attachment"] = *req.Attachment
	}

	rule := s.policyRule(ctx, l.LeaveType)
	if typeChanged && rule.RequiresDocument && (l.Attachment == nil || *l.Attachment == "") {
		return LeaveResponse{}, leaveerrors.ErrAttachmentRequired
	}

	if datesChanged || typeChanged {
		halfDay := l.TotalDays == 0.5
		if req.HalfDay != nil {
			halfDay = *req.HalfDay
		}
		totalDays, err := s.chargedDays(l.StartDate, l.EndDate, halfDay, rule.BusinessDaysOnly)
		if err != nil {
			return LeaveResponse{}, err
		}
		l.TotalDays = totalDays
		changes["total_days"] = totalDays
	}

	if datesChanged {
		overlap, err := s.repo.HasOverlappingPeriod(ctx, actor.ID, l.StartDate, l.EndDate, &id)
		if err != nil {
			s.logger.Error("update leave overlap check failed", zap.Error(err))
			return LeaveResponse{}, err
		}
		if overlap {
			return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
		}
	}

	if (datesChanged || typeChanged) && l.LeaveType != domain.LeaveUnpaid {
		bal, err := s.ledger.Check(ctx, actor.ID, l.LeaveType, l.TotalDays)
		if err != nil {
			s.logger.Error("update leave balance check failed", zap.Error(err))
			return LeaveResponse{}, mapLedgerError(err)
		}
		if !bal.Sufficient {
			return LeaveResponse{}, leaveerrors.InsufficientBalance(l.LeaveType, bal.Available, l.TotalDays)
		}
	}

	applied, err := s.repo.UpdatePending(ctx, l, newAuditEntry(TrailUpdated, actor.ID, changes))
	if err != nil {
		s.logger.Error("update leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	if !applied {
		// The row left PENDING between our read and the conditional write.
		return LeaveResponse{}, leaveerrors.ErrNotEditable
	}

	s.record(ctx, audit.ActionLeaveUpdated, id, actor.ID, changes)
	s.logger.Info("update leave success", zap.String("leave_id", id))

	return s.reload(ctx, id)
}

func (s *service) Cancel(ctx context.Context, actor Actor, id string) (LeaveResponse, error) {
	s.logger.Debug("cancel leave requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID),
	)

	l, err := s.findByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if l.UserID.String() != actor.ID {
		return LeaveResponse{}, apperror.ErrForbidden
	}
	if l.Status != StatusPending {
		return LeaveResponse{}, leaveerrors.ErrNotCancellable
	}

	applied, err := s.repo.TransitionStatus(ctx, StatusTransition{
		ID:             id,
		ExpectedStatus: StatusPending,
		NewStatus:      StatusCanceled,
		Entry:          newAuditEntry(TrailCancelled, actor.ID, nil),
	})
	if err != nil {
		s.logger.Error("cancel leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	if !applied {
		return LeaveResponse{}, leaveerrors.ErrNotCancellable
	}

	// Nothing is ever debited while pending, so no balance effect here.
	s.record(ctx, audit.ActionLeaveCancelled, id, actor.ID, nil)
	s.logger.Info("cancel leave success", zap.String("leave_id", id))

	return s.reload(ctx, id)
}

func (s *service) Approve(ctx context.Context, actor Actor, id, comment string) (LeaveResponse, error) {
	s.logger.Debug("approve leave requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID),
	)

	if len(comment) > 500 {
		return LeaveResponse{}, leaveerrors.ErrCommentTooLong
	}

	l, err := s.findByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if l.Status != StatusPending {
		return LeaveResponse{}, leaveerrors.AlreadyProcessed(l.Status)
	}
	if err := canDecide(actor, l); err != nil {
		return LeaveResponse{}, err
	}

	// Re-check overlap against the latest state; the requester may have
	// acquired another approved leave since submission. No write has
	// happened yet, so a failure here leaves no trail entry behind.
	overlap, err := s.repo.HasOverlappingPeriod(ctx, l.UserID.String(), l.StartDate, l.EndDate, &id)
	if err != nil {
		s.logger.Error("approve leave overlap check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if overlap {
		s.logger.Warn("approve leave overlap detected", zap.String("leave_id", id))
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	if l.LeaveType != domain.LeaveUnpaid {
		bal, err := s.ledger.Check(ctx, l.UserID.String(), l.LeaveType, l.TotalDays)
		if err != nil {
			s.logger.Error("approve leave balance check failed", zap.Error(err))
			return LeaveResponse{}, mapLedgerError(err)
		}
		if !bal.Sufficient {
			return LeaveResponse{}, leaveerrors.InsufficientBalance(l.LeaveType, bal.Available, l.TotalDays)
		}
	}

	t := StatusTransition{
		ID:             id,
		ExpectedStatus: StatusPending,
		NewStatus:      StatusApproved,
		Entry:          newAuditEntry(TrailApproved, actor.ID, map[string]any{"comment": comment}),
	}
	if actor.Role == domain.RoleHR {
		t.HRComment = &comment
	} else {
		t.ManagerComment = &comment
	}

	applied, err := s.repo.TransitionStatus(ctx, t)
	if err != nil {
		s.logger.Error("approve leave transition failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	if !applied {
		// Someone else decided it between our read and the compare-and-set.
		s.logger.Warn("approve leave lost status race", zap.String("leave_id", id))
		return LeaveResponse{}, leaveerrors.ErrAlreadyProcessed
	}

	if l.LeaveType != domain.LeaveUnpaid {
		debited, err := s.ledger.Debit(ctx, l.UserID.String(), l.LeaveType, l.TotalDays)
		if err != nil {
			s.rollbackApproval(ctx, id)
			s.logger.Error("approve leave debit failed", zap.String("leave_id", id), zap.Error(err))
			return LeaveResponse{}, err
		}
		if !debited {
			// Balance fell below the requirement between check and debit;
			// undo the status flip before reporting failure so the caller
			// never observes approved-but-not-debited.
			s.rollbackApproval(ctx, id)
			available := 0.0
			if bal, err := s.ledger.Check(ctx, l.UserID.String(), l.LeaveType, l.TotalDays); err == nil {
				available = bal.Available
			}
			return LeaveResponse{}, leaveerrors.InsufficientBalance(l.LeaveType, available, l.TotalDays)
		}
	}

	s.record(ctx, audit.ActionLeaveApproved, id, actor.ID, map[string]any{
		"status":  StatusApproved,
		"comment": comment,
	})
	s.logger.Info("approve leave success", zap.String("leave_id", id))

	return s.reload(ctx, id)
}

func (s *service) Reject(ctx context.Context, actor Actor, id, comment string) (LeaveResponse, error) {
	s.logger.Debug("reject leave requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID),
	)

	if len(comment) > 500 {
		return LeaveResponse{}, leaveerrors.ErrCommentTooLong
	}

	l, err := s.findByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if l.Status != StatusPending {
		return LeaveResponse{}, leaveerrors.AlreadyProcessed(l.Status)
	}
	if err := canDecide(actor, l); err != nil {
		return LeaveResponse{}, err
	}

	t := StatusTransition{
		ID:             id,
		ExpectedStatus: StatusPending,
		NewStatus:      StatusRejected,
		Entry:          newAuditEntry(TrailRejected, actor.ID, map[string]any{"comment": comment}),
	}
	if actor.Role == domain.RoleHR {
		t.HRComment = &comment
	} else {
		t.ManagerComment = &comment
	}

	applied, err := s.repo.TransitionStatus(ctx, t)
	if err != nil {
		s.logger.Error("reject leave transition failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	if !applied {
		return LeaveResponse{}, leaveerrors.ErrAlreadyProcessed
	}

	// Nothing was debited for a pending request, so no balance interaction.
	s.record(ctx, audit.ActionLeaveRejected, id, actor.ID, map[string]any{
		"status":  StatusRejected,
		"comment": comment,
	})
	s.logger.Info("reject leave success", zap.String("leave_id", id))

	return s.reload(ctx, id)
}

func (s *service) Override(ctx context.Context, actor Actor, id, newStatus, comment string) (LeaveResponse, error) {
	s.logger.Debug("override leave requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID),
		zap.String("new_status", newStatus),
	)

	if actor.Role != domain.RoleHR {
		return LeaveResponse{}, apperror.ErrForbidden
	}
	if newStatus != StatusApproved && newStatus != StatusRejected {
		return LeaveResponse{}, leaveerrors.ErrInvalidOverrideStatus
	}
	if len(comment) > 500 {
		return LeaveResponse{}, leaveerrors.ErrCommentTooLong
	}

	l, err := s.findByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	previous := l.Status
	if previous != StatusApproved && previous != StatusRejected {
		return LeaveResponse{}, leaveerrors.ErrNotOverridable
	}
	if previous == newStatus {
		return LeaveResponse{}, leaveerrors.AlreadyProcessed(previous)
	}

	entry := newAuditEntry(TrailOverridden, actor.ID, map[string]any{
		"previous_status": previous,
		"new_status":      newStatus,
		"comment":         comment,
	})

	switch {
	case previous == StatusApproved && newStatus == StatusRejected:
		// Credit back first, then flip status; compensate the credit if the
		// status moved underneath us.
		if l.LeaveType != domain.LeaveUnpaid {
			credited, err := s.ledger.Credit(ctx, l.UserID.String(), l.LeaveType, l.TotalDays)
			if err != nil {
				s.logger.Error("override leave credit failed", zap.String("leave_id", id), zap.Error(err))
				return LeaveResponse{}, err
			}
			if !credited {
				s.logger.Error("override leave credit did not apply",
					zap.String("leave_id", id),
					zap.String("user_id", l.UserID.String()),
				)
			}
		}
		applied, err := s.repo.TransitionStatus(ctx, StatusTransition{
			ID:             id,
			ExpectedStatus: StatusApproved,
			NewStatus:      StatusRejected,
			Entry:          entry,
			HRComment:      &comment,
		})
		if err != nil {
			s.logger.Error("override leave transition failed", zap.String("leave_id", id), zap.Error(err))
			return LeaveResponse{}, err
		}
		if !applied {
			if l.LeaveType != domain.LeaveUnpaid {
				if _, derr := s.ledger.Debit(ctx, l.UserID.String(), l.LeaveType, l.TotalDays); derr != nil {
					s.logger.Error("override leave credit compensation failed",
						zap.String("leave_id", id), zap.Error(derr))
				}
			}
			return LeaveResponse{}, leaveerrors.ErrAlreadyProcessed
		}

	case newStatus == StatusApproved:
		if l.LeaveType != domain.LeaveUnpaid {
			bal, err := s.ledger.Check(ctx, l.UserID.String(), l.LeaveType, l.TotalDays)
			if err != nil {
				s.logger.Error("override leave balance check failed", zap.Error(err))
				return LeaveResponse{}, mapLedgerError(err)
			}
			if !bal.Sufficient {
				return LeaveResponse{}, leaveerrors.InsufficientBalance(l.LeaveType, bal.Available, l.TotalDays)
			}
		}
		applied, err := s.repo.TransitionStatus(ctx, StatusTransition{
			ID:             id,
			ExpectedStatus: previous,
			NewStatus:      StatusApproved,
			Entry:          entry,
			HRComment:      &comment,
		})
		if err != nil {
			s.logger.Error("override leave transition failed", zap.String("leave_id", id), zap.Error(err))
			return LeaveResponse{}, err
		}
		if !applied {
			return LeaveResponse{}, leaveerrors.ErrAlreadyProcessed
		}
		if l.LeaveType != domain.LeaveUnpaid {
			debited, err := s.ledger.Debit(ctx, l.UserID.String(), l.LeaveType, l.TotalDays)
			if err != nil {
				s.revertTransition(ctx, id, StatusApproved, previous)
				s.logger.Error("override leave debit failed", zap.String("leave_id", id), zap.Error(err))
				return LeaveResponse{}, err
			}
			if !debited {
				s.revertTransition(ctx, id, StatusApproved, previous)
				available := 0.0
				if bal, err := s.ledger.Check(ctx, l.UserID.String(), l.LeaveType, l.TotalDays); err == nil {
					available = bal.Available
				}
				return LeaveResponse{}, leaveerrors.InsufficientBalance(l.LeaveType, available, l.TotalDays)
			}
		}
	}

	s.record(ctx, audit.ActionLeaveOverridden, id, actor.ID, map[string]any{
		"previous_status": previous,
		"new_status":      newStatus,
		"comment":         comment,
	})
	s.logger.Info("override leave success",
		zap.String("leave_id", id),
		zap.String("previous_status", previous),
		zap.String("new_status", newStatus),
	)

	return s.reload(ctx, id)
}

func (s *service) BulkApprove(ctx context.Context, actor Actor, ids []string, comment string) (BulkApproveResult, error) {
	s.logger.Debug("bulk approve requested",
		zap.String("actor_id", actor.ID),
		zap.Int("count", len(ids)),
	)

	result := BulkApproveResult{
		Approved: make([]string, 0, len(ids)),
		Failed:   make([]BulkFailure, 0),
	}

	// Each id runs the full approve sequence independently; one failure
	// never aborts the rest of the batch.
	for _, id := range ids {
		if _, err := s.Approve(ctx, actor, id, comment); err != nil {
			result.Failed = append(result.Failed, BulkFailure{LeaveID: id, Reason: failureReason(err)})
			continue
		}
		result.Approved = append(result.Approved, id)
	}

	s.logger.Info("bulk approve finished",
		zap.Int("approved", len(result.Approved)),
		zap.Int("failed", len(result.Failed)),
	)

	return result, nil
}

// canAccess is the single authorization predicate applied at every
// read entry point: owners see their own rows, managers see rows routed to
// them, HR sees everything.
func canAccess(actor Actor, l *LeaveRequest) bool {
	switch actor.Role {
	case domain.RoleHR:
		return true
	case domain.RoleManager:
		if l.UserID.String() == actor.ID {
			return true
		}
		return l.ManagerID != nil && l.ManagerID.String() == actor.ID
	default:
		return l.UserID.String() == actor.ID
	}
}

// canDecide gates approve/reject: HR always, managers only for requests
// routed to them. Authorization failures are distinct from business-rule
// failures.
func canDecide(actor Actor, l *LeaveRequest) error {
	switch actor.Role {
	case domain.RoleHR:
		return nil
	case domain.RoleManager:
		if l.ManagerID != nil && l.ManagerID.String() == actor.ID {
			return nil
		}
		return leaveerrors.ErrNotTeamMember
	default:
		return apperror.ErrForbidden
	}
}

func (s *service) chargedDays(start, end time.Time, halfDay, businessDaysOnly bool) (float64, error) {
	if halfDay {
		if !start.Equal(end) {
			return 0, leaveerrors.ErrHalfDayRange
		}
		return 0.5, nil
	}
	return ChargedDays(start, end, businessDaysOnly)
}

func (s *service) policyRule(ctx context.Context, leaveType string) policy.Rule {
	rule, err := s.policies.Rule(ctx, leaveType)
	if err != nil {
		// Policies are advisory config; fall back to calendar counting.
		s.logger.Warn("policy lookup failed, using defaults",
			zap.String("leave_type", leaveType), zap.Error(err))
		return policy.Rule{}
	}
	return rule
}

func (s *service) rollbackApproval(ctx context.Context, id string) {
	s.revertTransition(ctx, id, StatusApproved, StatusPending)
}

func (s *service) revertTransition(ctx context.Context, id, current, previous string) {
	reverted, err := s.repo.RevertTransition(ctx, id, current, previous)
	if err != nil {
		s.logger.Error("revert transition failed",
			zap.String("leave_id", id),
			zap.String("current_status", current),
			zap.String("previous_status", previous),
			zap.Error(err),
		)
		return
	}
	if !reverted {
		s.logger.Error("revert transition did not apply",
			zap.String("leave_id", id),
			zap.String("current_status", current),
		)
	}
}

func (s *service) findByID(ctx context.Context, id string) (*LeaveRequest, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		return nil, err
	}
	return l, nil
}

func (s *service) reload(ctx context.Context, id string) (LeaveResponse, error) {
	l, err := s.findByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) record(ctx context.Context, action, entityID, actorID string, changes map[string]any) {
	s.recorder.Record(ctx, audit.Entry{
		Action:     action,
		EntityType: audit.EntityLeaveRequest,
		EntityID:   entityID,
		ActorID:    actorID,
		Changes:    changes,
	})
}

func mapLedgerError(err error) error {
	if errors.Is(err, ledger.ErrUserNotFound) {
		return apperror.ErrNotFound
	}
	return err
}

func failureReason(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
