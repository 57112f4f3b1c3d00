package leave

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// StatusTransition describes a compare-and-set on the status column. The
// audit entry is appended to the jsonb trail inside the same UPDATE, so a
// transition and its trail record are a single atomic write.
type StatusTransition struct {
	ID             string
	ExpectedStatus string
	NewStatus      string
	Entry          AuditEntry
	ManagerComment *string
	HRComment      *string
}

// ListFilter scopes queries. A nil UserIDs means no ownership restriction
// (HR); an empty non-nil slice matches nothing.
type ListFilter struct {
	UserIDs  []string
	Status   string
	Type     string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, l *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	List(ctx context.Context, f ListFilter) ([]LeaveRequest, int64, error)
	HasOverlappingPeriod(ctx context.Context, userID string, startDate, endDate time.Time, excludeID *string) (bool, error)
	HasDuplicatePending(ctx context.Context, userID string, startDate, endDate time.Time) (bool, error)
	// UpdatePending persists an owner edit only while the row is still
	// PENDING; false reports the condition failed.
	UpdatePending(ctx context.Context, l *LeaveRequest, entry AuditEntry) (bool, error)
	// TransitionStatus applies the compare-and-set; false reports the
	// expected status no longer matched (lost race or already decided).
	TransitionStatus(ctx context.Context, t StatusTransition) (bool, error)
	// RevertTransition is the compensating write: restore a previous status
	// and drop the trail entry the failed transition appended.
	RevertTransition(ctx context.Context, id, currentStatus, previousStatus string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]LeaveRequest, int64, error) {
	q := r.db.WithContext(ctx).Model(&LeaveRequest{})

	if f.UserIDs != nil {
		q = q.Where("user_id IN ?", f.UserIDs)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("leave_type = ?", f.Type)
	}
	if f.From != nil {
		q = q.Where("start_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("end_date <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Page > 0 && f.PageSize > 0 {
		q = q.Offset((f.Page - 1) * f.PageSize).Limit(f.PageSize)
	}

	var leaves []LeaveRequest
	err := q.Order("created_at DESC").Find(&leaves).Error
	return leaves, total, err
}

func (r *repository) HasOverlappingPeriod(ctx context.Context, userID string, startDate, endDate time.Time, excludeID *string) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("user_id = ?", userID).
		Where("status IN ?", []string{StatusPending, StatusApproved}).
		Where("NOT (end_date < ? OR start_date > ?)", startDate, endDate)

	if excludeID != nil && *excludeID != "" {
		q = q.Where("id <> ?", *excludeID)
	}

	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *repository) HasDuplicatePending(ctx context.Context, userID string, startDate, endDate time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("user_id = ?", userID).
		Where("start_date = ?", startDate).
		Where("end_date = ?", endDate).
		Where("status = ?", StatusPending).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) UpdatePending(ctx context.Context, l *LeaveRequest, entry AuditEntry) (bool, error) {
	entryJSON, err := json.Marshal([]AuditEntry{entry})
	if err != nil {
		return false, err
	}

	res := r.db.WithContext(ctx).Exec(`
		UPDATE leave_requests
		SET start_date = ?,
		    end_date = ?,
		    leave_type = ?,
		    reason = ?,
		    total_days = ?,
		    attachment = ?,
		    audit_trail = audit_trail || ?::jsonb,
		    updated_at = now()
		WHERE id = ? AND user_id = ? AND status = ? AND deleted_at IS NULL`,
		l.StartDate, l.EndDate, l.LeaveType, l.Reason, l.TotalDays, l.Attachment,
		string(entryJSON), l.ID, l.UserID, StatusPending,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) TransitionStatus(ctx context.Context, t StatusTransition) (bool, error) {
	entryJSON, err := json.Marshal([]AuditEntry{t.Entry})
	if err != nil {
		return false, err
	}

	res := r.db.WithContext(ctx).Exec(`
		UPDATE leave_requests
		SET status = ?,
		    manager_comment = COALESCE(?, manager_comment),
		    hr_comment = COALESCE(?, hr_comment),
		    audit_trail = audit_trail || ?::jsonb,
		    updated_at = now()
		WHERE id = ? AND status = ? AND deleted_at IS NULL`,
		t.NewStatus, t.ManagerComment, t.HRComment, string(entryJSON),
		t.ID, t.ExpectedStatus,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) RevertTransition(ctx context.Context, id, currentStatus, previousStatus string) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE leave_requests
		SET status = ?,
		    audit_trail = audit_trail - (jsonb_array_length(audit_trail) - 1),
		    updated_at = now()
		WHERE id = ? AND status = ? AND deleted_at IS NULL`,
		previousStatus, id, currentStatus,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
