package policy

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=policy_repo.go -destination=mock/policy_repo_mock.go -package=mock

type Repository interface {
	FindAll(ctx context.Context) ([]LeavePolicy, error)
	FindByType(ctx context.Context, leaveType string) (*LeavePolicy, error)
	Upsert(ctx context.Context, p *LeavePolicy) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindAll(ctx context.Context) ([]LeavePolicy, error) {
	var policies []LeavePolicy
	err := r.db.WithContext(ctx).
		Order("leave_type ASC").
		Find(&policies).Error
	return policies, err
}

func (r *repository) FindByType(ctx context.Context, leaveType string) (*LeavePolicy, error) {
	var p LeavePolicy
	err := r.db.WithContext(ctx).
		Where("leave_type = ?", leaveType).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Upsert(ctx context.Context, p *LeavePolicy) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "leave_type"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"max_days", "carry_forward", "requires_document", "business_days_only", "updated_at",
			}),
		}).
		Create(p).Error
}
