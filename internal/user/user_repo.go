package user

import (
	"context"
	"errors"

	usererrors "go-leaveflow/internal/user/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ListFilter narrows FindAll; zero values mean "no filter".
type ListFilter struct {
	Role      string
	Search    string
	ManagerID string
	Page      int
	PageSize  int
}

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context, f ListFilter) ([]User, int64, error)
	TeamMemberIDs(ctx context.Context, managerID string) ([]string, error)
	Update(ctx context.Context, u *User) error
	SetBalance(ctx context.Context, id, column string, value float64) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindAll(ctx context.Context, f ListFilter) ([]User, int64, error) {
	q := r.db.WithContext(ctx).Model(&User{})

	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where("name ILIKE ? OR email ILIKE ? OR employee_number ILIKE ?", pattern, pattern, pattern)
	}
	if f.ManagerID != "" {
		q = q.Where("manager_id = ?", f.ManagerID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	pageSize := f.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var users []User
	err := q.Order("employee_number ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *repository) TeamMemberIDs(ctx context.Context, managerID string) ([]string, error) {
	// Non-nil even for zero rows: callers treat a nil id set as "no
	// restriction", while an empty team must match nothing.
	ids := make([]string, 0, 8)
	err := r.db.WithContext(ctx).
		Model(&User{}).
		Where("manager_id = ?", managerID).
		Pluck("id::text", &ids).Error
	return ids, err
}

func (r *repository) Update(ctx context.Context, u *User) error {
	if err := r.db.WithContext(ctx).Save(u).Error; err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (r *repository) SetBalance(ctx context.Context, id, column string, value float64) error {
	res := r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// mapUniqueViolation turns the postgres duplicate-key error into the domain
// conflict it represents.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "idx_users_employee_number":
			return usererrors.ErrEmployeeNumberTaken
		default:
			return usererrors.ErrEmailTaken
		}
	}
	return err
}
