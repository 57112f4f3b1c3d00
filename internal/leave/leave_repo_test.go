package leave

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	assert.NoError(t, err)

	return NewRepository(gormDB), mock
}

func TestRepository_TransitionStatus(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()
	comment := "looks fine"

	t.Run("applies when the expected status still holds", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectExec(`UPDATE leave_requests`).
			WithArgs(StatusApproved, &comment, nil, sqlmock.AnyArg(), id, StatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		applied, err := repo.TransitionStatus(ctx, StatusTransition{
			ID:             id,
			ExpectedStatus: StatusPending,
			NewStatus:      StatusApproved,
			Entry:          newAuditEntry(TrailApproved, uuid.NewString(), nil),
			ManagerComment: &comment,
		})
		assert.NoError(t, err)
		assert.True(t, applied)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports false when the row moved on", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectExec(`UPDATE leave_requests`).
			WithArgs(StatusApproved, nil, nil, sqlmock.AnyArg(), id, StatusPending).
			WillReturnResult(sqlmock.NewResult(0, 0))

		applied, err := repo.TransitionStatus(ctx, StatusTransition{
			ID:             id,
			ExpectedStatus: StatusPending,
			NewStatus:      StatusApproved,
			Entry:          newAuditEntry(TrailApproved, uuid.NewString(), nil),
		})
		assert.NoError(t, err)
		assert.False(t, applied)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_RevertTransition(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()

	repo, mock := newMockRepo(t)

	// The compensating write restores the old status and drops the last
	// trail entry in the same statement.
	mock.ExpectExec(`UPDATE leave_requests`).
		WithArgs(StatusPending, id, StatusApproved).
		WillReturnResult(sqlmock.NewResult(0, 1))

	reverted, err := repo.RevertTransition(ctx, id, StatusApproved, StatusPending)
	assert.NoError(t, err)
	assert.True(t, reverted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_HasOverlappingPeriod(t *testing.T) {
	ctx := context.Background()
	userID := uuid.NewString()
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

	t.Run("counts pending and approved rows only", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "leave_requests"`).
			WithArgs(userID, StatusPending, StatusApproved, start, end).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		overlap, err := repo.HasOverlappingPeriod(ctx, userID, start, end, nil)
		assert.NoError(t, err)
		assert.True(t, overlap)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("excludes the row being edited", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		excludeID := uuid.NewString()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "leave_requests"`).
			WithArgs(userID, StatusPending, StatusApproved, start, end, excludeID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		overlap, err := repo.HasOverlappingPeriod(ctx, userID, start, end, &excludeID)
		assert.NoError(t, err)
		assert.False(t, overlap)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_HasDuplicatePending(t *testing.T) {
	ctx := context.Background()
	userID := uuid.NewString()
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "leave_requests"`).
		WithArgs(userID, start, end, StatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	duplicate, err := repo.HasDuplicatePending(ctx, userID, start, end)
	assert.NoError(t, err)
	assert.True(t, duplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdatePending(t *testing.T) {
	ctx := context.Background()

	repo, mock := newMockRepo(t)

	l := pendingLeave(uuid.NewString(), "")
	mock.ExpectExec(`UPDATE leave_requests`).
		WithArgs(
			l.StartDate, l.EndDate, l.LeaveType, l.Reason, l.TotalDays, nil,
			sqlmock.AnyArg(), l.ID, l.UserID, StatusPending,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := repo.UpdatePending(ctx, l, newAuditEntry(TrailUpdated, l.UserID.String(), nil))
	assert.NoError(t, err)
	assert.True(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
