package ledger_test

import (
	"context"
	"regexp"
	"testing"

	"go-leaveflow/internal/domain"
	"go-leaveflow/internal/ledger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupLedgerTest(t *testing.T) (ledger.Ledger, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	assert.NoError(t, err)

	return ledger.NewLedger(gdb), mock, func() { db.Close() }
}

func TestLedger_Check(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()

	t.Run("sufficient", func(t *testing.T) {
		l, mock, cleanup := setupLedgerTest(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT balance_casual FROM users`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"balance_casual"}).AddRow(12.0))

		b, err := l.Check(ctx, userID, domain.LeaveCasual, 3)

		assert.NoError(t, err)
		assert.True(t, b.Sufficient)
		assert.Equal(t, 12.0, b.Available)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insufficient", func(t *testing.T) {
		l, mock, cleanup := setupLedgerTest(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT balance_casual FROM users`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"balance_casual"}).AddRow(2.0))

		b, err := l.Check(ctx, userID, domain.LeaveCasual, 5)

		assert.NoError(t, err)
		assert.False(t, b.Sufficient)
		assert.Equal(t, 2.0, b.Available)
	})

	t.Run("unpaid always sufficient without query", func(t *testing.T) {
		l, mock, cleanup := setupLedgerTest(t)
		defer cleanup()

		b, err := l.Check(ctx, userID, domain.LeaveUnpaid, 30)

		assert.NoError(t, err)
		assert.True(t, b.Sufficient)
		assert.True(t, b.Unlimited)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative unknown type", func(t *testing.T) {
		l, _, cleanup := setupLedgerTest(t)
		defer cleanup()

		_, err := l.Check(ctx, userID, "SABBATICAL", 1)

		assert.Error(t, err)
	})
}

func TestLedger_Debit(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()

	query := regexp.QuoteMeta(`UPDATE users SET balance_casual = balance_casual - $1, updated_at = now() WHERE id = $2 AND balance_casual >= $3 AND deleted_at IS NULL`)

	t.Run("applies when balance covers days", func(t *testing.T) {
		l, mock, cleanup := setupLedgerTest(t)
		defer cleanup()

		mock.ExpectExec(query).
			WithArgs(3.0, userID, 3.0).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := l.Debit(ctx, userID, domain.LeaveCasual, 3)

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("refused when condition fails at write time", func(t *testing.T) {
		l, mock, cleanup := setupLedgerTest(t)
		defer cleanup()

		mock.ExpectExec(query).
			WithArgs(5.0, userID, 5.0).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := l.Debit(ctx, userID, domain.LeaveCasual, 5)

		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unpaid is a no-op", func(t *testing.T) {
		l, mock, cleanup := setupLedgerTest(t)
		defer cleanup()

		ok, err := l.Debit(ctx, userID, domain.LeaveUnpaid, 5)

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedger_Credit(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()

	query := regexp.QuoteMeta(`UPDATE users SET balance_earned = balance_earned + $1, updated_at = now() WHERE id = $2 AND deleted_at IS NULL`)

	t.Run("increments unconditionally", func(t *testing.T) {
		l, mock, cleanup := setupLedgerTest(t)
		defer cleanup()

		mock.ExpectExec(query).
			WithArgs(3.0, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := l.Credit(ctx, userID, domain.LeaveEarned, 3)

		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing user reported via false", func(t *testing.T) {
		l, mock, cleanup := setupLedgerTest(t)
		defer cleanup()

		mock.ExpectExec(query).
			WithArgs(3.0, userID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := l.Credit(ctx, userID, domain.LeaveEarned, 3)

		assert.NoError(t, err)
		assert.False(t, ok)
	})
}
