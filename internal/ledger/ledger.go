package ledger

import (
	"context"
	"errors"
	"fmt"

	"go-leaveflow/internal/domain"

	"gorm.io/gorm"
)

// Balance is the result of a sufficiency check. Unlimited is set for the
// UNPAID category, where Available carries no meaning.
type Balance struct {
	Sufficient bool
	Available  float64
	Unlimited  bool
}

// Ledger mutates per-category day balances on the users table. Debit and
// Credit are single conditional statements evaluated atomically by the
// store; callers must never read-modify-write balances in memory.
//
//go:generate mockgen -source=ledger.go -destination=mock/ledger_mock.go -package=mock
type Ledger interface {
	Check(ctx context.Context, userID, leaveType string, days float64) (Balance, error)
	// Debit decrements only if the current balance covers days. The bool
	// reports whether the conditional write applied; false means the balance
	// was insufficient at write time.
	Debit(ctx context.Context, userID, leaveType string, days float64) (bool, error)
	// Credit increments unconditionally. False means the user row was not found.
	Credit(ctx context.Context, userID, leaveType string, days float64) (bool, error)
}

var ErrUserNotFound = errors.New("ledger: user not found")

// balanceColumns whitelists the column per category. Never interpolate a
// category into SQL without going through this map.
var balanceColumns = map[string]string{
	domain.LeaveCasual: "balance_casual",
	domain.LeaveSick:   "balance_sick",
	domain.LeaveEarned: "balance_earned",
}

type gormLedger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) Ledger {
	return &gormLedger{db: db}
}

func (l *gormLedger) Check(ctx context.Context, userID, leaveType string, days float64) (Balance, error) {
	if leaveType == domain.LeaveUnpaid {
		return Balance{Sufficient: true, Unlimited: true}, nil
	}

	col, ok := balanceColumns[leaveType]
	if !ok {
		return Balance{}, fmt.Errorf("ledger: unknown leave type %q", leaveType)
	}

	var available float64
	res := l.db.WithContext(ctx).Raw(
		fmt.Sprintf(`SELECT %s FROM users WHERE id = ? AND deleted_at IS NULL`, col),
		userID,
	).Scan(&available)
	if res.Error != nil {
		return Balance{}, res.Error
	}
	if res.RowsAffected == 0 {
		return Balance{}, ErrUserNotFound
	}

	return Balance{Sufficient: available >= days, Available: available}, nil
}

func (l *gormLedger) Debit(ctx context.Context, userID, leaveType string, days float64) (bool, error) {
	if leaveType == domain.LeaveUnpaid {
		return true, nil
	}

	col, ok := balanceColumns[leaveType]
	if !ok {
		return false, fmt.Errorf("ledger: unknown leave type %q", leaveType)
	}

	// The WHERE clause re-validates sufficiency against the stored value, so a
	// stale earlier check can never drive the balance negative.
	res := l.db.WithContext(ctx).Exec(
		fmt.Sprintf(`UPDATE users SET %s = %s - ?, updated_at = now() WHERE id = ? AND %s >= ? AND deleted_at IS NULL`, col, col, col),
		days, userID, days,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (l *gormLedger) Credit(ctx context.Context, userID, leaveType string, days float64) (bool, error) {
	if leaveType == domain.LeaveUnpaid {
		return true, nil
	}

	col, ok := balanceColumns[leaveType]
	if !ok {
		return false, fmt.Errorf("ledger: unknown leave type %q", leaveType)
	}

	res := l.db.WithContext(ctx).Exec(
		fmt.Sprintf(`UPDATE users SET %s = %s + ?, updated_at = now() WHERE id = ? AND deleted_at IS NULL`, col, col),
		days, userID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
