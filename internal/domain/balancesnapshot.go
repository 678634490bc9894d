package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceSnapshot is the cached balance of one account at the start of a
// month, in the account's native currency.
//
// SnapshotDate is always the first day of a month and the balance is the
// state at the start of that day: transactions dated on SnapshotDate are
// not included. The invariant is
//
//	Balance = account.InitialBalance + sum(tx.Amount where tx.Date < SnapshotDate)
//
// Snapshots are derived data. They are created lazily by balance reads,
// deleted when the ledger behind them changes, and can always be rebuilt
// from transactions. Nothing may treat them as a source of truth, and no
// FX-converted balance is ever stored.
type BalanceSnapshot struct {
	ID           uuid.UUID
	AccountID    uuid.UUID
	Currency     string
	SnapshotDate time.Time
	Balance      decimal.Decimal
	CreatedAt    time.Time
}

// NewBalanceSnapshot constructs a snapshot at the month start of date.
func NewBalanceSnapshot(accountID uuid.UUID, currency string, date time.Time, balance decimal.Decimal) BalanceSnapshot {
	return BalanceSnapshot{
		ID:           uuid.New(),
		AccountID:    accountID,
		Currency:     currency,
		SnapshotDate: MonthStart(date),
		Balance:      balance,
		CreatedAt:    time.Now().UTC(),
	}
}
