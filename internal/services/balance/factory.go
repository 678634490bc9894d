package balance

import (
	"context"
	"fmt"
	"time"

	"github.com/centavo-app/centavo/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type accountStore interface {
	// ActiveByUser returns the user's accounts with soft-deleted ones
	// filtered out.
	ActiveByUser(ctx context.Context, userID uuid.UUID) ([]domain.Account, error)
}

type snapshotStore interface {
	// LatestForAccounts returns the latest snapshot with
	// snapshot_date <= asOf per account, in one query. Accounts without a
	// matching snapshot map to nil.
	LatestForAccounts(ctx context.Context, accountIDs []uuid.UUID, asOf time.Time) (map[uuid.UUID]*domain.BalanceSnapshot, error)
	// LatestBeforeForAccounts returns the latest snapshot with
	// snapshot_date < before per account, in one query.
	LatestBeforeForAccounts(ctx context.Context, accountIDs []uuid.UUID, before time.Time) (map[uuid.UUID]*domain.BalanceSnapshot, error)
	// AtDate returns the snapshot at exactly date per account, in one query.
	AtDate(ctx context.Context, accountIDs []uuid.UUID, date time.Time) (map[uuid.UUID]*domain.BalanceSnapshot, error)
	// AddMany inserts snapshots in bulk, ignoring ones that already exist.
	AddMany(ctx context.Context, snapshots []domain.BalanceSnapshot) error
}

type ledgerStore interface {
	// EntriesForAccountsUntil returns amount projections of every
	// transaction of the given accounts dated on or before until, in one
	// query.
	EntriesForAccountsUntil(ctx context.Context, accountIDs []uuid.UUID, until time.Time) ([]domain.LedgerEntry, error)
}

type converter interface {
	Convert(amount decimal.Decimal, from, to string, asOf time.Time) decimal.Decimal
}

// deps is the dependency set shared by all strategies.
type deps struct {
	accounts  accountStore
	snapshots snapshotStore
	ledger    ledgerStore
	fx        converter
}

// Factory creates balance strategies with repositories and the FX
// converter injected, so call sites only supply per-request parameters.
type Factory struct {
	deps deps
}

// NewFactory returns a configured strategy factory.
func NewFactory(accounts accountStore, snapshots snapshotStore, ledger ledgerStore, fx converter) (*Factory, error) {
	if accounts == nil {
		return nil, fmt.Errorf("account store is nil")
	}
	if snapshots == nil {
		return nil, fmt.Errorf("snapshot store is nil")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger store is nil")
	}
	if fx == nil {
		return nil, fmt.Errorf("fx converter is nil")
	}

	return &Factory{deps: deps{
		accounts:  accounts,
		snapshots: snapshots,
		ledger:    ledger,
		fx:        fx,
	}}, nil
}

// TotalAt creates a strategy computing the user's total balance as of a
// date, in base currency.
func (f *Factory) TotalAt(userID uuid.UUID, asOf time.Time, baseCurrency string) Strategy {
	return &totalAtDateStrategy{
		deps:         f.deps,
		userID:       userID,
		asOf:         domain.DateOf(asOf),
		baseCurrency: baseCurrency,
	}
}

// PerAccountAt creates a strategy computing per-account balances as of a
// date, native and converted to base currency.
func (f *Factory) PerAccountAt(userID uuid.UUID, asOf time.Time, baseCurrency string) Strategy {
	return &perAccountAtDateStrategy{
		deps:         f.deps,
		userID:       userID,
		asOf:         domain.DateOf(asOf),
		baseCurrency: baseCurrency,
	}
}

// History creates a strategy computing a balance series over [from, to]
// sampled at the given granularity. accountID optionally narrows the
// series to a single account.
func (f *Factory) History(userID uuid.UUID, from, to time.Time, period domain.Period, baseCurrency string, accountID *uuid.UUID) (Strategy, error) {
	iterator, err := NewPeriodIterator(period)
	if err != nil {
		return nil, err
	}

	return &historyStrategy{
		deps:         f.deps,
		userID:       userID,
		from:         domain.DateOf(from),
		to:           domain.DateOf(to),
		iterator:     iterator,
		baseCurrency: baseCurrency,
		accountID:    accountID,
	}, nil
}
