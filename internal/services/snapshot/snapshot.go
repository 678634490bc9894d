// Package snapshot maintains month start balance snapshots for single
// accounts: the point-read path used by account endpoints, and the
// invalidation hook the transaction flow calls when history changes.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/centavo-app/centavo/internal/domain"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type accountStore interface {
	// ByID returns an account by id, excluding soft-deleted ones.
	ByID(ctx context.Context, accountID uuid.UUID) (domain.Account, error)
}

type snapshotStore interface {
	// LatestOnOrBefore returns the account's latest snapshot with
	// snapshot_date <= asOf, or nil.
	LatestOnOrBefore(ctx context.Context, accountID uuid.UUID, asOf time.Time) (*domain.BalanceSnapshot, error)
	// LatestBefore returns the account's latest snapshot strictly before a
	// date, or nil.
	LatestBefore(ctx context.Context, accountID uuid.UUID, before time.Time) (*domain.BalanceSnapshot, error)
	// ByAccountAndDate returns the snapshot at exactly date, or nil.
	ByAccountAndDate(ctx context.Context, accountID uuid.UUID, date time.Time) (*domain.BalanceSnapshot, error)
	// Add inserts a snapshot, ignoring it if one already exists for the
	// account and date.
	Add(ctx context.Context, snapshot domain.BalanceSnapshot) error
	// DeleteFutureFrom removes the account's snapshots with
	// snapshot_date >= from and reports how many were removed.
	DeleteFutureFrom(ctx context.Context, accountID uuid.UUID, from time.Time) (int64, error)
}

type ledgerStore interface {
	// NetSignedSum returns the sum of the account's signed transaction
	// amounts with from <= date <= to.
	NetSignedSum(ctx context.Context, accountID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
}

// Service computes single-account balances through snapshot chaining and
// owns snapshot invalidation.
type Service struct {
	accounts  accountStore
	snapshots snapshotStore
	ledger    ledgerStore
	logger    *zap.Logger
}

// NewService returns a configured snapshot service.
func NewService(accounts accountStore, snapshots snapshotStore, ledger ledgerStore, logger *zap.Logger) (*Service, error) {
	if accounts == nil {
		return nil, fmt.Errorf("account store is nil")
	}
	if snapshots == nil {
		return nil, fmt.Errorf("snapshot store is nil")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger store is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		accounts:  accounts,
		snapshots: snapshots,
		ledger:    ledger,
		logger:    logger,
	}, nil
}

// BalanceAt returns the account's native balance and currency as of a
// date. When no snapshot covers the date yet, the balance at the month
// start of asOf is established first and cached as a new snapshot.
func (s *Service) BalanceAt(ctx context.Context, accountID uuid.UUID, asOf time.Time) (decimal.Decimal, string, error) {
	asOf = domain.DateOf(asOf)

	acc, err := s.accounts.ByID(ctx, accountID)
	if err != nil {
		return decimal.Decimal{}, "", err
	}

	snap, err := s.snapshots.LatestOnOrBefore(ctx, accountID, asOf)
	if err != nil {
		return decimal.Decimal{}, "", errors.Wrap(err, "failed to load latest snapshot")
	}
	if snap != nil {
		delta, err := s.ledger.NetSignedSum(ctx, accountID, snap.SnapshotDate.AddDate(0, 0, 1), asOf)
		if err != nil {
			return decimal.Decimal{}, "", errors.Wrap(err, "failed to sum transactions")
		}
		return snap.Balance.Add(delta), acc.Currency, nil
	}

	monthStart := domain.MonthStart(asOf)
	balanceAtMonthStart, err := s.balanceAtMonthStart(ctx, acc, monthStart)
	if err != nil {
		return decimal.Decimal{}, "", err
	}

	if err := s.cacheMonthStart(ctx, acc, monthStart, balanceAtMonthStart); err != nil {
		return decimal.Decimal{}, "", err
	}

	delta, err := s.ledger.NetSignedSum(ctx, accountID, monthStart, asOf)
	if err != nil {
		return decimal.Decimal{}, "", errors.Wrap(err, "failed to sum transactions")
	}
	return balanceAtMonthStart.Add(delta), acc.Currency, nil
}

// InvalidateFrom removes the account's snapshots dated on or after from.
// Transaction writes call this so reads never chain from a stale balance.
func (s *Service) InvalidateFrom(ctx context.Context, accountID uuid.UUID, from time.Time) (int64, error) {
	from = domain.DateOf(from)

	deleted, err := s.snapshots.DeleteFutureFrom(ctx, accountID, from)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete snapshots")
	}
	if deleted > 0 {
		s.logger.Debug("invalidated balance snapshots",
			zap.String("account_id", accountID.String()),
			zap.Time("from", from),
			zap.Int64("deleted", deleted))
	}
	return deleted, nil
}

func (s *Service) balanceAtMonthStart(ctx context.Context, acc domain.Account, monthStart time.Time) (decimal.Decimal, error) {
	dayBefore := monthStart.AddDate(0, 0, -1)

	snap, err := s.snapshots.LatestBefore(ctx, acc.ID, monthStart)
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "failed to load snapshot before month start")
	}

	if snap != nil {
		delta, err := s.ledger.NetSignedSum(ctx, acc.ID, snap.SnapshotDate.AddDate(0, 0, 1), dayBefore)
		if err != nil {
			return decimal.Decimal{}, errors.Wrap(err, "failed to sum transactions")
		}
		return snap.Balance.Add(delta), nil
	}

	delta, err := s.ledger.NetSignedSum(ctx, acc.ID, domain.LedgerEpoch, dayBefore)
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "failed to sum transactions")
	}
	return acc.InitialBalance.Add(delta), nil
}

func (s *Service) cacheMonthStart(ctx context.Context, acc domain.Account, monthStart time.Time, balance decimal.Decimal) error {
	existing, err := s.snapshots.ByAccountAndDate(ctx, acc.ID, monthStart)
	if err != nil {
		return errors.Wrap(err, "failed to check month start snapshot")
	}
	if existing != nil {
		return nil
	}

	if err := s.snapshots.Add(ctx, domain.NewBalanceSnapshot(acc.ID, acc.Currency, monthStart, balance)); err != nil {
		return errors.Wrap(err, "failed to store month start snapshot")
	}

	s.logger.Debug("created month start snapshot",
		zap.String("account_id", acc.ID.String()),
		zap.Time("snapshot_date", monthStart),
		zap.String("balance", balance.String()))
	return nil
}
