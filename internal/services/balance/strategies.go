package balance

import (
	"context"
	"time"

	"github.com/centavo-app/centavo/internal/domain"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// totalAtDateStrategy computes the user's total balance as of a date,
// converted to base currency.
type totalAtDateStrategy struct {
	deps

	userID       uuid.UUID
	asOf         time.Time
	baseCurrency string
}

func (s *totalAtDateStrategy) Name() string {
	return "total_balance_at_date"
}

func (s *totalAtDateStrategy) Execute(ctx context.Context) (Result, error) {
	accounts, err := s.activeAccounts(ctx, s.userID, nil)
	if err != nil {
		return Result{}, err
	}
	if len(accounts) == 0 {
		return Result{Total: decimal.Zero}, nil
	}

	native, err := s.nativeBalancesAsOf(ctx, accounts, s.asOf)
	if err != nil {
		return Result{}, err
	}

	total := decimal.Zero
	for _, acc := range accounts {
		total = total.Add(s.fx.Convert(native[acc.ID], acc.Currency, s.baseCurrency, s.asOf))
	}

	return Result{Total: total}, nil
}

// perAccountAtDateStrategy computes each account's balance as of a date,
// native plus converted, along with the converted total.
type perAccountAtDateStrategy struct {
	deps

	userID       uuid.UUID
	asOf         time.Time
	baseCurrency string
}

func (s *perAccountAtDateStrategy) Name() string {
	return "per_account_balance_at_date"
}

func (s *perAccountAtDateStrategy) Execute(ctx context.Context) (Result, error) {
	accounts, err := s.activeAccounts(ctx, s.userID, nil)
	if err != nil {
		return Result{}, err
	}
	if len(accounts) == 0 {
		return Result{Total: decimal.Zero, Accounts: []domain.AccountBalance{}}, nil
	}

	native, err := s.nativeBalancesAsOf(ctx, accounts, s.asOf)
	if err != nil {
		return Result{}, err
	}

	balances := make([]domain.AccountBalance, 0, len(accounts))
	total := decimal.Zero
	for _, acc := range accounts {
		converted := s.fx.Convert(native[acc.ID], acc.Currency, s.baseCurrency, s.asOf)
		total = total.Add(converted)
		balances = append(balances, domain.AccountBalance{
			AccountID:   acc.ID,
			AccountName: acc.Name,
			Currency:    acc.Currency,
			Native:      native[acc.ID],
			Converted:   converted,
		})
	}

	return Result{Total: total, Accounts: balances}, nil
}

// activeAccounts loads the user's accounts, optionally narrowed to one id.
// The narrowing happens in memory so every strategy issues the same single
// account query.
func (d deps) activeAccounts(ctx context.Context, userID uuid.UUID, accountID *uuid.UUID) ([]domain.Account, error) {
	accounts, err := d.accounts.ActiveByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load accounts")
	}
	if accountID == nil {
		return accounts, nil
	}

	var filtered []domain.Account
	for _, acc := range accounts {
		if acc.ID == *accountID {
			filtered = append(filtered, acc)
		}
	}
	return filtered, nil
}

// nativeBalancesAsOf computes every account's native balance as of a date.
//
// Data is fetched in a fixed number of batched store calls: the latest
// snapshot per account, all transactions up to asOf, and, only for the
// accounts lacking a usable snapshot, the latest snapshot before the
// current month plus the existence check at month start. The per-account
// loop below runs purely in memory.
//
// Accounts without a snapshot get one queued for the month start of asOf
// and the whole batch is flushed with a single insert at the end.
func (d deps) nativeBalancesAsOf(ctx context.Context, accounts []domain.Account, asOf time.Time) (map[uuid.UUID]decimal.Decimal, error) {
	accountIDs := make([]uuid.UUID, 0, len(accounts))
	for _, acc := range accounts {
		accountIDs = append(accountIDs, acc.ID)
	}

	snapshots, err := d.snapshots.LatestForAccounts(ctx, accountIDs, asOf)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load latest snapshots")
	}
	entries, err := d.ledger.EntriesForAccountsUntil(ctx, accountIDs, asOf)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load transactions")
	}

	monthStart := domain.MonthStart(asOf)
	dayBeforeMonth := monthStart.AddDate(0, 0, -1)

	entriesByAccount := make(map[uuid.UUID][]domain.LedgerEntry, len(accounts))
	for _, e := range entries {
		entriesByAccount[e.AccountID] = append(entriesByAccount[e.AccountID], e)
	}

	var withoutSnap []uuid.UUID
	for _, acc := range accounts {
		if snapshots[acc.ID] == nil {
			withoutSnap = append(withoutSnap, acc.ID)
		}
	}

	snapBefore := map[uuid.UUID]*domain.BalanceSnapshot{}
	existingAtMonth := map[uuid.UUID]*domain.BalanceSnapshot{}
	if len(withoutSnap) > 0 {
		snapBefore, err = d.snapshots.LatestBeforeForAccounts(ctx, withoutSnap, monthStart)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load snapshots before month start")
		}
		existingAtMonth, err = d.snapshots.AtDate(ctx, withoutSnap, monthStart)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load snapshots at month start")
		}
	}

	result := make(map[uuid.UUID]decimal.Decimal, len(accounts))
	var toCreate []domain.BalanceSnapshot

	for _, acc := range accounts {
		accEntries := entriesByAccount[acc.ID]

		if snap := snapshots[acc.ID]; snap != nil {
			dayAfterSnap := snap.SnapshotDate.AddDate(0, 0, 1)
			result[acc.ID] = snap.Balance.Add(sumBetween(accEntries, dayAfterSnap, asOf))
			continue
		}

		var balanceAtMonthStart decimal.Decimal
		if snap := snapBefore[acc.ID]; snap != nil {
			dayAfterSnap := snap.SnapshotDate.AddDate(0, 0, 1)
			balanceAtMonthStart = snap.Balance.Add(sumBetween(accEntries, dayAfterSnap, dayBeforeMonth))
		} else {
			balanceAtMonthStart = acc.InitialBalance.Add(sumBetween(accEntries, domain.LedgerEpoch, dayBeforeMonth))
		}

		if existingAtMonth[acc.ID] == nil {
			toCreate = append(toCreate, domain.NewBalanceSnapshot(acc.ID, acc.Currency, monthStart, balanceAtMonthStart))
		}

		result[acc.ID] = balanceAtMonthStart.Add(sumBetween(accEntries, monthStart, asOf))
	}

	if len(toCreate) > 0 {
		if err := d.snapshots.AddMany(ctx, toCreate); err != nil {
			return nil, errors.Wrap(err, "failed to store month start snapshots")
		}
	}

	return result, nil
}

// sumBetween sums entry amounts with from <= date <= to.
func sumBetween(entries []domain.LedgerEntry, from, to time.Time) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		sum = sum.Add(e.Amount)
	}
	return sum
}
