package balance

import (
	"context"
	"time"

	"github.com/centavo-app/centavo/internal/domain"
	"github.com/google/uuid"
)

// fakeAccountStore serves a canned account list and counts queries.
type fakeAccountStore struct {
	accounts []domain.Account
	err      error
	calls    int
}

func (f *fakeAccountStore) ActiveByUser(_ context.Context, _ uuid.UUID) ([]domain.Account, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.accounts, nil
}

// fakeSnapshotStore serves canned per-account snapshots, filtered by the
// requested ids, and records every write.
type fakeSnapshotStore struct {
	latest       map[uuid.UUID]*domain.BalanceSnapshot
	latestBefore map[uuid.UUID]*domain.BalanceSnapshot
	atDate       map[uuid.UUID]*domain.BalanceSnapshot

	latestCalls       int
	latestBeforeCalls int
	atDateCalls       int
	addCalls          int
	added             []domain.BalanceSnapshot
}

func pick(src map[uuid.UUID]*domain.BalanceSnapshot, ids []uuid.UUID) map[uuid.UUID]*domain.BalanceSnapshot {
	out := make(map[uuid.UUID]*domain.BalanceSnapshot, len(ids))
	for _, id := range ids {
		if snap, ok := src[id]; ok {
			out[id] = snap
		}
	}
	return out
}

func (f *fakeSnapshotStore) LatestForAccounts(_ context.Context, ids []uuid.UUID, _ time.Time) (map[uuid.UUID]*domain.BalanceSnapshot, error) {
	f.latestCalls++
	return pick(f.latest, ids), nil
}

func (f *fakeSnapshotStore) LatestBeforeForAccounts(_ context.Context, ids []uuid.UUID, _ time.Time) (map[uuid.UUID]*domain.BalanceSnapshot, error) {
	f.latestBeforeCalls++
	return pick(f.latestBefore, ids), nil
}

func (f *fakeSnapshotStore) AtDate(_ context.Context, ids []uuid.UUID, _ time.Time) (map[uuid.UUID]*domain.BalanceSnapshot, error) {
	f.atDateCalls++
	return pick(f.atDate, ids), nil
}

func (f *fakeSnapshotStore) AddMany(_ context.Context, snapshots []domain.BalanceSnapshot) error {
	f.addCalls++
	f.added = append(f.added, snapshots...)
	return nil
}

// fakeLedgerStore serves canned entries filtered by account and date the
// way the real store does.
type fakeLedgerStore struct {
	entries []domain.LedgerEntry
	calls   int
}

func (f *fakeLedgerStore) EntriesForAccountsUntil(_ context.Context, ids []uuid.UUID, until time.Time) ([]domain.LedgerEntry, error) {
	f.calls++
	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var out []domain.LedgerEntry
	for _, e := range f.entries {
		if wanted[e.AccountID] && !e.Date.After(until) {
			out = append(out, e)
		}
	}
	return out, nil
}

func entry(accountID uuid.UUID, date time.Time, amount string) domain.LedgerEntry {
	return domain.LedgerEntry{
		AccountID: accountID,
		Date:      date,
		Amount:    dec(amount),
	}
}
