package postgres

import (
	"context"
	"time"

	"github.com/centavo-app/centavo/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// Snapshots is the pgx-backed balance snapshot store. The table carries
// a unique constraint on (account_id, snapshot_date); inserts ignore
// conflicts, which resolves the duplicate-compute race between
// concurrent balance reads.
type Snapshots struct {
	pool *pgxpool.Pool
}

// NewSnapshots returns a snapshot store using the given pool.
func NewSnapshots(pool *pgxpool.Pool) *Snapshots {
	return &Snapshots{pool: pool}
}

const insertSnapshot = `
	INSERT INTO balance_snapshots (id, account_id, currency, snapshot_date, balance, created_at)
	VALUES ($1, $2, $3, $4::date, $5, $6)
	ON CONFLICT (account_id, snapshot_date) DO NOTHING
`

// Add inserts a snapshot, ignoring it when one already exists for the
// account and date.
func (r *Snapshots) Add(ctx context.Context, snap domain.BalanceSnapshot) error {
	_, err := r.pool.Exec(ctx, insertSnapshot,
		snap.ID, snap.AccountID, snap.Currency,
		snap.SnapshotDate.Format(time.DateOnly), snap.Balance, snap.CreatedAt)
	return errors.Wrap(err, "failed to insert snapshot")
}

// AddMany inserts snapshots in one round trip, ignoring the ones that
// already exist.
func (r *Snapshots) AddMany(ctx context.Context, snapshots []domain.BalanceSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, snap := range snapshots {
		batch.Queue(insertSnapshot,
			snap.ID, snap.AccountID, snap.Currency,
			snap.SnapshotDate.Format(time.DateOnly), snap.Balance, snap.CreatedAt)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range snapshots {
		if _, err := results.Exec(); err != nil {
			return errors.Wrap(err, "failed to insert snapshots")
		}
	}
	return errors.Wrap(results.Close(), "failed to flush snapshot batch")
}

// LatestForAccounts returns the latest snapshot with snapshot_date <= asOf
// per account, in one query. Accounts without a matching snapshot are
// absent from the map.
func (r *Snapshots) LatestForAccounts(ctx context.Context, accountIDs []uuid.UUID, asOf time.Time) (map[uuid.UUID]*domain.BalanceSnapshot, error) {
	return r.mapByAccount(ctx, `
		SELECT DISTINCT ON (account_id) id, account_id, currency, snapshot_date, balance, created_at
		FROM balance_snapshots
		WHERE account_id = ANY($1::uuid[]) AND snapshot_date <= $2::date
		ORDER BY account_id, snapshot_date DESC
	`, uuidStrings(accountIDs), asOf.Format(time.DateOnly))
}

// LatestBeforeForAccounts returns the latest snapshot strictly before a
// date per account, in one query.
func (r *Snapshots) LatestBeforeForAccounts(ctx context.Context, accountIDs []uuid.UUID, before time.Time) (map[uuid.UUID]*domain.BalanceSnapshot, error) {
	return r.mapByAccount(ctx, `
		SELECT DISTINCT ON (account_id) id, account_id, currency, snapshot_date, balance, created_at
		FROM balance_snapshots
		WHERE account_id = ANY($1::uuid[]) AND snapshot_date < $2::date
		ORDER BY account_id, snapshot_date DESC
	`, uuidStrings(accountIDs), before.Format(time.DateOnly))
}

// AtDate returns the snapshot at exactly date per account, in one query.
func (r *Snapshots) AtDate(ctx context.Context, accountIDs []uuid.UUID, date time.Time) (map[uuid.UUID]*domain.BalanceSnapshot, error) {
	return r.mapByAccount(ctx, `
		SELECT id, account_id, currency, snapshot_date, balance, created_at
		FROM balance_snapshots
		WHERE account_id = ANY($1::uuid[]) AND snapshot_date = $2::date
	`, uuidStrings(accountIDs), date.Format(time.DateOnly))
}

// LatestOnOrBefore returns the account's latest snapshot with
// snapshot_date <= asOf, or nil.
func (r *Snapshots) LatestOnOrBefore(ctx context.Context, accountID uuid.UUID, asOf time.Time) (*domain.BalanceSnapshot, error) {
	return r.one(ctx, `
		SELECT id, account_id, currency, snapshot_date, balance, created_at
		FROM balance_snapshots
		WHERE account_id = $1 AND snapshot_date <= $2::date
		ORDER BY snapshot_date DESC
		LIMIT 1
	`, accountID, asOf.Format(time.DateOnly))
}

// LatestBefore returns the account's latest snapshot strictly before a
// date, or nil.
func (r *Snapshots) LatestBefore(ctx context.Context, accountID uuid.UUID, before time.Time) (*domain.BalanceSnapshot, error) {
	return r.one(ctx, `
		SELECT id, account_id, currency, snapshot_date, balance, created_at
		FROM balance_snapshots
		WHERE account_id = $1 AND snapshot_date < $2::date
		ORDER BY snapshot_date DESC
		LIMIT 1
	`, accountID, before.Format(time.DateOnly))
}

// ByAccountAndDate returns the snapshot at exactly date, or nil.
func (r *Snapshots) ByAccountAndDate(ctx context.Context, accountID uuid.UUID, date time.Time) (*domain.BalanceSnapshot, error) {
	return r.one(ctx, `
		SELECT id, account_id, currency, snapshot_date, balance, created_at
		FROM balance_snapshots
		WHERE account_id = $1 AND snapshot_date = $2::date
	`, accountID, date.Format(time.DateOnly))
}

// DeleteFutureFrom removes the account's snapshots with
// snapshot_date >= from and reports how many were removed.
func (r *Snapshots) DeleteFutureFrom(ctx context.Context, accountID uuid.UUID, from time.Time) (int64, error) {
	ct, err := r.pool.Exec(ctx, `
		DELETE FROM balance_snapshots
		WHERE account_id = $1 AND snapshot_date >= $2::date
	`, accountID, from.Format(time.DateOnly))
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete snapshots")
	}
	return ct.RowsAffected(), nil
}

func (r *Snapshots) mapByAccount(ctx context.Context, query string, args ...any) (map[uuid.UUID]*domain.BalanceSnapshot, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query snapshots")
	}
	defer rows.Close()

	out := make(map[uuid.UUID]*domain.BalanceSnapshot)
	for rows.Next() {
		var s domain.BalanceSnapshot
		if err := rows.Scan(&s.ID, &s.AccountID, &s.Currency, &s.SnapshotDate, &s.Balance, &s.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan snapshot")
		}
		out[s.AccountID] = &s
	}
	return out, errors.Wrap(rows.Err(), "failed to read snapshots")
}

func (r *Snapshots) one(ctx context.Context, query string, args ...any) (*domain.BalanceSnapshot, error) {
	var s domain.BalanceSnapshot
	err := r.pool.QueryRow(ctx, query, args...).
		Scan(&s.ID, &s.AccountID, &s.Currency, &s.SnapshotDate, &s.Balance, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load snapshot")
	}
	return &s, nil
}
