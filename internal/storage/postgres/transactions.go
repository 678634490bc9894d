package postgres

import (
	"context"
	"time"

	"github.com/centavo-app/centavo/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Transactions is the pgx-backed transaction store.
type Transactions struct {
	pool *pgxpool.Pool
}

// NewTransactions returns a transaction store using the given pool.
func NewTransactions(pool *pgxpool.Pool) *Transactions {
	return &Transactions{pool: pool}
}

// Add inserts a transaction.
func (r *Transactions) Add(ctx context.Context, tx domain.Transaction) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO transactions (id, user_id, account_id, type, amount, currency, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::date, $8, $9)
	`, tx.ID, tx.UserID, tx.AccountID, tx.Type.String(), tx.Amount, tx.Currency,
		tx.Date.Format(time.DateOnly), tx.CreatedAt, tx.UpdatedAt)
	return errors.Wrap(err, "failed to insert transaction")
}

// ByID returns a transaction by id.
func (r *Transactions) ByID(ctx context.Context, id uuid.UUID) (domain.Transaction, error) {
	var tx domain.Transaction
	var txType string
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, account_id, type, amount, currency, date, created_at, updated_at
		FROM transactions
		WHERE id = $1
	`, id).Scan(&tx.ID, &tx.UserID, &tx.AccountID, &txType, &tx.Amount, &tx.Currency,
		&tx.Date, &tx.CreatedAt, &tx.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Transaction{}, errors.Wrapf(domain.ErrTransactionNotFound, "transaction %s", id)
	}
	if err != nil {
		return domain.Transaction{}, errors.Wrap(err, "failed to load transaction")
	}
	tx.Type = domain.TransactionType(txType)
	return tx, nil
}

// Update rewrites a transaction's mutable fields.
func (r *Transactions) Update(ctx context.Context, tx domain.Transaction) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE transactions
		SET account_id = $2, type = $3, amount = $4, currency = $5, date = $6::date, updated_at = $7
		WHERE id = $1
	`, tx.ID, tx.AccountID, tx.Type.String(), tx.Amount, tx.Currency,
		tx.Date.Format(time.DateOnly), tx.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "failed to update transaction")
	}
	if ct.RowsAffected() == 0 {
		return errors.Wrapf(domain.ErrTransactionNotFound, "transaction %s", tx.ID)
	}
	return nil
}

// Delete removes a transaction.
func (r *Transactions) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete transaction")
	}
	if ct.RowsAffected() == 0 {
		return errors.Wrapf(domain.ErrTransactionNotFound, "transaction %s", id)
	}
	return nil
}

// EntriesForAccountsUntil returns the amount projections of every
// transaction of the given accounts dated on or before until, in one
// query, ordered by date with the creation time as tie-breaker.
func (r *Transactions) EntriesForAccountsUntil(ctx context.Context, accountIDs []uuid.UUID, until time.Time) ([]domain.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT account_id, date, amount
		FROM transactions
		WHERE account_id = ANY($1::uuid[]) AND date <= $2::date
		ORDER BY date, created_at
	`, uuidStrings(accountIDs), until.Format(time.DateOnly))
	if err != nil {
		return nil, errors.Wrap(err, "failed to query ledger entries")
	}
	defer rows.Close()

	var out []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.AccountID, &e.Date, &e.Amount); err != nil {
			return nil, errors.Wrap(err, "failed to scan ledger entry")
		}
		out = append(out, e)
	}
	return out, errors.Wrap(rows.Err(), "failed to read ledger entries")
}

// NetSignedSum returns the sum of the account's signed amounts with
// from <= date <= to, zero when no rows match.
func (r *Transactions) NetSignedSum(ctx context.Context, accountID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE account_id = $1 AND date >= $2::date AND date <= $3::date
	`, accountID, from.Format(time.DateOnly), to.Format(time.DateOnly)).Scan(&sum)
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "failed to sum transactions")
	}
	return sum, nil
}
