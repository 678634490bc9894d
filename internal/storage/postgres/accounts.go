package postgres

import (
	"context"

	"github.com/centavo-app/centavo/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// Accounts is the pgx-backed account directory.
type Accounts struct {
	pool *pgxpool.Pool
}

// NewAccounts returns an account store using the given pool.
func NewAccounts(pool *pgxpool.Pool) *Accounts {
	return &Accounts{pool: pool}
}

// Add inserts an account.
func (r *Accounts) Add(ctx context.Context, acc domain.Account) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (id, user_id, name, type, currency, initial_balance, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, acc.ID, acc.UserID, acc.Name, acc.Type.String(), acc.Currency,
		acc.InitialBalance, acc.IsDeleted, acc.CreatedAt, acc.UpdatedAt)
	return errors.Wrap(err, "failed to insert account")
}

// ByID returns an account by id. Soft-deleted accounts surface as not
// found.
func (r *Accounts) ByID(ctx context.Context, accountID uuid.UUID) (domain.Account, error) {
	var acc domain.Account
	var accType string
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, name, type, currency, initial_balance, is_deleted, created_at, updated_at
		FROM accounts
		WHERE id = $1 AND NOT is_deleted
	`, accountID).Scan(&acc.ID, &acc.UserID, &acc.Name, &accType, &acc.Currency,
		&acc.InitialBalance, &acc.IsDeleted, &acc.CreatedAt, &acc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, errors.Wrapf(domain.ErrAccountNotFound, "account %s", accountID)
	}
	if err != nil {
		return domain.Account{}, errors.Wrap(err, "failed to load account")
	}
	acc.Type = domain.AccountType(accType)
	return acc, nil
}

// ActiveByUser returns the user's accounts with soft-deleted ones
// filtered out, oldest first.
func (r *Accounts) ActiveByUser(ctx context.Context, userID uuid.UUID) ([]domain.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, name, type, currency, initial_balance, is_deleted, created_at, updated_at
		FROM accounts
		WHERE user_id = $1 AND NOT is_deleted
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query accounts")
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		var acc domain.Account
		var accType string
		if err := rows.Scan(&acc.ID, &acc.UserID, &acc.Name, &accType, &acc.Currency,
			&acc.InitialBalance, &acc.IsDeleted, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan account")
		}
		acc.Type = domain.AccountType(accType)
		out = append(out, acc)
	}
	return out, errors.Wrap(rows.Err(), "failed to read accounts")
}

// SoftDelete hides an account from listings without touching its rows.
func (r *Accounts) SoftDelete(ctx context.Context, accountID uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET is_deleted = TRUE, updated_at = now()
		WHERE id = $1 AND NOT is_deleted
	`, accountID)
	if err != nil {
		return errors.Wrap(err, "failed to soft delete account")
	}
	if ct.RowsAffected() == 0 {
		return errors.Wrapf(domain.ErrAccountNotFound, "account %s", accountID)
	}
	return nil
}
