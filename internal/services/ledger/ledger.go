// Package ledger owns the write path of the book: account creation and
// transaction mutations. Every transaction mutation invalidates the
// balance snapshots it can affect, so cached balances never go stale.
package ledger

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
	Add(ctx context.Context, account domain.Account) error
	// ByID returns an account by id, excluding soft-deleted ones.
	ByID(ctx context.Context, accountID uuid.UUID) (domain.Account, error)
	ActiveByUser(ctx context.Context, userID uuid.UUID) ([]domain.Account, error)
	SoftDelete(ctx context.Context, accountID uuid.UUID) error
}

type transactionStore interface {
	Add(ctx context.Context, tx domain.Transaction) error
	ByID(ctx context.Context, id uuid.UUID) (domain.Transaction, error)
	Update(ctx context.Context, tx domain.Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type snapshotInvalidator interface {
	// InvalidateFrom deletes the account's snapshots dated on or after from.
	InvalidateFrom(ctx context.Context, accountID uuid.UUID, from time.Time) (int64, error)
}

// Service manages accounts and transactions on behalf of one user at a
// time. All entity access is ownership-checked: foreign ids surface as
// not-found, never as someone else's data.
type Service struct {
	accounts     accountStore
	transactions transactionStore
	snapshots    snapshotInvalidator
	logger       *zap.Logger
}

// NewService returns a configured ledger service.
func NewService(accounts accountStore, transactions transactionStore, snapshots snapshotInvalidator, logger *zap.Logger) (*Service, error) {
	if accounts == nil {
		return nil, fmt.Errorf("account store is nil")
	}
	if transactions == nil {
		return nil, fmt.Errorf("transaction store is nil")
	}
	if snapshots == nil {
		return nil, fmt.Errorf("snapshot invalidator is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		accounts:     accounts,
		transactions: transactions,
		snapshots:    snapshots,
		logger:       logger,
	}, nil
}

// CreateAccount opens a new account for the user.
func (s *Service) CreateAccount(ctx context.Context, userID uuid.UUID, name string, accountType domain.AccountType, currency string, initialBalance decimal.Decimal) (domain.Account, error) {
	acc, err := domain.NewAccount(userID, name, accountType, currency, initialBalance)
	if err != nil {
		return domain.Account{}, err
	}

	if err := s.accounts.Add(ctx, acc); err != nil {
		return domain.Account{}, errors.Wrap(err, "failed to store account")
	}

	s.logger.Info("account created",
		zap.String("account_id", acc.ID.String()),
		zap.String("currency", acc.Currency),
		zap.String("type", acc.Type.String()))
	return acc, nil
}

// RemoveAccount soft deletes an account and drops its cached snapshots.
// The transaction history stays in place.
func (s *Service) RemoveAccount(ctx context.Context, userID, accountID uuid.UUID) error {
	if _, err := s.ownedAccount(ctx, userID, accountID); err != nil {
		return err
	}

	if err := s.accounts.SoftDelete(ctx, accountID); err != nil {
		return err
	}
	if _, err := s.snapshots.InvalidateFrom(ctx, accountID, domain.LedgerEpoch); err != nil {
		return err
	}

	s.logger.Info("account removed", zap.String("account_id", accountID.String()))
	return nil
}

// Accounts lists the user's active accounts.
func (s *Service) Accounts(ctx context.Context, userID uuid.UUID) ([]domain.Account, error) {
	accounts, err := s.accounts.ActiveByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load accounts")
	}
	return accounts, nil
}

// Record stores a new transaction. The sign convention is applied from
// the transaction type and the currency is taken from the account.
func (s *Service) Record(ctx context.Context, userID, accountID uuid.UUID, txType domain.TransactionType, amount decimal.Decimal, date time.Time) (domain.Transaction, error) {
	acc, err := s.ownedAccount(ctx, userID, accountID)
	if err != nil {
		return domain.Transaction{}, err
	}

	tx, err := domain.NewTransaction(userID, accountID, txType, amount, acc.Currency, date)
	if err != nil {
		return domain.Transaction{}, err
	}
	if err := rejectFutureDate(tx.Date); err != nil {
		return domain.Transaction{}, err
	}

	if err := s.transactions.Add(ctx, tx); err != nil {
		return domain.Transaction{}, errors.Wrap(err, "failed to store transaction")
	}

	if _, err := s.snapshots.InvalidateFrom(ctx, accountID, tx.Date); err != nil {
		return domain.Transaction{}, err
	}

	s.logger.Debug("transaction recorded",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("account_id", accountID.String()),
		zap.String("amount", tx.Amount.String()),
		zap.Time("date", tx.Date))
	return tx, nil
}

// Update rewrites a transaction. Snapshots of the affected account are
// invalidated from the earliest of the old and new dates; when the
// transaction moves between accounts, both accounts are invalidated.
func (s *Service) Update(ctx context.Context, userID, txID, accountID uuid.UUID, txType domain.TransactionType, amount decimal.Decimal, date time.Time) (domain.Transaction, error) {
	existing, err := s.ownedTransaction(ctx, userID, txID)
	if err != nil {
		return domain.Transaction{}, err
	}

	acc, err := s.ownedAccount(ctx, userID, accountID)
	if err != nil {
		return domain.Transaction{}, err
	}

	updated, err := domain.NewTransaction(userID, accountID, txType, amount, acc.Currency, date)
	if err != nil {
		return domain.Transaction{}, err
	}
	if err := rejectFutureDate(updated.Date); err != nil {
		return domain.Transaction{}, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if err := s.transactions.Update(ctx, updated); err != nil {
		return domain.Transaction{}, errors.Wrap(err, "failed to update transaction")
	}

	from := existing.Date
	if updated.Date.Before(from) {
		from = updated.Date
	}
	if _, err := s.snapshots.InvalidateFrom(ctx, existing.AccountID, from); err != nil {
		return domain.Transaction{}, err
	}
	if updated.AccountID != existing.AccountID {
		if _, err := s.snapshots.InvalidateFrom(ctx, updated.AccountID, from); err != nil {
			return domain.Transaction{}, err
		}
	}

	s.logger.Debug("transaction updated",
		zap.String("transaction_id", updated.ID.String()),
		zap.Time("invalidated_from", from))
	return updated, nil
}

// Remove deletes a transaction and invalidates the account's snapshots
// from the transaction date.
func (s *Service) Remove(ctx context.Context, userID, txID uuid.UUID) error {
	existing, err := s.ownedTransaction(ctx, userID, txID)
	if err != nil {
		return err
	}

	if err := s.transactions.Delete(ctx, existing.ID); err != nil {
		return errors.Wrap(err, "failed to delete transaction")
	}

	if _, err := s.snapshots.InvalidateFrom(ctx, existing.AccountID, existing.Date); err != nil {
		return err
	}

	s.logger.Debug("transaction removed",
		zap.String("transaction_id", existing.ID.String()),
		zap.Time("invalidated_from", existing.Date))
	return nil
}

func (s *Service) ownedAccount(ctx context.Context, userID, accountID uuid.UUID) (domain.Account, error) {
	acc, err := s.accounts.ByID(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}
	if acc.UserID != userID {
		return domain.Account{}, errors.Wrapf(domain.ErrAccountNotFound, "account %s", accountID)
	}
	return acc, nil
}

func (s *Service) ownedTransaction(ctx context.Context, userID, txID uuid.UUID) (domain.Transaction, error) {
	tx, err := s.transactions.ByID(ctx, txID)
	if err != nil {
		return domain.Transaction{}, err
	}
	if tx.UserID != userID {
		return domain.Transaction{}, errors.Wrapf(domain.ErrTransactionNotFound, "transaction %s", txID)
	}
	return tx, nil
}

func rejectFutureDate(date time.Time) error {
	if date.After(domain.DateOf(time.Now().UTC())) {
		return errors.Wrap(domain.ErrInvalidInput, "transaction date must not be in the future")
	}
	return nil
}
