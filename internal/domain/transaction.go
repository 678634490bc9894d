package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// TransactionType direction of a ledger entry.
type TransactionType string

const (
	// TransactionTypeIncome money entering the account.
	TransactionTypeIncome TransactionType = "income"
	// TransactionTypeExpense money leaving the account.
	TransactionTypeExpense TransactionType = "expense"
)

// String returns the string representation.
func (t TransactionType) String() string {
	return string(t)
}

// IsValid checks if the TransactionType value is valid.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// SignAmount applies the sign convention to an amount: income is stored
// positive, expense negative. The input sign is discarded.
func (t TransactionType) SignAmount(amount decimal.Decimal) decimal.Decimal {
	if t == TransactionTypeExpense {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}

// Transaction single ledger entry. Amount is stored signed per the
// transaction type, so balances are plain sums over Amount. Date is the
// effective calendar day; CreatedAt only breaks ties between entries on
// the same day.
type Transaction struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	AccountID uuid.UUID
	Type      TransactionType
	Amount    decimal.Decimal
	Currency  string
	Date      time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTransaction constructs a transaction with a fresh id, applying the
// sign convention to amount.
func NewTransaction(userID, accountID uuid.UUID, txType TransactionType, amount decimal.Decimal, currency string, date time.Time) (Transaction, error) {
	if !txType.IsValid() {
		return Transaction{}, errors.Wrapf(ErrInvalidInput, "unknown transaction type %q", txType)
	}
	if amount.IsZero() {
		return Transaction{}, errors.Wrap(ErrInvalidInput, "transaction amount must not be zero")
	}

	now := time.Now().UTC()

	return Transaction{
		ID:        uuid.New(),
		UserID:    userID,
		AccountID: accountID,
		Type:      txType,
		Amount:    txType.SignAmount(amount),
		Currency:  currency,
		Date:      DateOf(date),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// LedgerEntry amount projection of a transaction, the shape balance
// computations work with.
type LedgerEntry struct {
	AccountID uuid.UUID
	Date      time.Time
	Amount    decimal.Decimal
}
