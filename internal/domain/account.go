// Package domain defines the core data structures of the personal finance backend.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// AccountType kind of money account.
type AccountType string

const (
	// AccountTypeCash physical cash.
	AccountTypeCash AccountType = "cash"
	// AccountTypeCredit credit card.
	AccountTypeCredit AccountType = "credit_card"
	// AccountTypeDebit debit card.
	AccountTypeDebit AccountType = "debit_card"
)

// String returns the string representation.
func (t AccountType) String() string {
	return string(t)
}

// IsValid checks if the AccountType value is valid.
func (t AccountType) IsValid() bool {
	return t == AccountTypeCash || t == AccountTypeCredit || t == AccountTypeDebit
}

// Account money account owned by a user. Balances are derived from
// InitialBalance plus the signed transaction history; the account itself
// stores no running balance.
type Account struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Name           string
	Type           AccountType
	Currency       string
	InitialBalance decimal.Decimal
	IsDeleted      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewAccount constructs an account with a fresh id.
func NewAccount(userID uuid.UUID, name string, accountType AccountType, currency string, initialBalance decimal.Decimal) (Account, error) {
	if name == "" {
		return Account{}, errors.Wrap(ErrInvalidInput, "account name must not be empty")
	}
	if !accountType.IsValid() {
		return Account{}, errors.Wrapf(ErrInvalidInput, "unknown account type %q", accountType)
	}
	if currency == "" {
		return Account{}, errors.Wrap(ErrInvalidInput, "account currency must not be empty")
	}

	now := time.Now().UTC()

	return Account{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           name,
		Type:           accountType,
		Currency:       currency,
		InitialBalance: initialBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
