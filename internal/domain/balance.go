package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountBalance balance of one account at a date, native plus converted
// to the requested base currency.
type AccountBalance struct {
	AccountID   uuid.UUID
	AccountName string
	Currency    string
	Native      decimal.Decimal
	Converted   decimal.Decimal
}

// BalancePoint one sample of a balance history series, in base currency.
type BalancePoint struct {
	Date    time.Time
	Balance decimal.Decimal
}
