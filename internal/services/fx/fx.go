// Package fx converts monetary amounts between currencies for reporting.
//
// Conversion is a presentation concern: it happens at read time with the
// rate for the requested date and never touches the ledger or the stored
// snapshots, which stay in each account's native currency.
package fx

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// defaultRates bootstrap conversion table used until a rate source is
// configured.
var defaultRates = map[string]decimal.Decimal{
	"USD/MXN": decimal.NewFromFloat(17.5),
	"MXN/USD": decimal.NewFromFloat(0.057),
	"USD/EUR": decimal.NewFromFloat(1.10),
	"EUR/USD": decimal.NewFromFloat(0.90),
	"MXN/EUR": decimal.NewFromFloat(0.050),
	"EUR/MXN": decimal.NewFromFloat(20.00),
}

// RateTable converts amounts using a fixed pair table. Unknown pairs fall
// through unconverted, so a missing rate degrades a report instead of
// failing it.
type RateTable struct {
	rates  map[string]decimal.Decimal
	logger *zap.Logger
}

// NewRateTable returns a table seeded with the default rates, with
// overrides applied on top. Override keys use the "FROM/TO" form.
func NewRateTable(overrides map[string]decimal.Decimal, logger *zap.Logger) *RateTable {
	if logger == nil {
		logger = zap.NewNop()
	}

	rates := make(map[string]decimal.Decimal, len(defaultRates)+len(overrides))
	for pair, rate := range defaultRates {
		rates[pair] = rate
	}
	for pair, rate := range overrides {
		rates[pair] = rate
	}

	return &RateTable{rates: rates, logger: logger}
}

// Convert converts amount from one currency to another as of a date.
// Same-currency conversion is the identity; an unknown pair returns the
// amount unchanged.
func (t *RateTable) Convert(amount decimal.Decimal, from, to string, asOf time.Time) decimal.Decimal {
	if from == to {
		return amount
	}

	rate, ok := t.rates[pairKey(from, to)]
	if !ok {
		t.logger.Debug("no fx rate for pair, returning amount unconverted",
			zap.String("from", from),
			zap.String("to", to),
			zap.Time("as_of", asOf))
		return amount
	}

	return amount.Mul(rate)
}

func pairKey(from, to string) string {
	return fmt.Sprintf("%s/%s", from, to)
}
