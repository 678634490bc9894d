package balance

import (
	"context"
	"testing"
	"time"

	"github.com/centavo-app/centavo/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHistory(t *testing.T, f *fixtures, from, to time.Time, period domain.Period, baseCurrency string, accountID *uuid.UUID) Result {
	t.Helper()

	strategy, err := f.factory.History(testUserID, from, to, period, baseCurrency, accountID)
	require.NoError(t, err)

	result, err := strategy.Execute(context.Background())
	require.NoError(t, err)
	return result
}

func TestHistoryMonthSeries(t *testing.T) {
	acc := account("Wallet", "MXN", "1000")
	f := newFixtures(t, acc)
	f.ledger.entries = mxnLedger(acc.ID)

	result := runHistory(t, f,
		date(2024, time.January, 15), date(2024, time.March, 10),
		domain.PeriodMonth, "MXN", nil)

	require.Len(t, result.Points, 3)

	// The first sample is the month start of from; its balance is the
	// starting balance of the range, with everything dated before from
	// already applied.
	assert.Equal(t, date(2024, time.January, 1), result.Points[0].Date)
	assertDec(t, "800", result.Points[0].Balance)

	assert.Equal(t, date(2024, time.February, 1), result.Points[1].Date)
	assertDec(t, "800", result.Points[1].Balance)

	assert.Equal(t, date(2024, time.March, 1), result.Points[2].Date)
	assertDec(t, "1200", result.Points[2].Balance)

	// History reads snapshots but never writes them.
	assert.Equal(t, 0, f.snapshots.addCalls)
	assert.Equal(t, 1, f.snapshots.latestCalls)
	assert.Equal(t, 1, f.snapshots.latestBeforeCalls)
	assert.Equal(t, 1, f.ledger.calls)
}

func TestHistoryDaySeriesAppliesEachDateOnce(t *testing.T) {
	acc := account("Wallet", "MXN", "100")
	f := newFixtures(t, acc)
	f.ledger.entries = []domain.LedgerEntry{
		entry(acc.ID, date(2024, time.June, 2), "10"),
		entry(acc.ID, date(2024, time.June, 2), "20"),
	}

	result := runHistory(t, f,
		date(2024, time.June, 1), date(2024, time.June, 3),
		domain.PeriodDay, "MXN", nil)

	require.Len(t, result.Points, 3)
	assertDec(t, "100", result.Points[0].Balance)
	assertDec(t, "130", result.Points[1].Balance)
	assertDec(t, "130", result.Points[2].Balance)
}

func TestHistoryStartingBalanceFromSnapshot(t *testing.T) {
	acc := account("Wallet", "MXN", "1000")
	f := newFixtures(t, acc)
	f.snapshots.latest = map[uuid.UUID]*domain.BalanceSnapshot{
		acc.ID: snap(acc.ID, "MXN", date(2024, time.January, 1), "800"),
	}
	f.ledger.entries = []domain.LedgerEntry{
		entry(acc.ID, date(2024, time.January, 10), "-50"),
		entry(acc.ID, date(2024, time.February, 1), "100"),
	}

	result := runHistory(t, f,
		date(2024, time.January, 15), date(2024, time.February, 15),
		domain.PeriodWeek, "MXN", nil)

	require.Len(t, result.Points, 5)

	// 800 from the snapshot, -50 applied before the range starts.
	assert.Equal(t, date(2024, time.January, 15), result.Points[0].Date)
	assertDec(t, "750", result.Points[0].Balance)

	// +100 on Feb 1 lands between the Jan 29 and Feb 5 samples.
	assert.Equal(t, date(2024, time.January, 29), result.Points[2].Date)
	assertDec(t, "750", result.Points[2].Balance)
	assert.Equal(t, date(2024, time.February, 5), result.Points[3].Date)
	assertDec(t, "850", result.Points[3].Balance)
}

func TestHistorySingleAccountFilter(t *testing.T) {
	wallet := account("Wallet", "MXN", "1000")
	card := account("Card", "MXN", "500")
	f := newFixtures(t, wallet, card)
	f.ledger.entries = []domain.LedgerEntry{
		entry(wallet.ID, date(2024, time.June, 2), "-200"),
		entry(card.ID, date(2024, time.June, 2), "-999"),
	}

	result := runHistory(t, f,
		date(2024, time.June, 1), date(2024, time.June, 3),
		domain.PeriodDay, "MXN", &wallet.ID)

	require.Len(t, result.Points, 3)
	assertDec(t, "1000", result.Points[0].Balance)
	assertDec(t, "800", result.Points[1].Balance)
	assertDec(t, "800", result.Points[2].Balance)
}

func TestHistoryConvertsToBaseCurrency(t *testing.T) {
	acc := account("Card", "USD", "100")
	f := newFixtures(t, acc)

	result := runHistory(t, f,
		date(2024, time.June, 1), date(2024, time.June, 2),
		domain.PeriodDay, "MXN", nil)

	require.Len(t, result.Points, 2)
	assertDec(t, "1750", result.Points[0].Balance)
	assertDec(t, "1750", result.Points[1].Balance)
}

func TestHistoryNoAccountsYieldsZeroPoints(t *testing.T) {
	f := newFixtures(t)

	result := runHistory(t, f,
		date(2024, time.January, 15), date(2024, time.March, 10),
		domain.PeriodMonth, "MXN", nil)

	require.Len(t, result.Points, 3)
	for i, want := range []time.Time{
		date(2024, time.January, 1),
		date(2024, time.February, 1),
		date(2024, time.March, 1),
	} {
		assert.Equal(t, want, result.Points[i].Date)
		assertDec(t, "0", result.Points[i].Balance)
	}

	assert.Equal(t, 0, f.snapshots.latestCalls)
	assert.Equal(t, 0, f.ledger.calls)
}

func TestHistoryUnknownAccountFilterYieldsZeroPoints(t *testing.T) {
	acc := account("Wallet", "MXN", "1000")
	f := newFixtures(t, acc)

	other := uuid.New()
	result := runHistory(t, f,
		date(2024, time.June, 1), date(2024, time.June, 2),
		domain.PeriodDay, "MXN", &other)

	require.Len(t, result.Points, 2)
	assertDec(t, "0", result.Points[0].Balance)
	assertDec(t, "0", result.Points[1].Balance)
}

func TestHistoryRejectsYearPeriod(t *testing.T) {
	f := newFixtures(t)

	_, err := f.factory.History(testUserID,
		date(2024, time.January, 1), date(2024, time.December, 31),
		domain.PeriodYear, "MXN", nil)
	require.Error(t, err)
}
