package balance

import (
	"testing"
	"time"

	"github.com/centavo-app/centavo/internal/domain"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func collect(it PeriodIterator, from, to time.Time) []time.Time {
	var dates []time.Time
	for d := range it.Dates(from, to) {
		dates = append(dates, d)
	}
	return dates
}

func TestNewPeriodIterator(t *testing.T) {
	for _, period := range []domain.Period{domain.PeriodDay, domain.PeriodWeek, domain.PeriodMonth} {
		it, err := NewPeriodIterator(period)
		require.NoError(t, err, period)
		require.NotNil(t, it, period)
	}

	_, err := NewPeriodIterator(domain.PeriodYear)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedPeriod))

	_, err = NewPeriodIterator(domain.Period("decade"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedPeriod))
}

func TestDayIterator(t *testing.T) {
	it, err := NewPeriodIterator(domain.PeriodDay)
	require.NoError(t, err)

	got := collect(it, date(2024, time.January, 30), date(2024, time.February, 2))
	want := []time.Time{
		date(2024, time.January, 30),
		date(2024, time.January, 31),
		date(2024, time.February, 1),
		date(2024, time.February, 2),
	}
	assert.Equal(t, want, got)
}

func TestWeekIteratorAnchorsAtFrom(t *testing.T) {
	it, err := NewPeriodIterator(domain.PeriodWeek)
	require.NoError(t, err)

	got := collect(it, date(2024, time.January, 3), date(2024, time.January, 20))
	want := []time.Time{
		date(2024, time.January, 3),
		date(2024, time.January, 10),
		date(2024, time.January, 17),
	}
	assert.Equal(t, want, got)
}

func TestMonthIteratorStartsAtMonthStart(t *testing.T) {
	it, err := NewPeriodIterator(domain.PeriodMonth)
	require.NoError(t, err)

	// The first point is the start of from's month even when that
	// precedes from itself.
	got := collect(it, date(2024, time.January, 15), date(2024, time.March, 10))
	want := []time.Time{
		date(2024, time.January, 1),
		date(2024, time.February, 1),
		date(2024, time.March, 1),
	}
	assert.Equal(t, want, got)
}

func TestMonthIteratorCrossesYear(t *testing.T) {
	it, err := NewPeriodIterator(domain.PeriodMonth)
	require.NoError(t, err)

	got := collect(it, date(2023, time.November, 20), date(2024, time.February, 5))
	want := []time.Time{
		date(2023, time.November, 1),
		date(2023, time.December, 1),
		date(2024, time.January, 1),
		date(2024, time.February, 1),
	}
	assert.Equal(t, want, got)
}

func TestIteratorSingleDay(t *testing.T) {
	it, err := NewPeriodIterator(domain.PeriodDay)
	require.NoError(t, err)

	got := collect(it, date(2024, time.June, 15), date(2024, time.June, 15))
	assert.Equal(t, []time.Time{date(2024, time.June, 15)}, got)
}

func TestIteratorIsRestartable(t *testing.T) {
	it, err := NewPeriodIterator(domain.PeriodWeek)
	require.NoError(t, err)

	from, to := date(2024, time.March, 1), date(2024, time.March, 31)
	first := collect(it, from, to)
	second := collect(it, from, to)
	assert.Equal(t, first, second)
	assert.Len(t, first, 5)
}

func TestIteratorEarlyBreak(t *testing.T) {
	it, err := NewPeriodIterator(domain.PeriodDay)
	require.NoError(t, err)

	var seen int
	for range it.Dates(date(2024, time.January, 1), date(2024, time.December, 31)) {
		seen++
		if seen == 3 {
			break
		}
	}
	assert.Equal(t, 3, seen)
}
