// Package balance computes account balances from snapshots and transactions.
//
// The package implements three strategies behind a common interface: total
// balance at a date, per-account balances at a date, and a balance history
// series over a range. Every strategy batch-loads the data it needs in a
// fixed number of store calls and then works in memory, so cost does not
// grow with the number of accounts or sampled dates.
package balance

import (
	"iter"
	"time"

	"github.com/centavo-app/centavo/internal/domain"
	"github.com/pkg/errors"
)

// PeriodIterator enumerates the sample dates of a reporting range. The
// returned sequence is finite, can be ranged over any number of times and
// performs no I/O.
type PeriodIterator interface {
	// Dates yields sample dates for the inclusive range [from, to].
	Dates(from, to time.Time) iter.Seq[time.Time]
}

// NewPeriodIterator returns the iterator for a granularity. Year is not a
// supported history granularity.
func NewPeriodIterator(period domain.Period) (PeriodIterator, error) {
	switch period {
	case domain.PeriodDay:
		return dayIterator{}, nil
	case domain.PeriodWeek:
		return weekIterator{}, nil
	case domain.PeriodMonth:
		return monthIterator{}, nil
	default:
		return nil, errors.Wrapf(domain.ErrUnsupportedPeriod, "period %q", period)
	}
}

// dayIterator yields every date of the range.
type dayIterator struct{}

func (dayIterator) Dates(from, to time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			if !yield(d) {
				return
			}
		}
	}
}

// weekIterator yields every seventh date, anchored at the range start.
type weekIterator struct{}

func (weekIterator) Dates(from, to time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for d := from; !d.After(to); d = d.AddDate(0, 0, 7) {
			if !yield(d) {
				return
			}
		}
	}
}

// monthIterator yields the first day of every month the range touches.
// The first date is the month start of from, which may fall before from
// itself; history points sampled there represent the opening balance of
// the range.
type monthIterator struct{}

func (monthIterator) Dates(from, to time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for d := domain.MonthStart(from); !d.After(to); d = domain.NextMonthStart(d) {
			if !yield(d) {
				return
			}
		}
	}
}
