package domain

import "time"

// LedgerEpoch lower bound for full-history sums. No transaction may be
// dated before it.
var LedgerEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// DateOf truncates t to its calendar date, midnight UTC. All dates in the
// ledger are carried in this form so they compare as plain days.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first day of d's month. Snapshots are always
// taken at month starts.
func MonthStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NextMonthStart returns the first day of the month after d's.
func NextMonthStart(d time.Time) time.Time {
	return MonthStart(d).AddDate(0, 1, 0)
}
