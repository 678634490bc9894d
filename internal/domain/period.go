package domain

// Period granularity of a reporting range.
type Period string

const (
	// PeriodDay one sample per day.
	PeriodDay Period = "day"
	// PeriodWeek one sample every seven days.
	PeriodWeek Period = "week"
	// PeriodMonth one sample per calendar month.
	PeriodMonth Period = "month"
	// PeriodYear one sample per calendar year. Recognized as a period
	// value but not supported by balance history.
	PeriodYear Period = "year"
)

// String returns the string representation.
func (p Period) String() string {
	return string(p)
}

// IsValid checks if the Period value is valid.
func (p Period) IsValid() bool {
	return p == PeriodDay || p == PeriodWeek || p == PeriodMonth || p == PeriodYear
}

// SupportsHistory reports whether balance history can be sampled at this
// granularity.
func (p Period) SupportsHistory() bool {
	return p == PeriodDay || p == PeriodWeek || p == PeriodMonth
}
