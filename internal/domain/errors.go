package domain

import "github.com/pkg/errors"

var (
	// ErrAccountNotFound is returned when an account does not exist or is
	// not visible to the caller.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionNotFound is returned when a transaction does not exist
	// or is not visible to the caller.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrInvalidInput is the cause of every entity validation failure, so
	// callers can tell bad input apart from store failures.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidDateRange is returned when a reporting range has from after to.
	ErrInvalidDateRange = errors.New("'from' must be before or equal to 'to'")

	// ErrUnsupportedPeriod is returned when a reporting granularity is not
	// supported by the requested report.
	ErrUnsupportedPeriod = errors.New("unsupported period")
)
