package balance

import (
	"context"
	"fmt"
	"time"

	"github.com/centavo-app/centavo/internal/domain"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type accountBalancer interface {
	// BalanceAt returns one account's native balance and currency at a
	// date.
	BalanceAt(ctx context.Context, accountID uuid.UUID, asOf time.Time) (decimal.Decimal, string, error)
}

// Service is the balance reporting API. It validates request parameters
// before any data access and runs the matching strategy through the
// engine. The single-account path is delegated to the snapshot service.
type Service struct {
	engine   *Engine
	factory  *Factory
	balancer accountBalancer
}

// NewService returns a configured balance service.
func NewService(engine *Engine, factory *Factory, balancer accountBalancer) (*Service, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is nil")
	}
	if factory == nil {
		return nil, fmt.Errorf("strategy factory is nil")
	}
	if balancer == nil {
		return nil, fmt.Errorf("account balancer is nil")
	}

	return &Service{engine: engine, factory: factory, balancer: balancer}, nil
}

// TotalBalance returns the user's total balance as of a date, converted
// to baseCurrency.
func (s *Service) TotalBalance(ctx context.Context, userID uuid.UUID, asOf time.Time, baseCurrency string) (decimal.Decimal, error) {
	result, err := s.engine.Calculate(ctx, s.factory.TotalAt(userID, asOf, baseCurrency))
	if err != nil {
		return decimal.Decimal{}, err
	}
	return result.Total, nil
}

// AccountsBalance returns per-account balances as of a date plus the
// total converted to baseCurrency.
func (s *Service) AccountsBalance(ctx context.Context, userID uuid.UUID, asOf time.Time, baseCurrency string) ([]domain.AccountBalance, decimal.Decimal, error) {
	result, err := s.engine.Calculate(ctx, s.factory.PerAccountAt(userID, asOf, baseCurrency))
	if err != nil {
		return nil, decimal.Decimal{}, err
	}
	return result.Accounts, result.Total, nil
}

// BalanceHistory returns a balance series over [from, to] sampled at the
// given granularity, converted to baseCurrency. accountID optionally
// narrows the series to one account.
func (s *Service) BalanceHistory(ctx context.Context, userID uuid.UUID, from, to time.Time, period domain.Period, baseCurrency string, accountID *uuid.UUID) ([]domain.BalancePoint, error) {
	from, to = domain.DateOf(from), domain.DateOf(to)

	if from.After(to) {
		return nil, errors.Wrapf(domain.ErrInvalidDateRange, "from %s, to %s",
			from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	if !period.SupportsHistory() {
		return nil, errors.Wrapf(domain.ErrUnsupportedPeriod, "period %q cannot sample balance history", period)
	}

	strategy, err := s.factory.History(userID, from, to, period, baseCurrency, accountID)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Calculate(ctx, strategy)
	if err != nil {
		return nil, err
	}
	return result.Points, nil
}

// AccountBalance returns one account's native balance and currency as of
// a date.
func (s *Service) AccountBalance(ctx context.Context, accountID uuid.UUID, asOf time.Time) (decimal.Decimal, string, error) {
	return s.balancer.BalanceAt(ctx, accountID, domain.DateOf(asOf))
}
