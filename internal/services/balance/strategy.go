package balance

import (
	"context"
	"time"

	"github.com/centavo-app/centavo/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Strategy computes one balance report. A strategy owns its data loading:
// it batch-fetches everything it needs up front and never issues store
// calls inside per-account or per-date loops.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string
	// Execute loads data, computes the result and returns it.
	Execute(ctx context.Context) (Result, error)
}

// Result output of a strategy run. The at-date strategies set Total, the
// per-account strategy additionally sets Accounts, and the history
// strategy sets Points.
type Result struct {
	Total    decimal.Decimal
	Accounts []domain.AccountBalance
	Points   []domain.BalancePoint
}

// Engine runs balance strategies. It holds no data access of its own and
// exists as the single seam where runs are timed and logged.
type Engine struct {
	logger *zap.Logger
}

// NewEngine returns an engine logging through the given logger.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Calculate executes the strategy and returns its result.
func (e *Engine) Calculate(ctx context.Context, strategy Strategy) (Result, error) {
	start := time.Now()

	result, err := strategy.Execute(ctx)
	if err != nil {
		return Result{}, err
	}

	e.logger.Debug("balance strategy executed",
		zap.String("strategy", strategy.Name()),
		zap.Duration("took", time.Since(start)))

	return result, nil
}
