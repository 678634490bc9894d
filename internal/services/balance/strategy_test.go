package balance

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStrategy struct {
	result Result
	err    error
	calls  int
}

func (s *stubStrategy) Name() string { return "stub" }

func (s *stubStrategy) Execute(_ context.Context) (Result, error) {
	s.calls++
	return s.result, s.err
}

func TestEngineCalculate(t *testing.T) {
	engine := NewEngine(nil)
	strategy := &stubStrategy{result: Result{Total: dec("42")}}

	result, err := engine.Calculate(context.Background(), strategy)
	require.NoError(t, err)

	assertDec(t, "42", result.Total)
	assert.Equal(t, 1, strategy.calls)
}

func TestEngineCalculatePropagatesError(t *testing.T) {
	engine := NewEngine(nil)
	strategy := &stubStrategy{err: errors.New("boom")}

	_, err := engine.Calculate(context.Background(), strategy)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
