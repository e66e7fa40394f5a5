package portfolio

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/valuequant/backend/internal/contracts"
	"github.com/wonny/valuequant/backend/pkg/logger"
)

var runDate = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func selected(prices ...float64) []contracts.ScoredSymbol {
	out := make([]contracts.ScoredSymbol, len(prices))
	for i, p := range prices {
		out[i] = contracts.ScoredSymbol{
			Record:   contracts.SymbolRecord{Ticker: fmt.Sprintf("S%d", i), Price: p},
			Position: i,
		}
	}
	return out
}

func TestSizer_EqualWeightScenario(t *testing.T) {
	p, err := NewSizer(logger.Nop()).Size(runDate, contracts.StrategyPE, decimal.NewFromInt(10000), selected(100, 333))
	require.NoError(t, err)

	require.Equal(t, 2, p.Count())
	assert.Equal(t, int64(50), p.Positions[0].Shares)
	assert.Equal(t, int64(15), p.Positions[1].Shares)
	assert.True(t, p.PositionSize.Equal(decimal.NewFromInt(5000)))
	assert.True(t, p.Invested().Equal(decimal.NewFromInt(9995)))
	assert.True(t, p.Cash().Equal(decimal.NewFromInt(5)))
}

func TestSizer_NeverOverspends(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := NewSizer(logger.Nop())

	for trial := 0; trial < 200; trial++ {
		k := 1 + rng.Intn(60)
		prices := make([]float64, k)
		for i := range prices {
			prices[i] = float64(1+rng.Intn(500000)) / 100
		}
		capital := decimal.NewFromInt(int64(1 + rng.Intn(5_000_000))).Div(decimal.NewFromInt(100))

		p, err := s.Size(runDate, contracts.StrategyRV, capital, selected(prices...))
		require.NoError(t, err)

		assert.True(t, p.Invested().LessThanOrEqual(capital), "trial %d: invested %s > capital %s", trial, p.Invested(), capital)
		for _, pos := range p.Positions {
			assert.GreaterOrEqual(t, pos.Shares, int64(0))
		}
	}
}

func TestSizer_PriceAboveTargetGetsZeroShares(t *testing.T) {
	p, err := NewSizer(logger.Nop()).Size(runDate, contracts.StrategyPE, decimal.NewFromInt(1000), selected(600, 10))
	require.NoError(t, err)

	assert.Equal(t, int64(0), p.Positions[0].Shares)
	assert.Equal(t, int64(50), p.Positions[1].Shares)
}

func TestSizer_InvalidInputs(t *testing.T) {
	s := NewSizer(logger.Nop())

	_, err := s.Size(runDate, contracts.StrategyPE, decimal.Zero, selected(10))
	var capErr *contracts.InvalidCapitalError
	assert.True(t, errors.As(err, &capErr))

	_, err = s.Size(runDate, contracts.StrategyPE, decimal.NewFromInt(-5), selected(10))
	assert.True(t, errors.As(err, &capErr))

	_, err = s.Size(runDate, contracts.StrategyPE, decimal.NewFromInt(1000), nil)
	var emptyErr *contracts.EmptySelectionError
	assert.True(t, errors.As(err, &emptyErr))
}

func TestWholeShares(t *testing.T) {
	tests := []struct {
		capital, k, price string
		want              int64
	}{
		{"10000", "2", "100", 50},
		{"10000", "2", "333", 15},
		{"100", "3", "33.34", 0},
		{"100", "3", "33.33", 1},
		{"1000000", "50", "0.01", 2000000},
	}

	for _, tt := range tests {
		got := WholeShares(decimal.RequireFromString(tt.capital), decimal.RequireFromString(tt.k), decimal.RequireFromString(tt.price))
		assert.Equal(t, tt.want, got, "%s / %s / %s", tt.capital, tt.k, tt.price)
	}
}
