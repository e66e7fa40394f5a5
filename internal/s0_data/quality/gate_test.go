package quality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/valuequant/backend/internal/contracts"
)

func record(ticker string, pe, pb contracts.OptionalFloat) contracts.SymbolRecord {
	return contracts.SymbolRecord{
		Ticker: ticker,
		Price:  10,
		Metrics: map[contracts.Metric]contracts.OptionalFloat{
			contracts.MetricPE: pe,
			contracts.MetricPB: pb,
		},
	}
}

func TestGate_Check(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	universe := contracts.NewUniverse(date, []contracts.SymbolRecord{
		record("AAA", contracts.Some(10), contracts.Some(1.5)),
		record("BBB", contracts.Some(12), contracts.None()),
		record("CCC", contracts.None(), contracts.None()),
		record("DDD", contracts.Some(8), contracts.Some(2)),
	}, nil)
	metrics := []contracts.MetricSpec{{ID: contracts.MetricPE}, {ID: contracts.MetricPB}}

	snapshot := NewGate(DefaultConfig()).Check(5, universe, metrics)

	assert.Equal(t, date, snapshot.Date)
	assert.Equal(t, 5, snapshot.Requested)
	assert.Equal(t, 4, snapshot.Valid)
	assert.InDelta(t, 0.8, snapshot.PriceCoverage, 1e-9)
	assert.InDelta(t, 0.75, snapshot.Coverage[contracts.MetricPE], 1e-9)
	assert.InDelta(t, 0.5, snapshot.Coverage[contracts.MetricPB], 1e-9)
	assert.InDelta(t, 0.5*0.8+0.5*0.625, snapshot.Score, 1e-9)
	assert.False(t, snapshot.Passed)
	assert.Equal(t, []string{"price", "pe_ratio", "pb_ratio"}, snapshot.Failures)
}

func TestGate_CheckPassing(t *testing.T) {
	universe := contracts.NewUniverse(time.Now(), []contracts.SymbolRecord{
		record("AAA", contracts.Some(10), contracts.Some(1.5)),
	}, nil)

	snapshot := NewGate(DefaultConfig()).Check(1, universe, []contracts.MetricSpec{{ID: contracts.MetricPE}})

	assert.True(t, snapshot.Passed)
	assert.Empty(t, snapshot.Failures)
	assert.InDelta(t, 1.0, snapshot.Score, 1e-9)
}

func TestGate_EmptyUniverse(t *testing.T) {
	universe := contracts.NewUniverse(time.Now(), nil, nil)

	snapshot := NewGate(DefaultConfig()).Check(0, universe, nil)

	assert.Zero(t, snapshot.PriceCoverage)
	assert.False(t, snapshot.Passed)
}
