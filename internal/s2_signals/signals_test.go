package s2_signals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/valuequant/backend/internal/contracts"
	"github.com/wonny/valuequant/backend/pkg/logger"
)

var runDate = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

// universe builds records from rows of {ticker, metric values...} following metrics order
func universe(metrics []contracts.MetricSpec, rows map[string][]contracts.OptionalFloat, order ...string) *contracts.Universe {
	records := make([]contracts.SymbolRecord, 0, len(order))
	for _, ticker := range order {
		values := rows[ticker]
		r := contracts.SymbolRecord{Ticker: ticker, Price: 10, Metrics: map[contracts.Metric]contracts.OptionalFloat{}}
		for i, spec := range metrics {
			r.Metrics[spec.ID] = values[i]
		}
		records = append(records, r)
	}
	return contracts.NewUniverse(runDate, records, nil)
}

func TestPercentileRanks_Midrank(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []float64
	}{
		{"tie shares midpoint", []float64{10, 10, 20}, []float64{0.25, 0.25, 1.0}},
		{"distinct", []float64{3, 1, 2}, []float64{1.0, 0, 0.5}},
		{"single", []float64{42}, []float64{1}},
		{"all equal", []float64{5, 5, 5, 5}, []float64{0.5, 0.5, 0.5, 0.5}},
		{"empty", nil, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentileRanks(tt.values, PercentileMidrank)
			assert.InDeltaSlice(t, tt.want, got, 1e-12)
		})
	}
}

func TestPercentileRanks_ScipyRank(t *testing.T) {
	got := PercentileRanks([]float64{10, 10, 20}, PercentileScipyRank)
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 1.0}, got, 1e-12)

	got = PercentileRanks([]float64{1, 2, 3, 4}, PercentileScipyRank)
	assert.InDeltaSlice(t, []float64{0.25, 0.5, 0.75, 1.0}, got, 1e-12)
}

func TestPercentileRanks_Bounds(t *testing.T) {
	values := []float64{-4.2, 17, 3.3, 3.3, 0, 120, 8, 8, 8, -1}
	for _, kind := range []PercentileKind{PercentileMidrank, PercentileScipyRank} {
		for i, p := range PercentileRanks(values, kind) {
			assert.GreaterOrEqual(t, p, 0.0, "%s[%d]", kind, i)
			assert.LessOrEqual(t, p, 1.0, "%s[%d]", kind, i)
		}
	}
}

func TestParsePercentileKind(t *testing.T) {
	k, err := ParsePercentileKind("")
	require.NoError(t, err)
	assert.Equal(t, PercentileMidrank, k)

	k, err = ParsePercentileKind("scipy_rank")
	require.NoError(t, err)
	assert.Equal(t, PercentileScipyRank, k)

	_, err = ParsePercentileKind("weak")
	assert.Error(t, err)
}

func TestImputer_FillsColumnMean(t *testing.T) {
	metrics := []contracts.MetricSpec{contracts.PriceToEarnings, contracts.EVToEBITDA}
	u := universe(metrics, map[string][]contracts.OptionalFloat{
		"AAA": {contracts.Some(10), contracts.Some(6)},
		"BBB": {contracts.Some(20), contracts.None()},
		"CCC": {contracts.None(), contracts.Some(12)},
	}, "AAA", "BBB", "CCC")

	imputed, err := NewImputer(logger.Nop()).Impute(u, metrics)
	require.NoError(t, err)

	assert.Equal(t, contracts.Some(9), imputed.Records[1].Metric(contracts.MetricEVEBITDA))
	assert.Equal(t, contracts.Some(15), imputed.Records[2].Metric(contracts.MetricPE))

	// 입력은 변경되지 않음
	assert.False(t, u.Records[1].Metric(contracts.MetricEVEBITDA).Valid)

	for _, r := range imputed.Records {
		for _, spec := range metrics {
			assert.True(t, r.Metric(spec.ID).Valid, "%s %s", r.Ticker, spec.ID)
		}
	}
}

func TestImputer_EmptyMetric(t *testing.T) {
	metrics := []contracts.MetricSpec{contracts.PriceToEarnings, contracts.PriceToBook}
	u := universe(metrics, map[string][]contracts.OptionalFloat{
		"AAA": {contracts.Some(10), contracts.None()},
		"BBB": {contracts.Some(20), contracts.None()},
	}, "AAA", "BBB")

	_, err := NewImputer(logger.Nop()).Impute(u, metrics)

	var emptyErr *contracts.EmptyMetricError
	require.True(t, errors.As(err, &emptyErr))
	assert.Equal(t, contracts.MetricPB, emptyErr.Metric)
	assert.True(t, contracts.IsFatal(err))
}

func TestRanker_RequiresImputedValues(t *testing.T) {
	metrics := contracts.PEOnlyMetrics()
	u := universe(metrics, map[string][]contracts.OptionalFloat{
		"AAA": {contracts.None()},
	}, "AAA")

	_, err := NewRanker(PercentileMidrank).Rank(u, metrics)
	assert.Error(t, err)
}

func TestCompositeScore(t *testing.T) {
	assert.InDelta(t, 0.5, CompositeScore([]float64{0, 1}), 1e-12)
	assert.InDelta(t, 0.25, CompositeScore([]float64{0.25}), 1e-12)
	assert.Zero(t, CompositeScore(nil))
}

func TestBuilder_RobustValue(t *testing.T) {
	metrics := contracts.RobustValueMetrics()
	u := universe(metrics, map[string][]contracts.OptionalFloat{
		"CHEAP": {contracts.Some(5), contracts.Some(0.5), contracts.Some(0.4), contracts.Some(3), contracts.Some(2)},
		"MID":   {contracts.Some(15), contracts.Some(2), contracts.Some(2), contracts.None(), contracts.Some(6)},
		"RICH":  {contracts.Some(40), contracts.Some(9), contracts.Some(8), contracts.Some(25), contracts.Some(20)},
	}, "CHEAP", "MID", "RICH")

	b := NewBuilder(NewImputer(logger.Nop()), NewRanker(PercentileMidrank), logger.Nop())
	set, err := b.Build(context.Background(), u, metrics)
	require.NoError(t, err)
	require.Len(t, set.Scored, 3)

	// MID의 EV/EBITDA는 (3+25)/2 = 14 로 채워져 가운데 순위
	assert.Equal(t, contracts.Some(14), set.Universe.Records[1].Metric(contracts.MetricEVEBITDA))
	assert.InDelta(t, 0.5, set.Scored[1].Percentiles[contracts.MetricEVEBITDA], 1e-12)

	assert.InDelta(t, 0.0, set.Scored[0].Score, 1e-12)
	assert.InDelta(t, 0.5, set.Scored[1].Score, 1e-12)
	assert.InDelta(t, 1.0, set.Scored[2].Score, 1e-12)

	for _, s := range set.Scored {
		assert.Len(t, s.Percentiles, len(metrics))
		assert.GreaterOrEqual(t, s.Score, 0.0)
		assert.LessOrEqual(t, s.Score, 1.0)
	}
}

func TestBuilder_EmptyMetricAbortsRun(t *testing.T) {
	metrics := []contracts.MetricSpec{contracts.PriceToEarnings, contracts.EVToGrossProfit}
	u := universe(metrics, map[string][]contracts.OptionalFloat{
		"AAA": {contracts.Some(10), contracts.None()},
	}, "AAA")

	b := NewBuilder(NewImputer(logger.Nop()), NewRanker(""), logger.Nop())
	set, err := b.Build(context.Background(), u, metrics)

	assert.Nil(t, set)
	assert.True(t, contracts.IsFatal(err))
}
