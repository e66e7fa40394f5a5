package s2_signals

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/valuequant/backend/internal/contracts"
)

// CompositeScore is the unweighted mean of the given percentiles
func CompositeScore(percentiles []float64) float64 {
	if len(percentiles) == 0 {
		return 0
	}
	return stat.Mean(percentiles, nil)
}

// Score attaches a composite score to every record of the universe, using
// exactly the metrics in the table. Output order is universe order.
func Score(universe *contracts.Universe, table *contracts.PercentileTable) ([]contracts.ScoredSymbol, error) {
	if len(table.Ranks) != universe.Count() {
		return nil, fmt.Errorf("percentile table has %d rows, universe has %d", len(table.Ranks), universe.Count())
	}

	scored := make([]contracts.ScoredSymbol, universe.Count())
	values := make([]float64, len(table.Metrics))
	for i, record := range universe.Records {
		percentiles := make(map[contracts.Metric]float64, len(table.Metrics))
		for j, m := range table.Metrics {
			p, ok := table.Rank(i, m)
			if !ok {
				return nil, fmt.Errorf("%s: no percentile for %s", record.Ticker, m)
			}
			percentiles[m] = p
			values[j] = p
		}

		scored[i] = contracts.ScoredSymbol{
			Record:      record,
			Percentiles: percentiles,
			Score:       CompositeScore(values),
		}
	}
	return scored, nil
}
