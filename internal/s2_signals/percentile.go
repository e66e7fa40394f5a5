package s2_signals

import (
	"fmt"
	"sort"

	"github.com/wonny/valuequant/backend/internal/contracts"
)

// PercentileKind selects how ties and bounds are treated
type PercentileKind string

const (
	// PercentileMidrank maps the minimum to 0 and the maximum to 1; tied
	// values share the midpoint of the positions they occupy. Its numbers
	// differ from the legacy workbook; pick PercentileScipyRank to reproduce those.
	PercentileMidrank PercentileKind = "midrank"

	// PercentileScipyRank matches scipy percentileofscore(kind="rank") / 100.
	// 최소값이 0이 아니라 1/n 근처에서 시작함
	PercentileScipyRank PercentileKind = "scipy_rank"
)

// ParsePercentileKind validates a configured kind ("" → midrank)
func ParsePercentileKind(s string) (PercentileKind, error) {
	switch PercentileKind(s) {
	case "", PercentileMidrank:
		return PercentileMidrank, nil
	case PercentileScipyRank:
		return PercentileScipyRank, nil
	}
	return "", fmt.Errorf("unknown percentile kind %q (want %s or %s)", s, PercentileMidrank, PercentileScipyRank)
}

// PercentileRanks returns the percentile of every value within values, in
// input order. Lower values get lower percentiles. All results are in [0,1].
func PercentileRanks(values []float64, kind PercentileKind) []float64 {
	n := len(values)
	ranks := make([]float64, n)
	if n == 0 {
		return ranks
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	for i, v := range values {
		less := sort.SearchFloat64s(sorted, v)
		// lessOrEqual: v 이하 값의 개수 (자기 자신 포함)
		lessOrEqual := sort.Search(n, func(j int) bool { return sorted[j] > v })
		ranks[i] = percentile(less, lessOrEqual, n, kind)
	}
	return ranks
}

func percentile(less, lessOrEqual, n int, kind PercentileKind) float64 {
	if kind == PercentileScipyRank {
		extra := 0
		if lessOrEqual > less {
			extra = 1
		}
		return float64(less+lessOrEqual+extra) / float64(2*n)
	}

	if n == 1 {
		return 1
	}
	return float64(less+lessOrEqual-1) / float64(2*(n-1))
}

// Ranker converts imputed metric columns into a percentile table
// ⭐ SSOT: 퍼센타일 계산은 여기서만
type Ranker struct {
	kind PercentileKind
}

// NewRanker creates a ranker using the given percentile kind
func NewRanker(kind PercentileKind) *Ranker {
	if kind == "" {
		kind = PercentileMidrank
	}
	return &Ranker{kind: kind}
}

// Kind returns the percentile kind in use
func (r *Ranker) Kind() PercentileKind {
	return r.kind
}

// Rank computes, once per metric, every symbol's percentile over the whole
// universe. The universe must already be imputed; an absent value is an error.
func (r *Ranker) Rank(universe *contracts.Universe, metrics []contracts.MetricSpec) (*contracts.PercentileTable, error) {
	table := &contracts.PercentileTable{
		Metrics: make([]contracts.Metric, 0, len(metrics)),
		Ranks:   make([]map[contracts.Metric]float64, universe.Count()),
	}
	for i := range table.Ranks {
		table.Ranks[i] = make(map[contracts.Metric]float64, len(metrics))
	}

	for _, spec := range metrics {
		col := universe.Column(spec.ID)
		values := make([]float64, len(col))
		for i, v := range col {
			if !v.Valid {
				return nil, fmt.Errorf("rank %s: %s has no value (impute first)", spec.ID, universe.Records[i].Ticker)
			}
			values[i] = v.Value
		}

		for i, p := range PercentileRanks(values, r.kind) {
			table.Ranks[i][spec.ID] = p
		}
		table.Metrics = append(table.Metrics, spec.ID)
	}

	return table, nil
}
