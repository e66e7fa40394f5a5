package contracts

// PercentileTable holds, for every (symbol, metric), a rank in [0,1].
// Ranks[i] is parallel to Universe.Records[i].
type PercentileTable struct {
	Metrics []Metric
	Ranks   []map[Metric]float64
}

// Rank returns the percentile of record i for metric m
func (t *PercentileTable) Rank(i int, m Metric) (float64, bool) {
	if i < 0 || i >= len(t.Ranks) {
		return 0, false
	}
	v, ok := t.Ranks[i][m]
	return v, ok
}

// ScoredSymbol is a record with its per-metric percentiles and composite score
type ScoredSymbol struct {
	Record      SymbolRecord       `json:"record"`
	Percentiles map[Metric]float64 `json:"percentiles,omitempty"`
	Score       float64            `json:"score"`
	Position    int                `json:"position"` // 0-based, assigned by the selector
}

// Rank returns the 1-based display rank
func (s ScoredSymbol) Rank() int {
	return s.Position + 1
}

// SignalSet is the output of the scoring stage
// ⭐ SSOT: S2 → S3 점수 전달
type SignalSet struct {
	Universe    *Universe        `json:"universe"` // imputed
	Percentiles *PercentileTable `json:"-"`
	Scored      []ScoredSymbol   `json:"scored"`
}
