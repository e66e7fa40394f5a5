package quality

import (
	"time"

	"github.com/wonny/valuequant/backend/internal/contracts"
)

// Config holds quality gate thresholds (0..1)
type Config struct {
	MinPriceCoverage  float64 `yaml:"min_price_coverage"`  // 0.95
	MinMetricCoverage float64 `yaml:"min_metric_coverage"` // 0.80
}

// DefaultConfig returns the thresholds used when none are configured
func DefaultConfig() Config {
	return Config{
		MinPriceCoverage:  0.95,
		MinMetricCoverage: 0.80,
	}
}

// Snapshot is the coverage of an assembled universe before imputation
type Snapshot struct {
	Date          time.Time                    `json:"date"`
	Requested     int                          `json:"requested"`
	Valid         int                          `json:"valid"`
	PriceCoverage float64                      `json:"price_coverage"`
	Coverage      map[contracts.Metric]float64 `json:"coverage"`
	Score         float64                      `json:"score"`
	Passed        bool                         `json:"passed"`
	Failures      []string                     `json:"failures,omitempty"`
}

// Gate measures how much of the requested universe came back usable.
// 품질 미달은 경고만, 실행을 중단하지 않음
type Gate struct {
	config Config
}

// NewGate creates a new quality gate
func NewGate(config Config) *Gate {
	return &Gate{config: config}
}

// Check computes price and per-metric coverage
// ⭐ SSOT: S0 → S2 품질 검증
func (g *Gate) Check(requested int, universe *contracts.Universe, metrics []contracts.MetricSpec) *Snapshot {
	snapshot := &Snapshot{
		Date:      universe.Date,
		Requested: requested,
		Valid:     universe.Count(),
		Coverage:  make(map[contracts.Metric]float64, len(metrics)),
		Passed:    true,
	}

	if requested > 0 {
		snapshot.PriceCoverage = float64(snapshot.Valid) / float64(requested)
	}
	if snapshot.PriceCoverage < g.config.MinPriceCoverage {
		snapshot.fail("price")
	}

	// 가격 커버리지 50%, 지표 커버리지 평균 50%
	metricTotal := 0.0
	for _, spec := range metrics {
		cov := coverage(universe.Column(spec.ID))
		snapshot.Coverage[spec.ID] = cov
		metricTotal += cov
		if cov < g.config.MinMetricCoverage {
			snapshot.fail(string(spec.ID))
		}
	}

	snapshot.Score = snapshot.PriceCoverage
	if len(metrics) > 0 {
		snapshot.Score = 0.5*snapshot.PriceCoverage + 0.5*metricTotal/float64(len(metrics))
	}

	return snapshot
}

func (s *Snapshot) fail(field string) {
	s.Passed = false
	s.Failures = append(s.Failures, field)
}

func coverage(column []contracts.OptionalFloat) float64 {
	if len(column) == 0 {
		return 0
	}
	present := 0
	for _, v := range column {
		if _, ok := v.Get(); ok {
			present++
		}
	}
	return float64(present) / float64(len(column))
}
