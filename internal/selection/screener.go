package selection

import (
	"github.com/wonny/valuequant/backend/internal/contracts"
	"github.com/wonny/valuequant/backend/pkg/logger"
)

// Filter reasons
const (
	ReasonNoPrice       = "no_price"
	ReasonNoPE          = "no_pe"
	ReasonNonPositivePE = "non_positive_pe"
)

// Screener implements the single-metric hard cut
// ⭐ SSOT: P/E 스크리닝 로직은 여기서만
type Screener struct {
	logger *logger.Logger
}

// ScreenResult holds the surviving symbols and per-reason drop counts
type ScreenResult struct {
	Passed   []contracts.ScoredSymbol
	Filtered map[string]int // reason → count
	Dropped  map[string]string
}

// NewScreener creates a new screener
func NewScreener(log *logger.Logger) *Screener {
	return &Screener{logger: log.Module("screener")}
}

// Screen keeps symbols with a positive price and a positive P/E. Each
// survivor is scored by its raw P/E so the selector can sort ascending.
// Universe order is preserved.
func (s *Screener) Screen(universe *contracts.Universe) *ScreenResult {
	result := &ScreenResult{
		Passed:   make([]contracts.ScoredSymbol, 0, universe.Count()),
		Filtered: make(map[string]int),
		Dropped:  make(map[string]string),
	}

	for _, record := range universe.Records {
		reason := checkConditions(record)
		if reason != "" {
			result.Filtered[reason]++
			result.Dropped[record.Ticker] = reason
			continue
		}

		pe := record.Metric(contracts.MetricPE).Value
		result.Passed = append(result.Passed, contracts.ScoredSymbol{
			Record: record,
			Score:  pe,
		})
	}

	s.logger.WithFields(logger.Fields{
		"input":    universe.Count(),
		"passed":   len(result.Passed),
		"filtered": result.Filtered,
	}).Info("Screening completed")

	return result
}

// checkConditions returns the first failing reason, or "" when the record passes
func checkConditions(record contracts.SymbolRecord) string {
	if record.Price <= 0 {
		return ReasonNoPrice
	}
	pe := record.Metric(contracts.MetricPE)
	if !pe.Valid {
		return ReasonNoPE
	}
	if pe.Value <= 0 {
		return ReasonNonPositivePE
	}
	return ""
}
