package selection

import (
	"sort"

	"github.com/wonny/valuequant/backend/internal/contracts"
	"github.com/wonny/valuequant/backend/pkg/logger"
)

// DefaultTopN is the portfolio size used when none is configured
const DefaultTopN = 50

// Selector orders scored symbols and keeps the best N
// ⭐ SSOT: 정렬/상위 N 선택은 여기서만
type Selector struct {
	topN   int
	logger *logger.Logger
}

// NewSelector creates a selector keeping topN symbols (≤ 0 → DefaultTopN)
func NewSelector(topN int, log *logger.Logger) *Selector {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Selector{topN: topN, logger: log.Module("selector")}
}

// TopN returns the configured selection size
func (s *Selector) TopN() int {
	return s.topN
}

// Select sorts ascending by score (lower is cheaper), keeps the first N
// and assigns positions 0..k-1. Equal scores keep their input order.
// The input slice is not reordered.
func (s *Selector) Select(scored []contracts.ScoredSymbol) ([]contracts.ScoredSymbol, error) {
	if len(scored) == 0 {
		return nil, &contracts.EmptySelectionError{Stage: "selection"}
	}

	sorted := make([]contracts.ScoredSymbol, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score < sorted[j].Score
	})

	k := min(s.topN, len(sorted))
	selected := sorted[:k:k]
	for i := range selected {
		selected[i].Position = i
	}

	s.logger.WithFields(logger.Fields{
		"candidates": len(scored),
		"selected":   k,
		"top_n":      s.topN,
	}).Info("Selection completed")

	return selected, nil
}
