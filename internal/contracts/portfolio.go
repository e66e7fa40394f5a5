package contracts

import (
	"time"

	"github.com/shopspring/decimal"
)

// TargetPortfolio is the equal-weight allocation of one run
// ⭐ SSOT: S5 포트폴리오 결과 전달
type TargetPortfolio struct {
	Date         time.Time        `json:"date"`
	Strategy     Strategy         `json:"strategy"`
	Capital      decimal.Decimal  `json:"capital"`
	PositionSize decimal.Decimal  `json:"position_size"` // capital / k
	Positions    []TargetPosition `json:"positions"`
}

// TargetPosition is one selected symbol with its share count
type TargetPosition struct {
	Symbol ScoredSymbol    `json:"symbol"`
	Shares int64           `json:"shares"`
	Cost   decimal.Decimal `json:"cost"` // shares × price
}

// Count returns the number of positions
func (p *TargetPortfolio) Count() int {
	return len(p.Positions)
}

// Invested returns the sum of all position costs
func (p *TargetPortfolio) Invested() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range p.Positions {
		total = total.Add(pos.Cost)
	}
	return total
}

// Cash returns the capital left unallocated after rounding down
func (p *TargetPortfolio) Cash() decimal.Decimal {
	return p.Capital.Sub(p.Invested())
}

// GetPosition finds a position by ticker
func (p *TargetPortfolio) GetPosition(ticker string) (*TargetPosition, bool) {
	for i := range p.Positions {
		if p.Positions[i].Symbol.Record.Ticker == ticker {
			return &p.Positions[i], true
		}
	}
	return nil, false
}
