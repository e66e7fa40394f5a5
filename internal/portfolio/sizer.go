package portfolio

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/valuequant/backend/internal/contracts"
	"github.com/wonny/valuequant/backend/pkg/logger"
)

// Sizer implements equal-weight whole-share position sizing
// ⭐ SSOT: 포지션 사이징 로직은 여기서만
type Sizer struct {
	logger *logger.Logger
}

// NewSizer creates a new position sizer
func NewSizer(log *logger.Logger) *Sizer {
	return &Sizer{logger: log.Module("sizer")}
}

// Size splits capital equally across the selected symbols and buys
// floor(capital / k / price) whole shares of each. The arithmetic is exact
// decimal division with truncation, so the total cost never exceeds capital.
func (s *Sizer) Size(date time.Time, strategy contracts.Strategy, capital decimal.Decimal, selected []contracts.ScoredSymbol) (*contracts.TargetPortfolio, error) {
	if !capital.IsPositive() {
		return nil, &contracts.InvalidCapitalError{Input: capital.String(), Reason: "must be greater than zero"}
	}
	if len(selected) == 0 {
		return nil, &contracts.EmptySelectionError{Stage: "position sizing"}
	}

	k := decimal.NewFromInt(int64(len(selected)))
	target := &contracts.TargetPortfolio{
		Date:         date,
		Strategy:     strategy,
		Capital:      capital,
		PositionSize: capital.Div(k),
		Positions:    make([]contracts.TargetPosition, 0, len(selected)),
	}

	for _, sym := range selected {
		if sym.Record.Price <= 0 {
			return nil, fmt.Errorf("size %s: %w", sym.Record.Ticker,
				&contracts.MissingFieldError{Ticker: sym.Record.Ticker, Field: "latestPrice"})
		}
		price := decimal.NewFromFloat(sym.Record.Price)
		shares := WholeShares(capital, k, price)

		target.Positions = append(target.Positions, contracts.TargetPosition{
			Symbol: sym,
			Shares: shares,
			Cost:   price.Mul(decimal.NewFromInt(shares)),
		})
	}

	s.logger.WithFields(logger.Fields{
		"positions":     target.Count(),
		"capital":       capital.StringFixed(2),
		"position_size": target.PositionSize.StringFixed(2),
		"invested":      target.Invested().StringFixed(2),
		"cash":          target.Cash().StringFixed(2),
	}).Info("Portfolio sized")

	return target, nil
}

// WholeShares returns floor(capital / (k × price))
func WholeShares(capital, k, price decimal.Decimal) int64 {
	// QuoRem(…, 0): 정수 몫을 절사로 계산 (반올림 없음)
	q, _ := capital.QuoRem(k.Mul(price), 0)
	return q.IntPart()
}
