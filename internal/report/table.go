package report

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/valuequant/backend/internal/contracts"
)

// Column titles
const (
	ColTicker = "Ticker"
	ColPrice  = "Price"
	ColShares = "Number of Shares to Buy"
	ColScore  = "RV Score"
)

// Row is one selected symbol in output order
type Row struct {
	Rank        int                          `json:"rank"`
	Ticker      string                       `json:"ticker"`
	CompanyName string                       `json:"company_name,omitempty"`
	Price       float64                      `json:"price"`
	Shares      int64                        `json:"shares"`
	Cost        decimal.Decimal              `json:"cost"`
	Ratios      map[contracts.Metric]float64 `json:"ratios"`
	Percentiles map[contracts.Metric]float64 `json:"percentiles,omitempty"`
	Score       *float64                     `json:"rv_score,omitempty"`
}

// Table is the final output of a run, built once from the ordered selection
// ⭐ SSOT: 출력 컬럼 구성은 여기서만
type Table struct {
	Strategy     contracts.Strategy     `json:"strategy"`
	Date         time.Time              `json:"date"`
	Capital      decimal.Decimal        `json:"capital"`
	PositionSize decimal.Decimal        `json:"position_size"`
	Invested     decimal.Decimal        `json:"invested"`
	Cash         decimal.Decimal        `json:"cash"`
	Metrics      []contracts.MetricSpec `json:"-"`
	Rows         []Row                  `json:"rows"`
}

// Build assembles the output table from a sized portfolio. Percentile and
// score columns are only present for the robust value strategy.
func Build(portfolio *contracts.TargetPortfolio, metrics []contracts.MetricSpec) *Table {
	withScore := portfolio.Strategy.Composite()

	rows := make([]Row, 0, portfolio.Count())
	for _, pos := range portfolio.Positions {
		sym := pos.Symbol
		row := Row{
			Rank:        sym.Rank(),
			Ticker:      sym.Record.Ticker,
			CompanyName: sym.Record.CompanyName,
			Price:       sym.Record.Price,
			Shares:      pos.Shares,
			Cost:        pos.Cost,
			Ratios:      make(map[contracts.Metric]float64, len(metrics)),
		}
		for _, spec := range metrics {
			if v, ok := sym.Record.Metric(spec.ID).Get(); ok {
				row.Ratios[spec.ID] = v
			}
		}
		if withScore {
			row.Percentiles = make(map[contracts.Metric]float64, len(metrics))
			for _, spec := range metrics {
				row.Percentiles[spec.ID] = sym.Percentiles[spec.ID]
			}
			score := sym.Score
			row.Score = &score
		}
		rows = append(rows, row)
	}

	return &Table{
		Strategy:     portfolio.Strategy,
		Date:         portfolio.Date,
		Capital:      portfolio.Capital,
		PositionSize: portfolio.PositionSize,
		Invested:     portfolio.Invested(),
		Cash:         portfolio.Cash(),
		Metrics:      metrics,
		Rows:         rows,
	}
}

// Headers returns the column titles in output order
func (t *Table) Headers() []string {
	headers := []string{ColTicker, ColPrice, ColShares}
	for _, spec := range t.Metrics {
		headers = append(headers, spec.Name)
		if t.hasScore() {
			headers = append(headers, spec.PercentileName)
		}
	}
	if t.hasScore() {
		headers = append(headers, ColScore)
	}
	return headers
}

// Cells returns row i formatted for text outputs, parallel to Headers
func (t *Table) Cells(i int) []string {
	row := t.Rows[i]
	cells := []string{
		row.Ticker,
		formatFloat(row.Price, 2),
		strconv.FormatInt(row.Shares, 10),
	}
	for _, spec := range t.Metrics {
		if v, ok := row.Ratios[spec.ID]; ok {
			cells = append(cells, formatFloat(v, 2))
		} else {
			cells = append(cells, "N/A")
		}
		if t.hasScore() {
			cells = append(cells, formatFloat(row.Percentiles[spec.ID], 4))
		}
	}
	if t.hasScore() && row.Score != nil {
		cells = append(cells, formatFloat(*row.Score, 4))
	}
	return cells
}

func (t *Table) hasScore() bool {
	return t.Strategy == contracts.StrategyRV
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
