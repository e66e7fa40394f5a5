package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/valuequant/backend/internal/contracts"
)

func rvPortfolio() *contracts.TargetPortfolio {
	sym := contracts.ScoredSymbol{
		Record: contracts.SymbolRecord{
			Ticker: "AAA",
			Price:  100,
			Metrics: map[contracts.Metric]contracts.OptionalFloat{
				contracts.MetricPE: contracts.Some(8.5),
				contracts.MetricPB: contracts.Some(1.2),
			},
		},
		Percentiles: map[contracts.Metric]float64{contracts.MetricPE: 0, contracts.MetricPB: 0.5},
		Score:       0.25,
	}
	return &contracts.TargetPortfolio{
		Date:         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Strategy:     contracts.StrategyRV,
		Capital:      decimal.NewFromInt(1000),
		PositionSize: decimal.NewFromInt(1000),
		Positions: []contracts.TargetPosition{
			{Symbol: sym, Shares: 10, Cost: decimal.NewFromInt(1000)},
		},
	}
}

func TestBuild_RobustValueColumns(t *testing.T) {
	metrics := []contracts.MetricSpec{contracts.PriceToEarnings, contracts.PriceToBook}
	table := Build(rvPortfolio(), metrics)

	assert.Equal(t, []string{
		"Ticker", "Price", "Number of Shares to Buy",
		"P/E Ratio", "PE Percentile",
		"P/B Ratio", "PB Percentile",
		"RV Score",
	}, table.Headers())
	assert.Equal(t, []string{"AAA", "100.00", "10", "8.50", "0.0000", "1.20", "0.5000", "0.2500"}, table.Cells(0))
	assert.True(t, table.Cash.IsZero())
}

func TestBuild_PEColumns(t *testing.T) {
	p := rvPortfolio()
	p.Strategy = contracts.StrategyPE
	table := Build(p, contracts.PEOnlyMetrics())

	assert.Equal(t, []string{"Ticker", "Price", "Number of Shares to Buy", "P/E Ratio"}, table.Headers())
	assert.Len(t, table.Cells(0), 4)
	assert.Nil(t, table.Rows[0].Score)
}

func TestWriteCSV(t *testing.T) {
	table := Build(rvPortfolio(), []contracts.MetricSpec{contracts.PriceToEarnings})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, table.Headers(), records[0])
	assert.Equal(t, "AAA", records[1][0])
}

func TestWriteJSON(t *testing.T) {
	table := Build(rvPortfolio(), []contracts.MetricSpec{contracts.PriceToEarnings})

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, table))

	var decoded struct {
		Strategy string `json:"strategy"`
		Rows     []struct {
			Ticker string   `json:"ticker"`
			Shares int64    `json:"shares"`
			Score  *float64 `json:"rv_score"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "rv", decoded.Strategy)
	require.Len(t, decoded.Rows, 1)
	assert.Equal(t, int64(10), decoded.Rows[0].Shares)
	require.NotNil(t, decoded.Rows[0].Score)
	assert.InDelta(t, 0.25, *decoded.Rows[0].Score, 1e-12)
}

func TestWriteText(t *testing.T) {
	table := Build(rvPortfolio(), contracts.PEOnlyMetrics())

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, table))

	out := buf.String()
	assert.Contains(t, out, "Number of Shares to Buy")
	assert.Contains(t, out, "AAA")
	assert.Contains(t, out, "Cash: 0.00")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}
