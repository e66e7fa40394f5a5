package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalFloat_UnmarshalJSON(t *testing.T) {
	var payload struct {
		A OptionalFloat `json:"a"`
		B OptionalFloat `json:"b"`
		C OptionalFloat `json:"c"`
		D OptionalFloat `json:"d"`
	}
	err := json.Unmarshal([]byte(`{"a": 12.5, "b": null, "c": "n/a"}`), &payload)
	require.NoError(t, err)

	assert.Equal(t, Some(12.5), payload.A)
	assert.False(t, payload.B.Valid, "null decodes as absent")
	assert.False(t, payload.C.Valid, "non-numeric decodes as absent")
	assert.False(t, payload.D.Valid, "missing key decodes as absent")
}

func TestOptionalFloat_MarshalJSON(t *testing.T) {
	data, err := json.Marshal([]OptionalFloat{Some(1.5), None()})
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, null]`, string(data))
	assert.Equal(t, "N/A", None().String())
}

func TestBatchResponse_Decode(t *testing.T) {
	raw := `{
		"AAPL": {
			"quote": {"symbol": "AAPL", "latestPrice": 150.1, "peRatio": 28.2},
			"advanced-stats": {"priceToBook": 40.1, "priceToSales": 7.2, "enterpriseValue": 2500, "EBITDA": 100, "grossProfit": null}
		}
	}`
	var resp BatchResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))

	aapl := resp["AAPL"]
	require.NotNil(t, aapl.Quote)
	require.NotNil(t, aapl.AdvancedStats)
	assert.Equal(t, 150.1, aapl.Quote.LatestPrice.Value)
	assert.False(t, aapl.AdvancedStats.GrossProfit.Valid)

	evEbitda, err := EVToEBITDA.Extract("AAPL", aapl)
	require.NoError(t, err)
	assert.Equal(t, Some(25), evEbitda)

	evGP, err := EVToGrossProfit.Extract("AAPL", aapl)
	assert.False(t, evGP.Valid)
	var undefined *UndefinedRatioError
	assert.True(t, errors.As(err, &undefined))
	assert.Equal(t, MetricEVGP, undefined.Metric)
}

func TestDivideRatio(t *testing.T) {
	tests := []struct {
		name    string
		num     OptionalFloat
		den     OptionalFloat
		want    OptionalFloat
		wantErr bool
	}{
		{"ok", Some(10), Some(4), Some(2.5), false},
		{"negative denominator", Some(10), Some(-5), Some(-2), false},
		{"zero denominator", Some(10), Some(0), None(), true},
		{"missing numerator", None(), Some(4), None(), true},
		{"missing denominator", Some(10), None(), None(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DivideRatio("X", MetricEVEBITDA, tt.num, tt.den)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseMetrics(t *testing.T) {
	specs, err := ParseMetrics([]string{"ev_gp", "pe_ratio"})
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, MetricEVGP, specs[0].ID)
	assert.Equal(t, MetricPE, specs[1].ID)

	_, err = ParseMetrics([]string{"pe_ratio", "pe_ratio"})
	assert.Error(t, err)

	_, err = ParseMetrics([]string{"dividend_yield"})
	assert.Error(t, err)
}

func TestMetricTables(t *testing.T) {
	rv := RobustValueMetrics()
	require.Len(t, rv, 5)

	names := make(map[string]bool)
	for _, spec := range rv {
		assert.NotEmpty(t, spec.Name)
		assert.NotEmpty(t, spec.PercentileName)
		assert.NotNil(t, spec.Extract)
		assert.False(t, names[spec.PercentileName], "percentile columns must be unique")
		names[spec.PercentileName] = true
	}

	assert.Equal(t, []Endpoint{EndpointQuote}, EndpointsFor(PEOnlyMetrics()))
	assert.Equal(t, []Endpoint{EndpointQuote, EndpointAdvancedStats}, EndpointsFor(rv))
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("rv")
	require.NoError(t, err)
	assert.True(t, s.Composite())
	assert.Len(t, s.DefaultMetrics(), 5)

	s, err = ParseStrategy("pe")
	require.NoError(t, err)
	assert.False(t, s.Composite())

	_, err = ParseStrategy("momentum")
	assert.Error(t, err)
}

func TestUniverse_CloneIsDeep(t *testing.T) {
	u := NewUniverse(
		testDate(),
		[]SymbolRecord{{Ticker: "A", Price: 10, Metrics: map[Metric]OptionalFloat{MetricPE: None()}}},
		nil,
	)

	clone := u.Clone()
	clone.Records[0].Metrics[MetricPE] = Some(5)

	assert.False(t, u.Records[0].Metric(MetricPE).Valid, "original must not change")
	assert.Equal(t, []string{"A"}, u.Tickers())
}

func TestTargetPortfolio_CashAndInvested(t *testing.T) {
	p := &TargetPortfolio{
		Capital: decimal.NewFromInt(10000),
		Positions: []TargetPosition{
			{Symbol: ScoredSymbol{Record: SymbolRecord{Ticker: "A"}}, Shares: 50, Cost: decimal.NewFromInt(5000)},
			{Symbol: ScoredSymbol{Record: SymbolRecord{Ticker: "B"}}, Shares: 15, Cost: decimal.NewFromInt(4995)},
		},
	}

	assert.True(t, p.Invested().Equal(decimal.NewFromInt(9995)))
	assert.True(t, p.Cash().Equal(decimal.NewFromInt(5)))

	pos, ok := p.GetPosition("B")
	require.True(t, ok)
	assert.EqualValues(t, 15, pos.Shares)

	_, ok = p.GetPosition("Z")
	assert.False(t, ok)
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(&EmptyMetricError{Metric: MetricPB}))
	assert.True(t, IsFatal(&EmptySelectionError{Stage: "selection"}))
	assert.True(t, IsFatal(fmt.Errorf("run: %w", &InvalidCapitalError{Input: "abc", Reason: "not a number"})))
	assert.False(t, IsFatal(&MissingFieldError{Ticker: "A", Field: "symbol"}))
}
