package contracts

import "fmt"

// Metric identifies a valuation ratio
type Metric string

const (
	MetricPE       Metric = "pe_ratio"
	MetricPB       Metric = "pb_ratio"
	MetricPS       Metric = "ps_ratio"
	MetricEVEBITDA Metric = "ev_ebitda"
	MetricEVGP     Metric = "ev_gp"
)

// MetricSpec describes one valuation ratio and how to read it from a batch entry.
// ⭐ SSOT: 지표 ↔ 퍼센타일 컬럼 매핑은 이 테이블에서만
type MetricSpec struct {
	ID             Metric
	Name           string // raw ratio column, e.g. "P/E Ratio"
	PercentileName string // percentile column, e.g. "PE Percentile"
	Derived        bool
	Endpoint       Endpoint

	// Extract returns the metric value for one symbol. Derived ratios
	// report an *UndefinedRatioError when an operand is unusable.
	Extract func(ticker string, data SymbolData) (OptionalFloat, error)
}

var (
	PriceToEarnings = MetricSpec{
		ID:             MetricPE,
		Name:           "P/E Ratio",
		PercentileName: "PE Percentile",
		Endpoint:       EndpointQuote,
		Extract: func(_ string, d SymbolData) (OptionalFloat, error) {
			if d.Quote == nil {
				return None(), nil
			}
			return d.Quote.PERatio, nil
		},
	}

	PriceToBook = MetricSpec{
		ID:             MetricPB,
		Name:           "P/B Ratio",
		PercentileName: "PB Percentile",
		Endpoint:       EndpointAdvancedStats,
		Extract: func(_ string, d SymbolData) (OptionalFloat, error) {
			if d.AdvancedStats == nil {
				return None(), nil
			}
			return d.AdvancedStats.PriceToBook, nil
		},
	}

	PriceToSales = MetricSpec{
		ID:             MetricPS,
		Name:           "P/S Ratio",
		PercentileName: "PS Percentile",
		Endpoint:       EndpointAdvancedStats,
		Extract: func(_ string, d SymbolData) (OptionalFloat, error) {
			if d.AdvancedStats == nil {
				return None(), nil
			}
			return d.AdvancedStats.PriceToSales, nil
		},
	}

	EVToEBITDA = MetricSpec{
		ID:             MetricEVEBITDA,
		Name:           "EV/EBITDA Ratio",
		PercentileName: "EV/EBITDA Percentile",
		Derived:        true,
		Endpoint:       EndpointAdvancedStats,
		Extract: func(ticker string, d SymbolData) (OptionalFloat, error) {
			if d.AdvancedStats == nil {
				return None(), &UndefinedRatioError{Ticker: ticker, Metric: MetricEVEBITDA, Reason: "advanced-stats missing"}
			}
			return DivideRatio(ticker, MetricEVEBITDA, d.AdvancedStats.EnterpriseValue, d.AdvancedStats.EBITDA)
		},
	}

	EVToGrossProfit = MetricSpec{
		ID:             MetricEVGP,
		Name:           "EV/GP Ratio",
		PercentileName: "EV/GP Percentile",
		Derived:        true,
		Endpoint:       EndpointAdvancedStats,
		Extract: func(ticker string, d SymbolData) (OptionalFloat, error) {
			if d.AdvancedStats == nil {
				return None(), &UndefinedRatioError{Ticker: ticker, Metric: MetricEVGP, Reason: "advanced-stats missing"}
			}
			return DivideRatio(ticker, MetricEVGP, d.AdvancedStats.EnterpriseValue, d.AdvancedStats.GrossProfit)
		},
	}
)

// DivideRatio computes numerator / denominator for a derived metric.
// 피연산자가 없거나 분모가 0이면 None + UndefinedRatioError (assembler가 결측 처리)
func DivideRatio(ticker string, metric Metric, numerator, denominator OptionalFloat) (OptionalFloat, error) {
	switch {
	case !numerator.Valid:
		return None(), &UndefinedRatioError{Ticker: ticker, Metric: metric, Reason: "numerator missing"}
	case !denominator.Valid:
		return None(), &UndefinedRatioError{Ticker: ticker, Metric: metric, Reason: "denominator missing"}
	case denominator.Value == 0:
		return None(), &UndefinedRatioError{Ticker: ticker, Metric: metric, Reason: "denominator is zero"}
	}
	return Some(numerator.Value / denominator.Value), nil
}

// PEOnlyMetrics is the metric table of the single-metric strategy
func PEOnlyMetrics() []MetricSpec {
	return []MetricSpec{PriceToEarnings}
}

// RobustValueMetrics is the metric table of the robust value strategy
func RobustValueMetrics() []MetricSpec {
	return []MetricSpec{
		PriceToEarnings,
		PriceToBook,
		PriceToSales,
		EVToEBITDA,
		EVToGrossProfit,
	}
}

// LookupMetric finds a metric spec by id
func LookupMetric(id Metric) (MetricSpec, bool) {
	for _, spec := range RobustValueMetrics() {
		if spec.ID == id {
			return spec, true
		}
	}
	return MetricSpec{}, false
}

// ParseMetrics resolves metric ids in order, rejecting unknowns and duplicates
func ParseMetrics(ids []string) ([]MetricSpec, error) {
	specs := make([]MetricSpec, 0, len(ids))
	seen := make(map[Metric]bool, len(ids))
	for _, raw := range ids {
		id := Metric(raw)
		spec, ok := LookupMetric(id)
		if !ok {
			return nil, fmt.Errorf("unknown metric %q", raw)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate metric %q", raw)
		}
		seen[id] = true
		specs = append(specs, spec)
	}
	return specs, nil
}

// EndpointsFor lists the endpoints needed to read the given metrics.
// quote는 가격 때문에 항상 포함
func EndpointsFor(metrics []MetricSpec) []Endpoint {
	endpoints := []Endpoint{EndpointQuote}
	for _, m := range metrics {
		if m.Endpoint == EndpointAdvancedStats {
			return append(endpoints, EndpointAdvancedStats)
		}
	}
	return endpoints
}
