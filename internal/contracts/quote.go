package contracts

// Endpoint is a market-data endpoint of the batch API
type Endpoint string

const (
	EndpointQuote         Endpoint = "quote"
	EndpointAdvancedStats Endpoint = "advanced-stats"
)

// Quote holds the fields read from the quote endpoint
type Quote struct {
	Symbol      string        `json:"symbol,omitempty"`
	CompanyName string        `json:"companyName,omitempty"`
	LatestPrice OptionalFloat `json:"latestPrice"`
	PERatio     OptionalFloat `json:"peRatio"`
}

// AdvancedStats holds the fields read from the advanced-stats endpoint
type AdvancedStats struct {
	PriceToBook     OptionalFloat `json:"priceToBook"`
	PriceToSales    OptionalFloat `json:"priceToSales"`
	EnterpriseValue OptionalFloat `json:"enterpriseValue"`
	EBITDA          OptionalFloat `json:"EBITDA"`
	GrossProfit     OptionalFloat `json:"grossProfit"`
}

// SymbolData is one ticker's entry in a batch response.
// 요청하지 않은 endpoint는 nil
type SymbolData struct {
	Quote         *Quote         `json:"quote,omitempty"`
	AdvancedStats *AdvancedStats `json:"advanced-stats,omitempty"`
}

// BatchResponse maps ticker -> endpoint payloads
type BatchResponse map[string]SymbolData

// Merge copies other into r; later entries win on duplicate tickers
func (r BatchResponse) Merge(other BatchResponse) {
	for ticker, data := range other {
		r[ticker] = data
	}
}
