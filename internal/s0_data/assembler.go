package s0_data

import (
	"errors"
	"time"

	"github.com/wonny/valuequant/backend/internal/contracts"
	"github.com/wonny/valuequant/backend/pkg/logger"
)

// Assembler turns merged batch responses into the universe table
// ⭐ SSOT: 응답 → SymbolRecord 변환은 여기서만
type Assembler struct {
	logger *logger.Logger
}

// NewAssembler creates a new Assembler
func NewAssembler(log *logger.Logger) *Assembler {
	return &Assembler{logger: log.Module("assembler")}
}

// Assemble produces one record per requested ticker, in request order.
// Tickers absent from the response, or without a positive price, are
// reported as MissingFieldError and excluded; the rest are unaffected.
// Derived ratios that cannot be computed are stored as absent.
func (a *Assembler) Assemble(date time.Time, requested []string, resp contracts.BatchResponse, metrics []contracts.MetricSpec) (*contracts.Universe, []contracts.SymbolError) {
	records := make([]contracts.SymbolRecord, 0, len(requested))
	excluded := make(map[string]string)
	var symbolErrs []contracts.SymbolError
	undefined := 0

	for _, ticker := range requested {
		data, ok := resp[ticker]
		if !ok {
			symbolErrs = append(symbolErrs, missing(ticker, "symbol"))
			excluded[ticker] = "missing from response"
			continue
		}
		if data.Quote == nil {
			symbolErrs = append(symbolErrs, missing(ticker, string(contracts.EndpointQuote)))
			excluded[ticker] = "quote missing"
			continue
		}
		price, ok := data.Quote.LatestPrice.Get()
		if !ok || price <= 0 {
			symbolErrs = append(symbolErrs, missing(ticker, "latestPrice"))
			excluded[ticker] = "no positive price"
			continue
		}

		record := contracts.SymbolRecord{
			Ticker:      ticker,
			CompanyName: data.Quote.CompanyName,
			Price:       price,
			Metrics:     make(map[contracts.Metric]contracts.OptionalFloat, len(metrics)),
		}

		for _, spec := range metrics {
			value, err := spec.Extract(ticker, data)
			var undefinedErr *contracts.UndefinedRatioError
			if errors.As(err, &undefinedErr) {
				undefined++
				a.logger.WithFields(logger.Fields{
					"ticker": ticker,
					"metric": spec.ID,
					"reason": undefinedErr.Reason,
				}).Debug("Derived ratio undefined, stored as missing")
				value = contracts.None()
			}
			record.Metrics[spec.ID] = value
		}

		records = append(records, record)
	}

	a.logger.WithFields(logger.Fields{
		"requested":        len(requested),
		"assembled":        len(records),
		"excluded":         len(excluded),
		"undefined_ratios": undefined,
	}).Info("Universe assembled")

	return contracts.NewUniverse(date, records, excluded), symbolErrs
}

func missing(ticker, field string) contracts.SymbolError {
	return contracts.SymbolError{
		Ticker: ticker,
		Stage:  "assemble",
		Err:    &contracts.MissingFieldError{Ticker: ticker, Field: field},
	}
}
