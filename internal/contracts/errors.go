package contracts

import (
	"errors"
	"fmt"
)

// MissingFieldError reports a requested ticker (or one of its required
// fields) absent from a fetch response. Per-symbol, never aborts a batch.
type MissingFieldError struct {
	Ticker string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing field %q in fetch response", e.Ticker, e.Field)
}

// UndefinedRatioError reports a derived ratio that cannot be computed.
// 발생해도 결측값으로 처리되고 imputation에서 채워짐
type UndefinedRatioError struct {
	Ticker string
	Metric Metric
	Reason string
}

func (e *UndefinedRatioError) Error() string {
	return fmt.Sprintf("%s: %s undefined (%s)", e.Ticker, e.Metric, e.Reason)
}

// EmptyMetricError reports a metric with no known value in the whole universe.
// Fatal for the run.
type EmptyMetricError struct {
	Metric   Metric
	Universe int
}

func (e *EmptyMetricError) Error() string {
	return fmt.Sprintf("metric %s has no known values across %d symbols; cannot impute a mean from nothing", e.Metric, e.Universe)
}

// EmptySelectionError reports that no symbol survived filtering/selection.
// Fatal before position sizing.
type EmptySelectionError struct {
	Stage string
}

func (e *EmptySelectionError) Error() string {
	return fmt.Sprintf("no symbols left after %s; nothing to allocate", e.Stage)
}

// InvalidCapitalError reports a non-numeric, non-finite or non-positive capital amount
type InvalidCapitalError struct {
	Input  string
	Reason string
}

func (e *InvalidCapitalError) Error() string {
	return fmt.Sprintf("invalid capital %q: %s", e.Input, e.Reason)
}

// FetchError reports a failed batch request affecting a ticker
type FetchError struct {
	Ticker string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: fetch failed: %v", e.Ticker, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// SymbolError is a per-symbol problem reported next to the successful rows
type SymbolError struct {
	Ticker string `json:"ticker"`
	Stage  string `json:"stage"`
	Err    error  `json:"-"`
}

func (e SymbolError) Error() string {
	return fmt.Sprintf("[%s] %v", e.Stage, e.Err)
}

// Message returns the error text (for JSON output)
func (e SymbolError) Message() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// IsFatal reports whether err must abort the whole run
func IsFatal(err error) bool {
	var emptyMetric *EmptyMetricError
	var emptySelection *EmptySelectionError
	var invalidCapital *InvalidCapitalError
	return errors.As(err, &emptyMetric) || errors.As(err, &emptySelection) || errors.As(err, &invalidCapital)
}
