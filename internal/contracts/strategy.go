package contracts

import "fmt"

// Strategy selects how symbols are scored
type Strategy string

const (
	// StrategyPE ranks by raw positive P/E only
	StrategyPE Strategy = "pe"
	// StrategyRV ranks by the mean percentile of five ratios ("robust value")
	StrategyRV Strategy = "rv"
)

// ParseStrategy validates a strategy name
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyPE, StrategyRV:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown strategy %q (valid: pe, rv)", s)
	}
}

// DefaultMetrics returns the metric table for the strategy
func (s Strategy) DefaultMetrics() []MetricSpec {
	if s == StrategyPE {
		return PEOnlyMetrics()
	}
	return RobustValueMetrics()
}

// Composite reports whether the strategy has a composite score column
func (s Strategy) Composite() bool {
	return s == StrategyRV
}
