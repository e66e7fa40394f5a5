package brain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wonny/valuequant/backend/internal/contracts"
	"github.com/wonny/valuequant/backend/internal/s0_data"
	"github.com/wonny/valuequant/backend/internal/s2_signals"
	"github.com/wonny/valuequant/backend/internal/strategyconfig"
)

// NewRunConfig translates a validated strategy file into a run configuration
func NewRunConfig(cfg *strategyconfig.Config, tickers []string, capital decimal.Decimal) (RunConfig, error) {
	strategy, err := contracts.ParseStrategy(cfg.Strategy)
	if err != nil {
		return RunConfig{}, err
	}
	metrics, err := contracts.ParseMetrics(cfg.Ranking.Metrics)
	if err != nil {
		return RunConfig{}, fmt.Errorf("ranking.metrics: %w", err)
	}
	kind, err := s2_signals.ParsePercentileKind(cfg.Ranking.PercentileKind)
	if err != nil {
		return RunConfig{}, err
	}
	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return RunConfig{}, fmt.Errorf("hash config: %w", err)
	}

	return RunConfig{
		Strategy:       strategy,
		StrategyID:     cfg.Meta.StrategyID,
		ConfigHash:     hash,
		Tickers:        tickers,
		Metrics:        metrics,
		PercentileKind: kind,
		TopN:           cfg.Selection.TopN,
		Capital:        capital,
		Fetch: s0_data.CollectorConfig{
			BatchSize:     cfg.Fetch.BatchSize,
			Concurrency:   cfg.Fetch.Concurrency,
			RatePerSecond: cfg.Fetch.RatePerSecond,
		},
		FetchTimeout: cfg.Fetch.TimeoutDuration(),
	}, nil
}
