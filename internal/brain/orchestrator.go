package brain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wonny/valuequant/backend/internal/audit"
	"github.com/wonny/valuequant/backend/internal/contracts"
	"github.com/wonny/valuequant/backend/internal/portfolio"
	"github.com/wonny/valuequant/backend/internal/report"
	"github.com/wonny/valuequant/backend/internal/s0_data"
	"github.com/wonny/valuequant/backend/internal/s0_data/quality"
	"github.com/wonny/valuequant/backend/internal/s2_signals"
	"github.com/wonny/valuequant/backend/internal/selection"
	"github.com/wonny/valuequant/backend/pkg/logger"
)

// Stage names recorded in RunResult.CompletedStages
const (
	StageFetch    = "S0:Fetch"
	StageAssemble = "S0:Assemble"
	StageScreen   = "S2:Screen"
	StageSignals  = "S2:Signals"
	StageSelect   = "S3:Select"
	StageSize     = "S4:Size"
	StageReport   = "S5:Report"
)

// RunStore persists finished runs (audit.Repository)
type RunStore interface {
	SaveRun(ctx context.Context, s *audit.RunSnapshot) error
}

// Orchestrator coordinates the ranking pipeline
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	fetcher contracts.Fetcher
	store   RunStore // nil = 저장 안 함
	logger  *logger.Logger
}

// RunConfig holds configuration for a pipeline run
type RunConfig struct {
	RunID          uuid.UUID // zero → generated
	Date           time.Time // zero → now
	Strategy       contracts.Strategy
	StrategyID     string
	ConfigHash     string
	Tickers        []string
	Metrics        []contracts.MetricSpec // nil → strategy default
	PercentileKind s2_signals.PercentileKind
	TopN           int
	Capital        decimal.Decimal
	Fetch          s0_data.CollectorConfig
	FetchTimeout   time.Duration // 0 = caller's context only
	Save           bool
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	RunID           uuid.UUID
	Date            time.Time
	Strategy        contracts.Strategy
	CompletedStages []string
	Universe        *contracts.Universe
	Signals         *contracts.SignalSet // rv only
	Screened        *selection.ScreenResult
	Selected        []contracts.ScoredSymbol
	Portfolio       *contracts.TargetPortfolio
	Table           *report.Table
	Errors          []contracts.SymbolError
	Fetch           *s0_data.CollectResult
	Quality         *quality.Snapshot
	Saved           bool
	Duration        time.Duration
}

// NewOrchestrator creates a new orchestrator. store may be nil.
func NewOrchestrator(fetcher contracts.Fetcher, store RunStore, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		fetcher: fetcher,
		store:   store,
		logger:  log.Module("orchestrator"),
	}
}

// Run executes the pipeline. Stages run strictly in order and each one
// derives a new artifact. A fatal error returns no result.
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := time.Now()

	if config.RunID == uuid.Nil {
		config.RunID = uuid.New()
	}
	if config.Date.IsZero() {
		config.Date = startTime
	}
	if config.Metrics == nil {
		config.Metrics = config.Strategy.DefaultMetrics()
	}
	if err := validateRunConfig(config); err != nil {
		return nil, err
	}

	result := &RunResult{
		RunID:           config.RunID,
		Date:            config.Date,
		Strategy:        config.Strategy,
		CompletedStages: make([]string, 0, 7),
	}
	log := o.logger.WithField("run_id", config.RunID.String())

	log.WithFields(logger.Fields{
		"strategy": config.Strategy,
		"tickers":  len(config.Tickers),
		"metrics":  len(config.Metrics),
		"top_n":    config.TopN,
		"capital":  config.Capital.String(),
	}).Info("Starting pipeline run")

	// S0: Fetch
	fetched, err := o.fetch(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("S0 fetch failed: %w", err)
	}
	result.Fetch = fetched
	result.Errors = append(result.Errors, fetched.Errors...)
	result.CompletedStages = append(result.CompletedStages, StageFetch)

	// S0: Assemble (배치 실패 종목은 이미 FetchError로 보고됨)
	requested := withoutFailed(config.Tickers, fetched.Errors)
	universe, symbolErrs := s0_data.NewAssembler(o.logger).Assemble(config.Date, requested, fetched.Response, config.Metrics)
	result.Universe = universe
	result.Errors = append(result.Errors, symbolErrs...)
	result.CompletedStages = append(result.CompletedStages, StageAssemble)

	result.Quality = quality.NewGate(quality.DefaultConfig()).Check(len(config.Tickers), universe, config.Metrics)
	if !result.Quality.Passed {
		log.WithFields(logger.Fields{
			"score":    result.Quality.Score,
			"failures": result.Quality.Failures,
		}).Warn("Data coverage below threshold")
	}

	// S2: Score
	candidates, err := o.score(ctx, config, result)
	if err != nil {
		return nil, fmt.Errorf("S2 scoring failed: %w", err)
	}

	// S3: Select
	selected, err := selection.NewSelector(config.TopN, o.logger).Select(candidates)
	if err != nil {
		return nil, fmt.Errorf("S3 selection failed: %w", err)
	}
	result.Selected = selected
	result.CompletedStages = append(result.CompletedStages, StageSelect)

	// S4: Size
	target, err := portfolio.NewSizer(o.logger).Size(config.Date, config.Strategy, config.Capital, selected)
	if err != nil {
		return nil, fmt.Errorf("S4 sizing failed: %w", err)
	}
	result.Portfolio = target
	result.CompletedStages = append(result.CompletedStages, StageSize)

	// S5: Report
	result.Table = report.Build(target, config.Metrics)
	result.CompletedStages = append(result.CompletedStages, StageReport)

	result.Duration = time.Since(startTime)

	if config.Save {
		result.Saved = o.save(ctx, config, result)
	}

	log.WithFields(logger.Fields{
		"positions":     target.Count(),
		"symbol_errors": len(result.Errors),
		"invested":      target.Invested().StringFixed(2),
		"duration":      result.Duration,
	}).Info("Pipeline run completed")

	return result, nil
}

func (o *Orchestrator) fetch(ctx context.Context, config RunConfig) (*s0_data.CollectResult, error) {
	if config.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.FetchTimeout)
		defer cancel()
	}

	collector := s0_data.NewCollector(o.fetcher, config.Fetch, o.logger)
	return collector.Collect(ctx, config.Tickers, contracts.EndpointsFor(config.Metrics))
}

// score produces the candidates handed to the selector
func (o *Orchestrator) score(ctx context.Context, config RunConfig, result *RunResult) ([]contracts.ScoredSymbol, error) {
	if config.Strategy == contracts.StrategyPE {
		screened := selection.NewScreener(o.logger).Screen(result.Universe)
		result.Screened = screened
		result.CompletedStages = append(result.CompletedStages, StageScreen)
		return screened.Passed, nil
	}

	builder := s2_signals.NewBuilder(
		s2_signals.NewImputer(o.logger),
		s2_signals.NewRanker(config.PercentileKind),
		o.logger,
	)
	signals, err := builder.Build(ctx, result.Universe, config.Metrics)
	if err != nil {
		return nil, err
	}
	result.Signals = signals
	result.CompletedStages = append(result.CompletedStages, StageSignals)
	return signals.Scored, nil
}

// save stores the run; failures are logged and do not fail the run
func (o *Orchestrator) save(ctx context.Context, config RunConfig, result *RunResult) bool {
	if o.store == nil {
		o.logger.Warn("Run save requested but no audit store is configured")
		return false
	}

	snapshot, err := audit.NewRunSnapshot(config.RunID, config.StrategyID, config.ConfigHash,
		len(config.Tickers), result.Table, result.Errors, result.Duration)
	if err == nil {
		err = o.store.SaveRun(ctx, snapshot)
	}
	if err != nil {
		o.logger.WithError(err).Error("Failed to save run")
		return false
	}

	o.logger.WithField("run_id", config.RunID.String()).Info("Run saved")
	return true
}

func validateRunConfig(config RunConfig) error {
	if _, err := contracts.ParseStrategy(string(config.Strategy)); err != nil {
		return err
	}
	if len(config.Tickers) == 0 {
		return &contracts.EmptySelectionError{Stage: "universe loading"}
	}
	if !config.Capital.IsPositive() {
		return &contracts.InvalidCapitalError{Input: config.Capital.String(), Reason: "must be greater than zero"}
	}
	return nil
}

// withoutFailed drops tickers whose batch failed
func withoutFailed(tickers []string, errs []contracts.SymbolError) []string {
	if len(errs) == 0 {
		return tickers
	}
	failed := make(map[string]bool, len(errs))
	for _, e := range errs {
		failed[e.Ticker] = true
	}
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if !failed[t] {
			out = append(out, t)
		}
	}
	return out
}
