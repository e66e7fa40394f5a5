package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/valuequant/backend/internal/audit"
	"github.com/wonny/valuequant/backend/internal/brain"
	"github.com/wonny/valuequant/backend/internal/capital"
	"github.com/wonny/valuequant/backend/internal/contracts"
	"github.com/wonny/valuequant/backend/internal/report"
	"github.com/wonny/valuequant/backend/internal/s0_data/quality"
	"github.com/wonny/valuequant/backend/internal/s1_universe"
	"github.com/wonny/valuequant/backend/internal/strategyconfig"
	"github.com/wonny/valuequant/backend/pkg/logger"
)

// RunReader reads stored runs (audit.Repository)
type RunReader interface {
	GetLatestRun(ctx context.Context, strategy contracts.Strategy) (*audit.RunSnapshot, error)
}

// UniverseLoader resolves the ticker list of a run
type UniverseLoader interface {
	Load(ctx context.Context, source s1_universe.Source) (*s1_universe.Result, error)
}

// StrategyHandler serves ranking runs over HTTP
// ⭐ SSOT: 전략 API 핸들러는 여기서만
type StrategyHandler struct {
	configs      map[contracts.Strategy]*strategyconfig.Config
	source       s1_universe.Source
	universe     UniverseLoader
	orchestrator *brain.Orchestrator
	runs         RunReader // nil = 저장소 없음
	logger       *logger.Logger
}

// NewStrategyHandler creates a new strategy handler
func NewStrategyHandler(
	configs map[contracts.Strategy]*strategyconfig.Config,
	source s1_universe.Source,
	universe UniverseLoader,
	orchestrator *brain.Orchestrator,
	runs RunReader,
	log *logger.Logger,
) *StrategyHandler {
	return &StrategyHandler{
		configs:      configs,
		source:       source,
		universe:     universe,
		orchestrator: orchestrator,
		runs:         runs,
		logger:       log.Module("api"),
	}
}

// RunResponse is the answer of a ranking run
type RunResponse struct {
	RunID      string             `json:"run_id"`
	Strategy   contracts.Strategy `json:"strategy"`
	Table      *report.Table      `json:"table"`
	Errors     []audit.ErrorEntry `json:"errors"`
	Stages     []string           `json:"completed_stages"`
	Universe   int                `json:"universe"`
	Quality    *quality.Snapshot  `json:"quality,omitempty"`
	DurationMs int64              `json:"duration_ms"`
	Saved      bool               `json:"saved"`
}

// Rank runs a strategy on the configured universe
// GET /api/strategies/{strategy}?capital=10000&top=50&save=true
func (h *StrategyHandler) Rank(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	strategy, cfg, ok := h.lookup(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	rawCapital := query.Get("capital")
	if rawCapital == "" {
		rawCapital = cfg.Portfolio.Capital
	}
	amount := capital.Parse(rawCapital)
	if !amount.OK() {
		respondError(w, http.StatusBadRequest, "invalid_capital", amount.Err.Error())
		return
	}

	universe, err := h.universe.Load(ctx, h.source)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load universe")
		respondError(w, http.StatusBadGateway, "universe", "Failed to load universe")
		return
	}

	runConfig, err := brain.NewRunConfig(cfg, universe.Tickers, amount.Amount)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "config", err.Error())
		return
	}
	if top := query.Get("top"); top != "" {
		n, err := strconv.Atoi(top)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "invalid_top", "top must be a positive integer")
			return
		}
		runConfig.TopN = n
	}
	runConfig.Save = query.Get("save") == "true"

	result, err := h.orchestrator.Run(ctx, runConfig)
	if err != nil {
		h.respondRunError(w, strategy, err)
		return
	}

	errs := make([]audit.ErrorEntry, len(result.Errors))
	for i, e := range result.Errors {
		errs[i] = audit.ErrorEntry{Ticker: e.Ticker, Stage: e.Stage, Message: e.Message()}
	}

	respondJSON(w, http.StatusOK, RunResponse{
		RunID:      result.RunID.String(),
		Strategy:   result.Strategy,
		Table:      result.Table,
		Errors:     errs,
		Stages:     result.CompletedStages,
		Universe:   len(universe.Tickers),
		Quality:    result.Quality,
		DurationMs: result.Duration.Milliseconds(),
		Saved:      result.Saved,
	})
}

// LatestRun returns the most recent stored run of a strategy
// GET /api/runs/{strategy}/latest
func (h *StrategyHandler) LatestRun(w http.ResponseWriter, r *http.Request) {
	strategy, _, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if h.runs == nil {
		respondError(w, http.StatusServiceUnavailable, "no_store", "Run history requires DATABASE_URL")
		return
	}

	run, err := h.runs.GetLatestRun(r.Context(), strategy)
	if errors.Is(err, audit.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "No stored run for "+string(strategy))
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest run")
		respondError(w, http.StatusInternalServerError, "store", "Failed to retrieve run")
		return
	}

	respondJSON(w, http.StatusOK, run)
}

func (h *StrategyHandler) lookup(w http.ResponseWriter, r *http.Request) (contracts.Strategy, *strategyconfig.Config, bool) {
	strategy, err := contracts.ParseStrategy(mux.Vars(r)["strategy"])
	if err != nil {
		respondError(w, http.StatusNotFound, "unknown_strategy", err.Error())
		return "", nil, false
	}
	cfg, ok := h.configs[strategy]
	if !ok {
		respondError(w, http.StatusNotFound, "unknown_strategy", "strategy not configured: "+string(strategy))
		return "", nil, false
	}
	return strategy, cfg, true
}

// respondRunError maps pipeline errors to HTTP status codes
func (h *StrategyHandler) respondRunError(w http.ResponseWriter, strategy contracts.Strategy, err error) {
	var (
		capErr      *contracts.InvalidCapitalError
		emptyMetric *contracts.EmptyMetricError
		emptySelect *contracts.EmptySelectionError
	)

	switch {
	case errors.As(err, &capErr):
		respondError(w, http.StatusBadRequest, "invalid_capital", err.Error())
	case errors.As(err, &emptyMetric):
		respondError(w, http.StatusUnprocessableEntity, "empty_metric", err.Error())
	case errors.As(err, &emptySelect):
		respondError(w, http.StatusUnprocessableEntity, "empty_selection", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", err.Error())
	default:
		h.logger.WithError(err).WithField("strategy", strategy).Error("Ranking run failed")
		respondError(w, http.StatusBadGateway, "run_failed", err.Error())
	}
}

// Health reports liveness
// GET /health
func Health(service string, started time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"service": service,
			"uptime":  time.Since(started).Round(time.Second).String(),
		})
	}
}
