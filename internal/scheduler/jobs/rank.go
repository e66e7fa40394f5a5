package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/valuequant/backend/internal/brain"
	"github.com/wonny/valuequant/backend/internal/capital"
	"github.com/wonny/valuequant/backend/internal/s1_universe"
	"github.com/wonny/valuequant/backend/internal/strategyconfig"
	"github.com/wonny/valuequant/backend/pkg/logger"
)

// RankJob runs one strategy on its cron schedule and saves the result
// ⭐ SSOT: 정기 랭킹 실행은 이 Job에서만
type RankJob struct {
	config       *strategyconfig.Config
	source       s1_universe.Source
	universe     *s1_universe.Builder
	orchestrator *brain.Orchestrator
	logger       *logger.Logger
}

// NewRankJob creates a new rank job. The config must carry a capital amount.
func NewRankJob(cfg *strategyconfig.Config, source s1_universe.Source, universe *s1_universe.Builder, orchestrator *brain.Orchestrator, log *logger.Logger) *RankJob {
	return &RankJob{
		config:       cfg,
		source:       source,
		universe:     universe,
		orchestrator: orchestrator,
		logger:       log.Module("rank_job"),
	}
}

// Name returns the job name
func (j *RankJob) Name() string {
	return "rank_" + j.config.Meta.StrategyID
}

// Schedule returns the configured cron spec
func (j *RankJob) Schedule() string {
	return j.config.Schedule.Cron
}

// Run loads the universe, runs the pipeline and saves the run
func (j *RankJob) Run(ctx context.Context) error {
	amount := capital.Parse(j.config.Portfolio.Capital)
	if !amount.OK() {
		return amount.Err
	}

	universe, err := j.universe.Load(ctx, j.source)
	if err != nil {
		return fmt.Errorf("load universe: %w", err)
	}

	runConfig, err := brain.NewRunConfig(j.config, universe.Tickers, amount.Amount)
	if err != nil {
		return fmt.Errorf("run config: %w", err)
	}
	runConfig.Save = true

	result, err := j.orchestrator.Run(ctx, runConfig)
	if err != nil {
		return err
	}

	j.logger.WithFields(logger.Fields{
		"run_id":    result.RunID.String(),
		"positions": result.Portfolio.Count(),
		"saved":     result.Saved,
	}).Info("Scheduled ranking completed")

	return nil
}
