package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/valuequant/backend/internal/s1_universe"
	"github.com/wonny/valuequant/backend/pkg/logger"
	"github.com/wonny/valuequant/backend/pkg/redis"
)

// UniverseRefreshJob re-scrapes the constituents list so the cached copy stays fresh
type UniverseRefreshJob struct {
	scraper *s1_universe.Scraper
	cache   *redis.Cache
	builder *s1_universe.Builder
	logger  *logger.Logger
}

// NewUniverseRefreshJob creates a new universe refresh job
func NewUniverseRefreshJob(scraper *s1_universe.Scraper, cache *redis.Cache, builder *s1_universe.Builder, log *logger.Logger) *UniverseRefreshJob {
	return &UniverseRefreshJob{
		scraper: scraper,
		cache:   cache,
		builder: builder,
		logger:  log.Module("universe_job"),
	}
}

// Name returns the job name
func (j *UniverseRefreshJob) Name() string {
	return "universe_refresh"
}

// Schedule returns the cron schedule (daily 06:00, before the US open)
func (j *UniverseRefreshJob) Schedule() string {
	return "0 0 6 * * *"
}

// Run drops the cached list and loads it again
func (j *UniverseRefreshJob) Run(ctx context.Context) error {
	if err := j.cache.Delete(ctx, redis.UniverseKey(j.scraper.Name())); err != nil {
		j.logger.WithError(err).Warn("Failed to drop cached universe")
	}

	result, err := j.builder.Load(ctx, j.scraper)
	if err != nil {
		return fmt.Errorf("refresh universe: %w", err)
	}

	j.logger.WithFields(logger.Fields{
		"tickers":  len(result.Tickers),
		"excluded": len(result.Excluded),
	}).Info("Universe refreshed")
	return nil
}
