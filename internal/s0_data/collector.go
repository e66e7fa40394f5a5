package s0_data

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/wonny/valuequant/backend/internal/contracts"
	"github.com/wonny/valuequant/backend/pkg/logger"
)

// CollectorConfig holds batch fetch configuration
type CollectorConfig struct {
	BatchSize     int     // symbols per request (≤ 100)
	Concurrency   int     // concurrent batch requests
	RatePerSecond float64 // request pacing, 0 = unlimited
}

// DefaultCollectorConfig returns the default batch fetch configuration
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		BatchSize:     MaxBatchSize,
		Concurrency:   4,
		RatePerSecond: 5,
	}
}

// Collector fetches market data for a universe, one request per partition
// ⭐ SSOT: 배치 수집 오케스트레이션은 여기서만
type Collector struct {
	fetcher contracts.Fetcher
	config  CollectorConfig
	limiter *rate.Limiter
	logger  *logger.Logger
}

// CollectResult is the merged response of all batches plus per-symbol failures
type CollectResult struct {
	Response      contracts.BatchResponse
	Errors        []contracts.SymbolError
	Batches       int
	FailedBatches int
	Duration      time.Duration
}

// NewCollector creates a new Collector
func NewCollector(fetcher contracts.Fetcher, cfg CollectorConfig, log *logger.Logger) *Collector {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	return &Collector{
		fetcher: fetcher,
		config:  cfg,
		limiter: rate.NewLimiter(limit, 1),
		logger:  log.Module("collector"),
	}
}

// Collect fetches all symbols. Batches run concurrently and are merged by
// ticker, so arrival order does not matter. A failed batch marks each of its
// tickers with a FetchError; if every batch fails the whole collect fails.
func (c *Collector) Collect(ctx context.Context, symbols []string, endpoints []contracts.Endpoint) (*CollectResult, error) {
	start := time.Now()
	batches := Partition(symbols, c.config.BatchSize)

	result := &CollectResult{
		Response: make(contracts.BatchResponse, len(symbols)),
		Batches:  len(batches),
	}

	c.logger.WithFields(logger.Fields{
		"symbols":     len(symbols),
		"batches":     len(batches),
		"concurrency": c.config.Concurrency,
		"endpoints":   endpoints,
	}).Info("Starting batch collection")

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.Concurrency)

	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			if err := c.limiter.Wait(gctx); err != nil {
				// 상위 context 취소 → 전체 중단
				return fmt.Errorf("batch %d: %w", i, err)
			}

			resp, err := c.fetcher.Fetch(gctx, batch, endpoints)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				if ctx.Err() != nil {
					return fmt.Errorf("batch %d: %w", i, ctx.Err())
				}
				c.logger.WithError(err).WithFields(logger.Fields{
					"batch":   i,
					"symbols": len(batch),
				}).Warn("Batch fetch failed")

				result.FailedBatches++
				for _, ticker := range batch {
					result.Errors = append(result.Errors, contracts.SymbolError{
						Ticker: ticker,
						Stage:  "fetch",
						Err:    &contracts.FetchError{Ticker: ticker, Err: err},
					})
				}
				return nil
			}

			result.Response.Merge(resp)
			c.logger.WithFields(logger.Fields{
				"batch":    i,
				"received": len(resp),
			}).Debug("Batch fetched")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}

	result.Duration = time.Since(start)
	sortSymbolErrors(result.Errors, symbols)

	if result.Batches > 0 && result.FailedBatches == result.Batches {
		return nil, fmt.Errorf("collect: all %d batches failed: %w", result.Batches, result.Errors[0].Err)
	}

	c.logger.WithFields(logger.Fields{
		"received":       len(result.Response),
		"failed_batches": result.FailedBatches,
		"duration":       result.Duration,
	}).Info("Batch collection completed")

	return result, nil
}

// sortSymbolErrors restores universe order after concurrent collection
func sortSymbolErrors(errs []contracts.SymbolError, symbols []string) {
	index := make(map[string]int, len(symbols))
	for i, s := range symbols {
		index[s] = i
	}
	sort.SliceStable(errs, func(i, j int) bool {
		return index[errs[i].Ticker] < index[errs[j].Ticker]
	})
}
