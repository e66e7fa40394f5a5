package strategyconfig

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/valuequant/backend/internal/capital"
	"github.com/wonny/valuequant/backend/internal/contracts"
	"github.com/wonny/valuequant/backend/internal/s0_data"
	"github.com/wonny/valuequant/backend/internal/s2_signals"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// cronParser matches the scheduler (seconds field enabled)
var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	strategy, err := contracts.ParseStrategy(cfg.Strategy)
	if err != nil {
		return ValidationError{"strategy", err.Error()}
	}

	// === Universe ===
	switch cfg.Universe.Source {
	case "sp500":
	case "csv":
		if cfg.Universe.Path == "" {
			return ValidationError{"universe.path", "required when source is csv"}
		}
	default:
		return ValidationError{"universe.source", fmt.Sprintf("must be csv or sp500, got %q", cfg.Universe.Source)}
	}

	// === Fetch ===
	if cfg.Fetch.BatchSize < 1 || cfg.Fetch.BatchSize > s0_data.MaxBatchSize {
		return ValidationError{"fetch.batch_size", fmt.Sprintf("must be in [1, %d]", s0_data.MaxBatchSize)}
	}
	if cfg.Fetch.Concurrency < 1 {
		return ValidationError{"fetch.concurrency", "must be >= 1"}
	}
	if cfg.Fetch.RatePerSecond < 0 {
		return ValidationError{"fetch.rate_per_second", "must be >= 0"}
	}
	if d, err := time.ParseDuration(cfg.Fetch.Timeout); err != nil || d <= 0 {
		return ValidationError{"fetch.timeout", "must be a positive duration"}
	}
	if d, err := time.ParseDuration(cfg.Fetch.CacheTTL); err != nil || d < 0 {
		return ValidationError{"fetch.cache_ttl", "must be a duration >= 0"}
	}

	// === Ranking ===
	specs, err := contracts.ParseMetrics(cfg.Ranking.Metrics)
	if err != nil {
		return ValidationError{"ranking.metrics", err.Error()}
	}
	if strategy == contracts.StrategyPE && (len(specs) != 1 || specs[0].ID != contracts.MetricPE) {
		return ValidationError{"ranking.metrics", "pe strategy ranks by pe_ratio only"}
	}
	if _, err := s2_signals.ParsePercentileKind(cfg.Ranking.PercentileKind); err != nil {
		return ValidationError{"ranking.percentile_kind", err.Error()}
	}

	// === Selection ===
	if cfg.Selection.TopN < 1 {
		return ValidationError{"selection.top_n", "must be >= 1"}
	}

	// === Portfolio ===
	if cfg.Portfolio.Capital != "" {
		if r := capital.Parse(cfg.Portfolio.Capital); !r.OK() {
			return ValidationError{"portfolio.capital", r.Err.Error()}
		}
	}

	// === Schedule ===
	if cfg.Schedule.Enabled {
		if cfg.Schedule.Cron == "" {
			return ValidationError{"schedule.cron", "required when schedule is enabled"}
		}
		if _, err := cronParser.Parse(cfg.Schedule.Cron); err != nil {
			return ValidationError{"schedule.cron", err.Error()}
		}
		if cfg.Portfolio.Capital == "" {
			return ValidationError{"portfolio.capital", "required when schedule is enabled"}
		}
	}

	return nil
}

// Warn returns recommendations that do not block a run
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.Fetch.BatchSize < s0_data.MaxBatchSize {
		warnings = append(warnings, Warning{
			Code:    "SMALL_BATCH",
			Message: fmt.Sprintf("batch_size=%d issues more requests than needed (max %d)", cfg.Fetch.BatchSize, s0_data.MaxBatchSize),
		})
	}

	if cfg.Fetch.RatePerSecond == 0 || cfg.Fetch.RatePerSecond > 100 {
		warnings = append(warnings, Warning{
			Code:    "RATE_UNBOUNDED",
			Message: "rate_per_second is 0 or above the provider's 100 req/s limit",
		})
	}

	if cfg.Selection.TopN > 100 {
		warnings = append(warnings, Warning{
			Code:    "LARGE_PORTFOLIO",
			Message: fmt.Sprintf("top_n=%d spreads capital thinly", cfg.Selection.TopN),
		})
	}

	return warnings
}
