package commands

import (
	"context"
	"fmt"

	"github.com/wonny/valuequant/backend/internal/audit"
	"github.com/wonny/valuequant/backend/internal/brain"
	"github.com/wonny/valuequant/backend/internal/contracts"
	"github.com/wonny/valuequant/backend/internal/external/iex"
	"github.com/wonny/valuequant/backend/internal/s1_universe"
	"github.com/wonny/valuequant/backend/internal/strategyconfig"
	"github.com/wonny/valuequant/backend/pkg/config"
	"github.com/wonny/valuequant/backend/pkg/database"
	"github.com/wonny/valuequant/backend/pkg/httputil"
	"github.com/wonny/valuequant/backend/pkg/logger"
	"github.com/wonny/valuequant/backend/pkg/redis"
)

// cachePrefix namespaces every redis key of this service
const cachePrefix = "valuequant"

// runtime holds the wired dependencies shared by all commands
// ⭐ SSOT: 의존성 조립은 여기서만
type runtime struct {
	cfg      *config.Config
	log      *logger.Logger
	redis    *redis.Client
	cache    *redis.Cache
	db       *database.DB      // nil = 저장소 없음
	runs     *audit.Repository // nil = 저장소 없음
	http     *httputil.Client
	iex      *iex.Client
	universe *s1_universe.Builder
}

// loadConfig reads the environment and applies global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newRuntime wires config, logger, redis, HTTP and IEX clients.
// The audit store is opened only when withStore is set and DATABASE_URL exists.
func newRuntime(ctx context.Context, withStore bool) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg)

	rc, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		rc = redis.Disabled()
	}
	cache := redis.NewCache(rc, cachePrefix)

	httpClient := httputil.New(log, cfg.IEX.Timeout).
		WithRateLimiter(redis.NewRateLimiter(rc, cachePrefix), redis.IEXRateLimit)

	rt := &runtime{
		cfg:      cfg,
		log:      log,
		redis:    rc,
		cache:    cache,
		http:     httpClient,
		iex:      iex.NewClient(httpClient, cfg.IEX.BaseURL, cfg.IEX.Token, log),
		universe: s1_universe.NewBuilder(cache, log),
	}

	if withStore && cfg.Database.Enabled() {
		db, err := database.New(ctx, cfg)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		rt.db = db
		rt.runs = audit.NewRepository(db.Pool)
		if err := rt.runs.EnsureSchema(ctx); err != nil {
			rt.Close()
			return nil, fmt.Errorf("ensure audit schema: %w", err)
		}
	}

	return rt, nil
}

// Close releases the database pool and redis connection
func (rt *runtime) Close() {
	if rt.db != nil {
		rt.db.Close()
	}
	_ = rt.redis.Close()
}

// orchestrator builds a pipeline orchestrator with the strategy's cache TTL
func (rt *runtime) orchestrator(strategy *strategyconfig.Config) *brain.Orchestrator {
	fetcher := rt.iex.WithCache(rt.cache, strategy.Fetch.CacheTTLDuration())

	var store brain.RunStore
	if rt.runs != nil {
		store = rt.runs
	}
	return brain.NewOrchestrator(fetcher, store, rt.log)
}

// loadStrategy returns the strategy file given by --config (or STRATEGY_FILE),
// falling back to built-in defaults for name.
func loadStrategy(cfg *config.Config, name string) (*strategyconfig.Config, error) {
	path := configFile
	if path == "" && cfg != nil {
		path = cfg.StrategyFile
	}

	if path == "" {
		if name == "" {
			name = string(contracts.StrategyRV)
		}
		if _, err := contracts.ParseStrategy(name); err != nil {
			return nil, err
		}
		return strategyconfig.Default(name), nil
	}

	strategy, _, err := strategyconfig.Load(path)
	if err != nil {
		return nil, err
	}
	if err := strategyconfig.Validate(strategy); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if name != "" && strategy.Strategy != name {
		return nil, fmt.Errorf("%s configures strategy %q, not %q", path, strategy.Strategy, name)
	}
	return strategy, nil
}

// universeSource picks the ticker source of a strategy
func (rt *runtime) universeSource(strategy *strategyconfig.Config) (s1_universe.Source, error) {
	switch strategy.Universe.Source {
	case "csv":
		if strategy.Universe.Path == "" {
			return nil, fmt.Errorf("universe.path is required for csv source")
		}
		return s1_universe.CSVSource{Path: strategy.Universe.Path}, nil
	case "sp500", "":
		return s1_universe.NewScraper(rt.http, strategy.Universe.URL, rt.log), nil
	default:
		return nil, fmt.Errorf("unknown universe source %q", strategy.Universe.Source)
	}
}
