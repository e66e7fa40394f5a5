package s1_universe

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/wonny/valuequant/backend/pkg/logger"
	"github.com/wonny/valuequant/backend/pkg/redis"
)

var tickerPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// Exclusion reasons
const (
	ReasonDuplicate = "duplicate"
	ReasonInvalid   = "invalid ticker"
)

// Result is the ordered, duplicate-free ticker list of a run
type Result struct {
	Source   string            `json:"source"`
	Tickers  []string          `json:"tickers"`
	Excluded map[string]string `json:"excluded"`
}

// Builder constructs the universe from a source
// ⭐ SSOT: S1 유니버스 생성
type Builder struct {
	cache  *redis.Cache
	logger *logger.Logger
}

// NewBuilder creates a new Universe Builder. cache may be backed by a
// disabled redis client, in which case every build reads the source.
func NewBuilder(cache *redis.Cache, log *logger.Logger) *Builder {
	return &Builder{
		cache:  cache,
		logger: log.Module("universe"),
	}
}

// Load reads the source (through the cache for remote sources) and normalises it
func (b *Builder) Load(ctx context.Context, source Source) (*Result, error) {
	raw, err := b.read(ctx, source)
	if err != nil {
		return nil, err
	}

	result := b.Build(raw)
	result.Source = source.Name()

	b.logger.WithFields(logger.Fields{
		"source":   result.Source,
		"raw":      len(raw),
		"tickers":  len(result.Tickers),
		"excluded": len(result.Excluded),
	}).Info("Universe built")

	return result, nil
}

func (b *Builder) read(ctx context.Context, source Source) ([]string, error) {
	_, remote := source.(*Scraper)
	key := redis.UniverseKey(source.Name())

	if remote && b.cache != nil {
		var cached []string
		hit, err := b.cache.Get(ctx, key, &cached)
		if err != nil {
			b.logger.WithError(err).Warn("Universe cache read failed")
		}
		if hit {
			b.logger.WithField("source", source.Name()).Debug("Universe cache hit")
			return cached, nil
		}
	}

	raw, err := source.Tickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load universe %s: %w", source.Name(), err)
	}

	if remote && b.cache != nil {
		if err := b.cache.Set(ctx, key, raw, redis.TTLDaily); err != nil {
			b.logger.WithError(err).Warn("Universe cache write failed")
		}
	}
	return raw, nil
}

// Build trims and upper-cases tickers, drops malformed ones and keeps the
// first occurrence of each. Input order is preserved.
func (b *Builder) Build(raw []string) *Result {
	result := &Result{
		Tickers:  make([]string, 0, len(raw)),
		Excluded: make(map[string]string),
	}
	seen := make(map[string]bool, len(raw))

	for _, t := range raw {
		ticker := strings.ToUpper(strings.TrimSpace(t))
		switch {
		case ticker == "":
			continue
		case !tickerPattern.MatchString(ticker):
			result.Excluded[ticker] = ReasonInvalid
		case seen[ticker]:
			result.Excluded[ticker] = ReasonDuplicate
		default:
			seen[ticker] = true
			result.Tickers = append(result.Tickers, ticker)
		}
	}
	return result
}
