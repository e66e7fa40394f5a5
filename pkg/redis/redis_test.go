package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/valuequant/backend/pkg/config"
)

func TestNew_Disabled(t *testing.T) {
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(Disabled(), "test")

	allowed, remaining, err := limiter.Allow(context.Background(), IEXRateLimit)
	require.NoError(t, err)
	assert.True(t, allowed, "requests are allowed when Redis is disabled")
	assert.Equal(t, IEXRateLimit.Limit, remaining)

	assert.NoError(t, limiter.Wait(context.Background(), IEXRateLimit))
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(Disabled(), "test")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", map[string]int{"a": 1}, TTLShort))

	var result map[string]int
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Delete(ctx, "key"))
}

func TestBatchKey(t *testing.T) {
	assert.Equal(t,
		"batch:advanced-stats,quote:MSFT,AAPL",
		BatchKey([]string{"quote", "advanced-stats"}, []string{"MSFT", "AAPL"}),
	)
	assert.Equal(t, "universe:sp500", UniverseKey("sp500"))
}
