package iex

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/valuequant/backend/internal/contracts"
	"github.com/wonny/valuequant/backend/internal/s0_data"
	"github.com/wonny/valuequant/backend/pkg/httputil"
	"github.com/wonny/valuequant/backend/pkg/logger"
	"github.com/wonny/valuequant/backend/pkg/redis"
)

// DefaultBaseURL is the sandbox environment
const DefaultBaseURL = "https://sandbox.iexapis.com/stable"

// ErrNoToken is returned when the client has no API token
var ErrNoToken = errors.New("iex: API token not configured (set IEX_API_TOKEN)")

// Client calls the IEX Cloud batch endpoint
// ⭐ SSOT: IEX Cloud API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	cache      *redis.Cache
	cacheTTL   time.Duration
	baseURL    string
	token      string
	logger     *logger.Logger
}

var _ contracts.Fetcher = (*Client)(nil)

// NewClient creates a new IEX Cloud client
func NewClient(httpClient *httputil.Client, baseURL, token string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		logger:     log.Module("iex"),
	}
}

// WithCache enables response caching for ttl (ttl ≤ 0 disables)
func (c *Client) WithCache(cache *redis.Cache, ttl time.Duration) *Client {
	c.cache = cache
	c.cacheTTL = ttl
	return c
}

// Fetch requests one batch of at most 100 symbols. Symbols missing from the
// provider's answer are simply absent from the returned map.
func (c *Client) Fetch(ctx context.Context, symbols []string, endpoints []contracts.Endpoint) (contracts.BatchResponse, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}
	if len(symbols) == 0 {
		return contracts.BatchResponse{}, nil
	}
	if len(symbols) > s0_data.MaxBatchSize {
		return nil, fmt.Errorf("iex: batch of %d symbols exceeds limit %d", len(symbols), s0_data.MaxBatchSize)
	}

	types := make([]string, len(endpoints))
	for i, e := range endpoints {
		types[i] = string(e)
	}
	key := redis.BatchKey(types, symbols)

	if c.cachingEnabled() {
		var cached contracts.BatchResponse
		hit, err := c.cache.Get(ctx, key, &cached)
		if err != nil {
			c.logger.WithError(err).Warn("Batch cache read failed")
		}
		if hit {
			c.logger.WithField("symbols", len(symbols)).Debug("Batch cache hit")
			return cached, nil
		}
	}

	var resp contracts.BatchResponse
	if err := c.httpClient.GetJSON(ctx, c.batchURL(symbols, types), &resp); err != nil {
		return nil, fmt.Errorf("iex batch: %w", err)
	}
	if resp == nil {
		resp = contracts.BatchResponse{}
	}

	if c.cachingEnabled() {
		if err := c.cache.Set(ctx, key, resp, c.cacheTTL); err != nil {
			c.logger.WithError(err).Warn("Batch cache write failed")
		}
	}

	c.logger.WithFields(logger.Fields{
		"requested": len(symbols),
		"received":  len(resp),
	}).Debug("Fetched batch")

	return resp, nil
}

func (c *Client) cachingEnabled() bool {
	return c.cache != nil && c.cacheTTL > 0
}

// batchURL builds {base}/stock/market/batch?symbols=..&types=..&token=..
func (c *Client) batchURL(symbols, types []string) string {
	params := url.Values{}
	params.Set("symbols", strings.Join(symbols, ","))
	params.Set("types", strings.Join(types, ","))
	params.Set("token", c.token)
	return fmt.Sprintf("%s/stock/market/batch?%s", c.baseURL, params.Encode())
}
