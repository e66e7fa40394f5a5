package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/valuequant/backend/pkg/logger"
)

func TestNew(t *testing.T) {
	client := New(logger.Nop(), 0)
	require.NotNil(t, client)

	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.Equal(t, 3, client.retryConfig.MaxRetries)
	assert.True(t, client.retryConfig.Enabled)

	client = New(logger.Nop(), 5*time.Second).WithRetry(5, 2*time.Second)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	assert.Equal(t, 5, client.retryConfig.MaxRetries)
	assert.Equal(t, 2*time.Second, client.retryConfig.InitialDelay)

	assert.False(t, New(logger.Nop(), 0).DisableRetry().retryConfig.Enabled)
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	var out map[string]string
	err := New(logger.Nop(), time.Second).GetJSON(context.Background(), server.URL, &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out["status"])
}

func TestGetJSON_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("bad token"))
	}))
	defer server.Close()

	var out map[string]string
	err := New(logger.Nop(), time.Second).GetJSON(context.Background(), server.URL+"?token=secret", &out)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Equal(t, "bad token", statusErr.Body)
	assert.NotContains(t, statusErr.Error(), "secret")
}

func TestRetryOn5xx(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := New(logger.Nop(), time.Second).WithRetry(3, 10*time.Millisecond)

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, atomic.LoadInt32(&attempts))
}

func TestRetry_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := New(logger.Nop(), time.Second).WithRetry(5, time.Second)
	_, err := client.Get(ctx, server.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRedactURL(t *testing.T) {
	r, err := http.NewRequest(http.MethodGet, "https://example.com/batch?symbols=AAPL&token=secret", nil)
	require.NoError(t, err)

	got := redactURL(r)
	assert.Contains(t, got, "token=REDACTED")
	assert.NotContains(t, got, "secret")
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		statusCode int
		want       bool
	}{
		{200, false},
		{400, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.statusCode), func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableError(tt.statusCode))
		})
	}
}

func TestGet_ConnectionErrorRedactsToken(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	target := server.URL + "/stock/market/batch?symbols=AAPL&token=sk_SECRET123"
	server.Close()

	tests := []struct {
		name   string
		client *Client
	}{
		{"no retry", New(logger.Nop(), time.Second).DisableRetry()},
		{"with retry", New(logger.Nop(), time.Second).WithRetry(1, time.Millisecond)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.client.Get(context.Background(), target)
			require.Error(t, err)
			assert.NotContains(t, err.Error(), "sk_SECRET123")
			assert.Contains(t, err.Error(), "token=REDACTED")
		})
	}
}
