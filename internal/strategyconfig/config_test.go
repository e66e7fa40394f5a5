package strategyconfig

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	for _, path := range []string{
		"../../config/strategy/robust_value.yaml",
		"../../config/strategy/pe_value.yaml",
	} {
		t.Run(path, func(t *testing.T) {
			if _, err := os.Stat(path); os.IsNotExist(err) {
				t.Skip("config file not found")
			}

			cfg, yamlData, err := Load(path)
			require.NoError(t, err)
			assert.NotEmpty(t, yamlData)
			assert.Equal(t, 100, cfg.Fetch.BatchSize)
			assert.Equal(t, 50, cfg.Selection.TopN)

			// 동일 설정 → 동일 해시
			hash, err := Hash(cfg)
			require.NoError(t, err)
			assert.Len(t, hash, 64)
			hash2, _ := Hash(cfg)
			assert.Equal(t, hash, hash2)
		})
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("meta:\n  strategy_id: x\nstrategy: pe\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"pe_ratio"}, cfg.Ranking.Metrics)
	assert.Equal(t, "midrank", cfg.Ranking.PercentileKind)
	assert.Equal(t, 100, cfg.Fetch.BatchSize)
	assert.Equal(t, 2*time.Minute, cfg.Fetch.TimeoutDuration())
	assert.Equal(t, 15*time.Minute, cfg.Fetch.CacheTTLDuration())
	assert.Equal(t, "sp500", cfg.Universe.Source)

	cfg, err = Parse([]byte("meta:\n  strategy_id: x\nstrategy: rv\n"))
	require.NoError(t, err)
	assert.Len(t, cfg.Ranking.Metrics, 5)
}

func TestParse_UnknownFieldFails(t *testing.T) {
	_, err := Parse([]byte("meta:\n  strategy_id: x\nstrategy: rv\nselection:\n  topn: 10\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"ok", func(c *Config) {}, ""},
		{"missing id", func(c *Config) { c.Meta.StrategyID = "" }, "meta.strategy_id"},
		{"bad strategy", func(c *Config) { c.Strategy = "momentum" }, "strategy"},
		{"csv without path", func(c *Config) { c.Universe.Source = "csv" }, "universe.path"},
		{"batch too large", func(c *Config) { c.Fetch.BatchSize = 101 }, "fetch.batch_size"},
		{"bad timeout", func(c *Config) { c.Fetch.Timeout = "soon" }, "fetch.timeout"},
		{"unknown metric", func(c *Config) { c.Ranking.Metrics = []string{"pe_ratio", "roe"} }, "ranking.metrics"},
		{"duplicate metric", func(c *Config) { c.Ranking.Metrics = []string{"pe_ratio", "pe_ratio"} }, "ranking.metrics"},
		{"bad kind", func(c *Config) { c.Ranking.PercentileKind = "weak" }, "ranking.percentile_kind"},
		{"zero top", func(c *Config) { c.Selection.TopN = 0 }, "selection.top_n"},
		{"bad capital", func(c *Config) { c.Portfolio.Capital = "-1" }, "portfolio.capital"},
		{"schedule without cron", func(c *Config) { c.Schedule.Enabled = true; c.Portfolio.Capital = "1000" }, "schedule.cron"},
		{"schedule bad cron", func(c *Config) {
			c.Schedule = Schedule{Enabled: true, Cron: "every day"}
			c.Portfolio.Capital = "1000"
		}, "schedule.cron"},
		{"schedule without capital", func(c *Config) { c.Schedule = Schedule{Enabled: true, Cron: "0 0 9 * * *"} }, "portfolio.capital"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("rv")
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var vErr ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestValidate_PEStrategyMetrics(t *testing.T) {
	cfg := Default("pe")
	require.NoError(t, Validate(cfg))

	cfg.Ranking.Metrics = []string{"pb_ratio"}
	assert.Error(t, Validate(cfg))
}

func TestHash_ChangesWithConfig(t *testing.T) {
	a := Default("rv")
	b := Default("rv")
	b.Selection.TopN = 20

	ha, _ := Hash(a)
	hb, _ := Hash(b)
	assert.NotEqual(t, ha, hb)
}

func TestWarn(t *testing.T) {
	cfg := Default("rv")
	assert.Empty(t, Warn(cfg))

	cfg.Fetch.BatchSize = 10
	cfg.Selection.TopN = 500
	codes := []string{}
	for _, w := range Warn(cfg) {
		codes = append(codes, w.Code)
	}
	assert.ElementsMatch(t, []string{"SMALL_BATCH", "LARGE_PORTFOLIO"}, codes)
}

func TestNewDecisionSnapshot(t *testing.T) {
	cfg := Default("pe")
	snap, err := NewDecisionSnapshot(cfg, []byte("strategy: pe\n"))
	require.NoError(t, err)

	assert.Equal(t, "pe_value", snap.StrategyID)
	assert.Len(t, snap.ConfigHash, 64)
	assert.Equal(t, "strategy: pe\n", snap.ConfigYAML)
}
