package strategyconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wonny/valuequant/backend/internal/contracts"
	"github.com/wonny/valuequant/backend/internal/s0_data"
	"github.com/wonny/valuequant/backend/internal/s2_signals"
	"github.com/wonny/valuequant/backend/internal/selection"
)

// Load reads YAML file and returns Config with raw bytes
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, data, err
	}
	return cfg, data, nil
}

// Parse decodes and validates YAML content; omitted fields take defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills zero values. 지표 목록은 전략에 따라 결정
func (c *Config) applyDefaults() {
	if c.Universe.Source == "" {
		c.Universe.Source = "sp500"
	}
	if c.Fetch.BatchSize == 0 {
		c.Fetch.BatchSize = s0_data.MaxBatchSize
	}
	if c.Fetch.Concurrency == 0 {
		c.Fetch.Concurrency = s0_data.DefaultCollectorConfig().Concurrency
	}
	if c.Fetch.RatePerSecond == 0 {
		c.Fetch.RatePerSecond = s0_data.DefaultCollectorConfig().RatePerSecond
	}
	if c.Fetch.Timeout == "" {
		c.Fetch.Timeout = "2m"
	}
	if c.Fetch.CacheTTL == "" {
		c.Fetch.CacheTTL = "15m"
	}
	if len(c.Ranking.Metrics) == 0 {
		for _, spec := range contracts.Strategy(c.Strategy).DefaultMetrics() {
			c.Ranking.Metrics = append(c.Ranking.Metrics, string(spec.ID))
		}
	}
	if c.Ranking.PercentileKind == "" {
		c.Ranking.PercentileKind = string(s2_signals.PercentileMidrank)
	}
	if c.Selection.TopN == 0 {
		c.Selection.TopN = selection.DefaultTopN
	}
}

// Hash generates SHA256 hash from Config (canonical JSON)
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func Hash(cfg *Config) (string, error) {
	// Struct → JSON (결정적 순서)
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// NewDecisionSnapshot creates a snapshot for audit
func NewDecisionSnapshot(cfg *Config, yamlData []byte) (*DecisionSnapshot, error) {
	hash, err := Hash(cfg)
	if err != nil {
		return nil, err
	}

	return &DecisionSnapshot{
		ConfigHash: hash,
		ConfigYAML: string(yamlData),
		StrategyID: cfg.Meta.StrategyID,
		CreatedAt:  time.Now(),
	}, nil
}
