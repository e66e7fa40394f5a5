package strategyconfig

import "time"

// Config는 가치 전략 실행 1회의 전체 설정
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Strategy  string    `yaml:"strategy" json:"strategy"` // pe | rv
	Universe  Universe  `yaml:"universe" json:"universe"`
	Fetch     Fetch     `yaml:"fetch" json:"fetch"`
	Ranking   Ranking   `yaml:"ranking" json:"ranking"`
	Selection Selection `yaml:"selection" json:"selection"`
	Portfolio Portfolio `yaml:"portfolio" json:"portfolio"`
	Schedule  Schedule  `yaml:"schedule" json:"schedule"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID  string `yaml:"strategy_id" json:"strategy_id"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Universe S1: 종목 목록 출처
type Universe struct {
	Source string `yaml:"source" json:"source"` // csv | sp500
	Path   string `yaml:"path,omitempty" json:"path,omitempty"`
	URL    string `yaml:"url,omitempty" json:"url,omitempty"`
}

// Fetch S0: 배치 수집
type Fetch struct {
	BatchSize     int     `yaml:"batch_size" json:"batch_size"` // ≤ 100
	Concurrency   int     `yaml:"concurrency" json:"concurrency"`
	RatePerSecond float64 `yaml:"rate_per_second" json:"rate_per_second"`
	Timeout       string  `yaml:"timeout" json:"timeout"`     // Go duration, 전체 수집 제한
	CacheTTL      string  `yaml:"cache_ttl" json:"cache_ttl"` // "0s" = 캐시 안 함
}

// TimeoutDuration parses Fetch.Timeout (validated beforehand)
func (f Fetch) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(f.Timeout)
	return d
}

// CacheTTLDuration parses Fetch.CacheTTL (validated beforehand)
func (f Fetch) CacheTTLDuration() time.Duration {
	d, _ := time.ParseDuration(f.CacheTTL)
	return d
}

// Ranking S2: 지표 및 퍼센타일
type Ranking struct {
	Metrics        []string `yaml:"metrics" json:"metrics"`
	PercentileKind string   `yaml:"percentile_kind" json:"percentile_kind"` // midrank | scipy_rank
}

// Selection S3: 상위 N
type Selection struct {
	TopN int `yaml:"top_n" json:"top_n"`
}

// Portfolio S4: 자본금 (정밀도 보존을 위해 문자열)
type Portfolio struct {
	Capital string `yaml:"capital,omitempty" json:"capital,omitempty"`
}

// Schedule 정기 실행
type Schedule struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Cron    string `yaml:"cron,omitempty" json:"cron,omitempty"` // robfig/cron 6-field (초 포함)
}

// DecisionSnapshot 의사결정 스냅샷 (재현성용)
type DecisionSnapshot struct {
	ConfigHash string    `json:"config_hash"`
	ConfigYAML string    `json:"config_yaml"`
	StrategyID string    `json:"strategy_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Default returns the built-in configuration of a strategy
func Default(strategy string) *Config {
	cfg := &Config{
		Meta:     Meta{StrategyID: strategy + "_value", Version: "1"},
		Strategy: strategy,
		Universe: Universe{Source: "sp500"},
	}
	cfg.applyDefaults()
	return cfg
}
