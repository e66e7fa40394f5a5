package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wonny/valuequant/backend/internal/contracts"
	"github.com/wonny/valuequant/backend/internal/report"
)

// RunSnapshot is the persisted record of one ranking run
type RunSnapshot struct {
	ID         uuid.UUID          `json:"id"`
	Strategy   contracts.Strategy `json:"strategy"`
	StrategyID string             `json:"strategy_id"`
	ConfigHash string             `json:"config_hash"`
	RunAt      time.Time          `json:"run_at"`
	Capital    decimal.Decimal    `json:"capital"`
	Invested   decimal.Decimal    `json:"invested"`
	Cash       decimal.Decimal    `json:"cash"`
	Positions  int                `json:"positions"`
	Universe   int                `json:"universe"`
	Table      json.RawMessage    `json:"table"`
	Errors     []ErrorEntry       `json:"errors"`
	Duration   time.Duration      `json:"duration"`
}

// ErrorEntry is a per-symbol problem recorded with a run
type ErrorEntry struct {
	Ticker  string `json:"ticker"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// NewRunSnapshot captures a finished run
func NewRunSnapshot(id uuid.UUID, strategyID, configHash string, universe int, table *report.Table, errs []contracts.SymbolError, duration time.Duration) (*RunSnapshot, error) {
	tableJSON, err := json.Marshal(table)
	if err != nil {
		return nil, fmt.Errorf("marshal table: %w", err)
	}

	entries := make([]ErrorEntry, len(errs))
	for i, e := range errs {
		entries[i] = ErrorEntry{Ticker: e.Ticker, Stage: e.Stage, Message: e.Message()}
	}

	return &RunSnapshot{
		ID:         id,
		Strategy:   table.Strategy,
		StrategyID: strategyID,
		ConfigHash: configHash,
		RunAt:      table.Date,
		Capital:    table.Capital,
		Invested:   table.Invested,
		Cash:       table.Cash,
		Positions:  len(table.Rows),
		Universe:   universe,
		Table:      tableJSON,
		Errors:     entries,
		Duration:   duration,
	}, nil
}

// DecodeTable unmarshals the stored output table
func (s *RunSnapshot) DecodeTable() (*report.Table, error) {
	var t report.Table
	if err := json.Unmarshal(s.Table, &t); err != nil {
		return nil, fmt.Errorf("decode table: %w", err)
	}
	return &t, nil
}
