package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/wonny/valuequant/backend/internal/contracts"
)

// ErrNotFound is returned when no run matches
var ErrNotFound = errors.New("run not found")

const schemaSQL = `
	CREATE SCHEMA IF NOT EXISTS audit;
	CREATE TABLE IF NOT EXISTS audit.runs (
		id           UUID PRIMARY KEY,
		strategy     TEXT NOT NULL,
		strategy_id  TEXT NOT NULL,
		config_hash  TEXT NOT NULL,
		run_at       TIMESTAMPTZ NOT NULL,
		capital      NUMERIC NOT NULL,
		invested     NUMERIC NOT NULL,
		cash         NUMERIC NOT NULL,
		positions    INT NOT NULL,
		universe     INT NOT NULL,
		output_table JSONB NOT NULL,
		errors       JSONB NOT NULL,
		duration_ms  BIGINT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS runs_strategy_run_at_idx ON audit.runs (strategy, run_at DESC);
`

// Repository handles run audit persistence
// ⭐ SSOT: Audit 데이터 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new audit repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the audit schema and table if missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure audit schema: %w", err)
	}
	return nil
}

// SaveRun inserts a run snapshot
func (r *Repository) SaveRun(ctx context.Context, s *RunSnapshot) error {
	errorsJSON, err := json.Marshal(s.Errors)
	if err != nil {
		return fmt.Errorf("failed to marshal errors: %w", err)
	}

	query := `
		INSERT INTO audit.runs (
			id, strategy, strategy_id, config_hash, run_at,
			capital, invested, cash, positions, universe,
			output_table, errors, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.pool.Exec(ctx, query,
		s.ID, string(s.Strategy), s.StrategyID, s.ConfigHash, s.RunAt,
		s.Capital.String(), s.Invested.String(), s.Cash.String(), s.Positions, s.Universe,
		[]byte(s.Table), errorsJSON, s.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

const selectRun = `
	SELECT id, strategy, strategy_id, config_hash, run_at,
	       capital::text, invested::text, cash::text, positions, universe,
	       output_table, errors, duration_ms
	FROM audit.runs
`

// GetLatestRun returns the most recent run of a strategy
func (r *Repository) GetLatestRun(ctx context.Context, strategy contracts.Strategy) (*RunSnapshot, error) {
	row := r.pool.QueryRow(ctx, selectRun+` WHERE strategy = $1 ORDER BY run_at DESC LIMIT 1`, string(strategy))

	s, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return s, nil
}

// ListRuns returns the latest runs of a strategy, newest first
func (r *Repository) ListRuns(ctx context.Context, strategy contracts.Strategy, limit int) ([]*RunSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, selectRun+` WHERE strategy = $1 ORDER BY run_at DESC LIMIT $2`, string(strategy), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*RunSnapshot
	for rows.Next() {
		s, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

func scanRun(row pgx.Row) (*RunSnapshot, error) {
	var (
		s                       RunSnapshot
		strategy                string
		capital, invested, cash string
		tableJSON, errorsJSON   []byte
		durationMs              int64
	)

	err := row.Scan(
		&s.ID, &strategy, &s.StrategyID, &s.ConfigHash, &s.RunAt,
		&capital, &invested, &cash, &s.Positions, &s.Universe,
		&tableJSON, &errorsJSON, &durationMs,
	)
	if err != nil {
		return nil, err
	}

	s.Strategy = contracts.Strategy(strategy)
	s.Table = tableJSON
	s.Duration = time.Duration(durationMs) * time.Millisecond
	if err := parseDecimals(&s, capital, invested, cash); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(errorsJSON, &s.Errors); err != nil {
		return nil, fmt.Errorf("unmarshal errors: %w", err)
	}
	return &s, nil
}

// parseDecimals reads NUMERIC columns scanned as text
func parseDecimals(s *RunSnapshot, capital, invested, cash string) error {
	var err error
	if s.Capital, err = decimal.NewFromString(capital); err != nil {
		return fmt.Errorf("parse capital: %w", err)
	}
	if s.Invested, err = decimal.NewFromString(invested); err != nil {
		return fmt.Errorf("parse invested: %w", err)
	}
	if s.Cash, err = decimal.NewFromString(cash); err != nil {
		return fmt.Errorf("parse cash: %w", err)
	}
	return nil
}
