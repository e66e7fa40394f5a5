package s2_signals

import (
	"context"
	"fmt"

	"github.com/wonny/valuequant/backend/internal/contracts"
	"github.com/wonny/valuequant/backend/pkg/logger"
)

// Builder runs imputation, percentile ranking and composite scoring
// ⭐ SSOT: 시그널 생성 오케스트레이션은 여기서만
type Builder struct {
	imputer *Imputer
	ranker  *Ranker
	logger  *logger.Logger
}

// NewBuilder creates a new signal builder
func NewBuilder(imputer *Imputer, ranker *Ranker, log *logger.Logger) *Builder {
	return &Builder{
		imputer: imputer,
		ranker:  ranker,
		logger:  log.Module("signals"),
	}
}

// Build scores every symbol of the universe on the given metrics.
// An EmptyMetricError from imputation stays reachable through errors.As.
func (b *Builder) Build(ctx context.Context, universe *contracts.Universe, metrics []contracts.MetricSpec) (*contracts.SignalSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.logger.WithFields(logger.Fields{
		"symbols": universe.Count(),
		"metrics": len(metrics),
		"kind":    b.ranker.Kind(),
	}).Info("Starting signal generation")

	imputed, err := b.imputer.Impute(universe, metrics)
	if err != nil {
		return nil, fmt.Errorf("impute: %w", err)
	}

	table, err := b.ranker.Rank(imputed, metrics)
	if err != nil {
		return nil, fmt.Errorf("percentile: %w", err)
	}

	scored, err := Score(imputed, table)
	if err != nil {
		return nil, fmt.Errorf("composite: %w", err)
	}

	b.logger.WithField("scored", len(scored)).Info("Signal generation completed")

	return &contracts.SignalSet{
		Universe:    imputed,
		Percentiles: table,
		Scored:      scored,
	}, nil
}
