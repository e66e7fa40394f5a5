package s2_signals

import (
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/valuequant/backend/internal/contracts"
	"github.com/wonny/valuequant/backend/pkg/logger"
)

// Imputer fills missing metric values with the cross-sectional mean
// ⭐ SSOT: 결측값 대체는 여기서만
type Imputer struct {
	logger *logger.Logger
}

// NewImputer creates a new imputer
func NewImputer(log *logger.Logger) *Imputer {
	return &Imputer{logger: log.Module("imputer")}
}

// Impute returns a copy of the universe where every absent value of each
// metric is replaced by the mean of that metric's present values. Metrics
// are handled independently. A metric with no present value at all yields
// an EmptyMetricError. The input universe is not modified.
func (im *Imputer) Impute(universe *contracts.Universe, metrics []contracts.MetricSpec) (*contracts.Universe, error) {
	out := universe.Clone()

	for _, spec := range metrics {
		present, missing := splitColumn(out.Column(spec.ID))
		if len(present) == 0 {
			return nil, &contracts.EmptyMetricError{Metric: spec.ID, Universe: out.Count()}
		}
		if len(missing) == 0 {
			continue
		}

		mean := stat.Mean(present, nil)
		for _, i := range missing {
			out.Records[i].Metrics[spec.ID] = contracts.Some(mean)
		}

		im.logger.WithFields(logger.Fields{
			"metric":  spec.ID,
			"imputed": len(missing),
			"mean":    mean,
		}).Debug("Imputed missing values")
	}

	return out, nil
}

// splitColumn separates present values from the indexes of absent ones
func splitColumn(col []contracts.OptionalFloat) (present []float64, missing []int) {
	present = make([]float64, 0, len(col))
	for i, v := range col {
		if v.Valid {
			present = append(present, v.Value)
		} else {
			missing = append(missing, i)
		}
	}
	return present, missing
}
