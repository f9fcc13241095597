// Package evaluate computes forecast accuracy metrics against observed
// actuals.
package evaluate

import (
	"fmt"
	"math"
)

// MAPEUndefined is reported when no pair has a non-zero actual, where
// percentage error has no meaning.
const MAPEUndefined = "N/A"

// Metrics holds the accuracy summary of a forecast against actuals.
// MAPE is reported as a formatted percentage string so an undefined
// value serializes distinctly from 0%.
type Metrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	MAPE string  `json:"mape"`
}

// CalculateMetrics compares predictions with actuals pairwise. Pairs
// where the actual is NaN are skipped entirely; pairs with a zero
// actual contribute to MAE and RMSE but not MAPE. All values round to
// two decimals. When no comparable pair exists the result is zero MAE
// and RMSE with an undefined MAPE, never an error.
func CalculateMetrics(actual, predicted []float64) *Metrics {
	n := len(actual)
	if len(predicted) < n {
		n = len(predicted)
	}

	var (
		absSum  float64
		sqSum   float64
		pctSum  float64
		pairs   int
		nonZero int
	)
	for i := 0; i < n; i++ {
		a := actual[i]
		if math.IsNaN(a) {
			continue
		}
		diff := predicted[i] - a
		absSum += math.Abs(diff)
		sqSum += diff * diff
		pairs++
		if a != 0 {
			pctSum += math.Abs(diff / a)
			nonZero++
		}
	}
	if pairs == 0 {
		return &Metrics{MAE: 0, RMSE: 0, MAPE: MAPEUndefined}
	}

	m := &Metrics{
		MAE:  round2(absSum / float64(pairs)),
		RMSE: round2(math.Sqrt(sqSum / float64(pairs))),
		MAPE: MAPEUndefined,
	}
	if nonZero > 0 {
		m.MAPE = fmt.Sprintf("%.2f%%", 100.0*pctSum/float64(nonZero))
	}
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100.0) / 100.0
}
