// Package models contains the interchangeable forecasting model
// adapters. Every adapter trains strictly on rows before the target
// year and predicts the twelve calendar months of the target year,
// clipping predictions to be non-negative.
package models

import (
	"time"

	"github.com/pharmalytics/pharmaforecast/feature"
)

const (
	// ForecastHorizon is the number of months every adapter predicts.
	ForecastHorizon = 12

	// MinTrainRows is the training row floor for the trend-seasonal and
	// gradient-boosted adapters. MinSeasonalTrainRows doubles it for
	// the seasonal autoregressive adapter, which needs two full
	// seasonal cycles for its period-12 differencing.
	MinTrainRows         = 12
	MinSeasonalTrainRows = 24
)

// Input is the common training input for all adapters. Table holds the
// historical feature rows including the units_sold target.
// FeatureNames is the category-selected feature subset. Future holds
// pre-built feature rows for the forecast horizon and is required by
// the adapters that regress on the feature set.
type Input struct {
	Table        *feature.Table
	FeatureNames []string
	TargetYear   int
	Future       *feature.Table
}

// Predictor is a trainable forecasting model. TrainAndPredict returns
// exactly ForecastHorizon non-negative monthly predictions for the
// input's target year.
type Predictor interface {
	TrainAndPredict(in Input) ([]float64, error)
}

func clipNonNegative(preds []float64) []float64 {
	for i, v := range preds {
		if v < 0 {
			preds[i] = 0
		}
	}
	return preds
}

// monthsBetween counts whole calendar months from a to b.
func monthsBetween(a, b time.Time) float64 {
	return float64((b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month()))
}
