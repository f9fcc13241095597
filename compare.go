package pharmaforecast

import (
	"math"
	"time"

	"github.com/pharmalytics/pharmaforecast/category"
	"github.com/pharmalytics/pharmaforecast/evaluate"
	"github.com/pharmalytics/pharmaforecast/feature"
	"github.com/pharmalytics/pharmaforecast/models"
	"github.com/pharmalytics/pharmaforecast/timedataset"
)

// ModelRun is the outcome of one model in a comparison sweep. Err is
// set when the model failed to fit; Predicted and Metrics are then nil.
type ModelRun struct {
	Model     ModelName         `json:"model"`
	Predicted []float64         `json:"predicted,omitempty"`
	Metrics   *evaluate.Metrics `json:"metrics,omitempty"`
	Err       error             `json:"-"`
}

// CompareModels runs every concrete model on the same feature tables
// and scores each against the target year's observed actuals. Useful
// for auditing whether the category dispatch table picks the right
// model for a product.
func (f *Forecaster) CompareModels(series *timedataset.ProductSeries, spec ForecastSpec) ([]ModelRun, error) {
	if series == nil || series.Len() == 0 {
		return nil, ErrNoSeries
	}

	rawCategory := spec.Category
	if rawCategory == "" {
		rawCategory = series.Category
	}
	catType := category.Classify(rawCategory)

	table, featureNames := feature.BuildHistorical(series, catType)
	in := models.Input{
		Table:        table,
		FeatureNames: featureNames,
		TargetYear:   spec.Year,
		Future:       f.buildFuture(table, catType, spec.Year),
	}

	actualVals := make([]float64, models.ForecastHorizon)
	hasActual := false
	for m := 0; m < models.ForecastHorizon; m++ {
		v, ok := series.ValueAt(spec.Year, time.Month(m+1))
		if !ok {
			actualVals[m] = math.NaN()
			continue
		}
		actualVals[m] = v
		hasActual = true
	}

	candidates := []ModelName{ModelTrendSeasonal, ModelGradientBoosted, ModelSeasonalAR, ModelBlended}
	runs := make([]ModelRun, 0, len(candidates))
	for _, name := range candidates {
		preds, err := f.runModel(name, in)
		if err != nil {
			runs = append(runs, ModelRun{Model: name, Err: err})
			continue
		}
		run := ModelRun{Model: name, Predicted: preds}
		if hasActual {
			run.Metrics = evaluate.CalculateMetrics(actualVals, preds)
		}
		runs = append(runs, run)
	}
	return runs, nil
}
