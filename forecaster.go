// Package pharmaforecast forecasts monthly pharmaceutical product
// sales. A Forecaster picks a model per product category, trains it on
// history before the target year, predicts all twelve months of that
// year, and walks an ordered fallback list when the chosen model fails.
package pharmaforecast

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/pharmalytics/pharmaforecast/category"
	"github.com/pharmalytics/pharmaforecast/evaluate"
	"github.com/pharmalytics/pharmaforecast/feature"
	"github.com/pharmalytics/pharmaforecast/models"
	"github.com/pharmalytics/pharmaforecast/stats"
	"github.com/pharmalytics/pharmaforecast/timedataset"
)

// ForecastSpec is the immutable input of a forecast run. Category
// overrides the series' own raw category when set. Model defaults to
// auto selection.
type ForecastSpec struct {
	Product  string
	Category string
	Model    ModelName
	Year     int
}

// SeriesSource loads product sales history from a storage backend.
type SeriesSource interface {
	ProductSeries(ctx context.Context, product string) (*timedataset.ProductSeries, error)
}

// ResultSink persists forecast results keyed by product and target
// year. Re-running a forecast overwrites the prior result for that key.
type ResultSink interface {
	SaveResult(ctx context.Context, year int, res *Result) error
}

// Forecaster runs the category-driven forecasting pipeline.
type Forecaster struct {
	opt *Options
}

// New creates a Forecaster using the provided options. If no options
// are provided a default is used.
func New(opt *Options) *Forecaster {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	return &Forecaster{opt: opt}
}

// Run forecasts the twelve months of spec.Year for the given series.
// Individual model failures are logged and absorbed by the fallback
// walk; only an invalid model name or the failure of every candidate
// surfaces to the caller.
func (f *Forecaster) Run(series *timedataset.ProductSeries, spec ForecastSpec) (*Result, error) {
	if series == nil || series.Len() == 0 {
		return nil, ErrNoSeries
	}

	model := spec.Model
	if model == "" {
		model = ModelAuto
	}
	if !model.Valid() {
		return nil, fmt.Errorf("model %q, %w", model, ErrInvalidModelName)
	}

	rawCategory := spec.Category
	if rawCategory == "" {
		rawCategory = series.Category
	}
	catType := category.Classify(rawCategory)

	working := series
	if f.opt.OutlierOptions != nil {
		scrubbed := stats.ScrubOutliers(
			series.Y,
			f.opt.OutlierOptions.LowerPercentile,
			f.opt.OutlierOptions.UpperPercentile,
			f.opt.OutlierOptions.TukeyFactor,
		)
		var err error
		working, err = timedataset.NewProductSeries(series.Product, series.Category, series.T, scrubbed, series.Ext)
		if err != nil {
			return nil, fmt.Errorf("scrubbing outliers for %q, %w", series.Product, err)
		}
	}

	table, featureNames := feature.BuildHistorical(working, catType)
	in := models.Input{
		Table:        table,
		FeatureNames: featureNames,
		TargetYear:   spec.Year,
		Future:       f.buildFuture(table, catType, spec.Year),
	}

	primary := model
	if primary == ModelAuto {
		primary = SelectModel(catType)
	}

	preds, err := f.runModel(primary, in)
	modelUsed := string(primary)
	if err != nil {
		slog.Warn("primary model failed, walking fallbacks",
			"product", series.Product, "model", primary, "error", err.Error())
		attempts := []Attempt{{Model: primary, Err: err}}

		recovered := false
		for _, fb := range FallbackModels(catType) {
			fbPreds, fbErr := f.runModel(fb, in)
			if fbErr != nil {
				slog.Warn("fallback model failed",
					"product", series.Product, "model", fb, "error", fbErr.Error())
				attempts = append(attempts, Attempt{Model: fb, Err: fbErr})
				continue
			}
			preds = fbPreds
			modelUsed = fmt.Sprintf("%s (fallback)", fb)
			recovered = true
			break
		}
		if !recovered {
			return nil, &AllModelsFailedError{Attempts: attempts}
		}
	}

	actual := make([]*float64, models.ForecastHorizon)
	actualVals := make([]float64, models.ForecastHorizon)
	hasActual := false
	for m := 0; m < models.ForecastHorizon; m++ {
		v, ok := series.ValueAt(spec.Year, time.Month(m+1))
		if !ok {
			actualVals[m] = math.NaN()
			continue
		}
		vv := v
		actual[m] = &vv
		actualVals[m] = v
		hasActual = true
	}

	// metrics are only meaningful once at least one month of the target
	// year has been observed
	var metrics *evaluate.Metrics
	if hasActual {
		metrics = evaluate.CalculateMetrics(actualVals, preds)
	}

	rounded := make([]float64, len(preds))
	for i, p := range preds {
		rounded[i] = math.Round(p*100.0) / 100.0
	}

	return &Result{
		Product:      series.Product,
		Category:     rawCategory,
		ModelUsed:    modelUsed,
		Months:       MonthLabels(spec.Year),
		Actual:       actual,
		Predicted:    rounded,
		Metrics:      metrics,
		FeaturesUsed: featureNames,
	}, nil
}

// RunFromSource loads the product's series from src, runs the forecast,
// and persists the result to sink when one is provided.
func (f *Forecaster) RunFromSource(ctx context.Context, src SeriesSource, sink ResultSink, spec ForecastSpec) (*Result, error) {
	series, err := src.ProductSeries(ctx, spec.Product)
	if err != nil {
		return nil, fmt.Errorf("loading series for %q, %w", spec.Product, err)
	}
	res, err := f.Run(series, spec)
	if err != nil {
		return nil, err
	}
	if sink != nil {
		if err := sink.SaveResult(ctx, spec.Year, res); err != nil {
			return nil, fmt.Errorf("saving result for %q, %w", spec.Product, err)
		}
	}
	return res, nil
}

// buildFuture prepares the future feature table the regression style
// models predict from. The history buffer seeds with the last year of
// training rows; with no training rows at all the horizon anchors to
// December of the prior year and the models surface their own
// insufficient data errors.
func (f *Forecaster) buildFuture(table *feature.Table, catType category.Type, targetYear int) *feature.Table {
	train := table.FilterYearBefore(targetYear)

	lastDate := time.Date(targetYear-1, time.December, 1, 0, 0, 0, 0, time.UTC)
	var lastKnown []float64
	if train.Len() > 0 {
		times := train.Times()
		lastDate = times[len(times)-1]
		if y, ok := train.Column(feature.ColUnitsSold); ok {
			if len(y) > 12 {
				y = y[len(y)-12:]
			}
			lastKnown = y
		}
	}
	return feature.BuildFuture(lastDate, models.ForecastHorizon, catType, lastKnown, nil)
}

func (f *Forecaster) runModel(name ModelName, in models.Input) ([]float64, error) {
	switch name {
	case ModelTrendSeasonal:
		return models.NewTrendSeasonal(f.opt.TrendSeasonal).TrainAndPredict(in)
	case ModelGradientBoosted:
		return models.NewGradientBoosted(f.opt.GradientBoosted).TrainAndPredict(in)
	case ModelSeasonalAR:
		return models.NewSeasonalAR(f.opt.SeasonalAR).TrainAndPredict(in)
	case ModelBlended:
		return models.NewBlended(f.opt.Blended).TrainAndPredict(in)
	}
	return nil, fmt.Errorf("model %q, %w", name, ErrInvalidModelName)
}
