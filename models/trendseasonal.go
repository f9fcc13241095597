package models

import (
	"fmt"
	"math"
	"time"

	"github.com/pharmalytics/pharmaforecast/changepoint"
	"github.com/pharmalytics/pharmaforecast/feature"
	"github.com/pharmalytics/pharmaforecast/linearmodel"
	"gonum.org/v1/gonum/mat"
)

// TrendSeasonalOptions configures the trend plus seasonality adapter.
type TrendSeasonalOptions struct {
	// SeasonalityOrder is the number of Fourier harmonics modelling the
	// annual cycle.
	SeasonalityOrder int

	// NumChangepoints auto-generates evenly spaced trend changepoints
	// across the first 80% of the training range. Changepoints adds
	// caller-pinned changepoints at known times on top of those.
	NumChangepoints int
	Changepoints    []changepoint.Changepoint

	// Regularization is the lasso penalty on the fit. Higher values
	// stiffen the trend by shrinking changepoint and seasonal weights.
	Regularization float64

	// Multiplicative fits in log space so the seasonal swing scales
	// with the level of the series.
	Multiplicative bool

	Iterations int
	Tolerance  float64
}

// NewDefaultTrendSeasonalOptions returns a default set of trend-seasonal options
func NewDefaultTrendSeasonalOptions() *TrendSeasonalOptions {
	return &TrendSeasonalOptions{
		SeasonalityOrder: 3,
		NumChangepoints:  4,
		Regularization:   1.0,
		Multiplicative:   true,
		Iterations:       500,
		Tolerance:        1e-8,
	}
}

// TrendSeasonal is a univariate model decomposing the series into a
// piecewise-linear trend and annual Fourier seasonality. It consumes
// only the date and units_sold columns.
type TrendSeasonal struct {
	opt *TrendSeasonalOptions

	model        *linearmodel.LassoRegression
	trainStart   time.Time
	changepoints []float64
}

func NewTrendSeasonal(opt *TrendSeasonalOptions) *TrendSeasonal {
	if opt == nil {
		opt = NewDefaultTrendSeasonalOptions()
	}
	return &TrendSeasonal{opt: opt}
}

func (ts *TrendSeasonal) TrainAndPredict(in Input) ([]float64, error) {
	train := in.Table.FilterYearBefore(in.TargetYear).DropNaNRows([]string{feature.ColUnitsSold})
	n := train.Len()
	if n < MinTrainRows {
		return nil, fmt.Errorf("trend-seasonal got %d training rows, needs at least %d, %w",
			n, MinTrainRows, ErrInsufficientData)
	}

	times := train.Times()
	y, _ := train.Column(feature.ColUnitsSold)
	ts.trainStart = times[0]

	target := make([]float64, n)
	for i, v := range y {
		if ts.opt.Multiplicative {
			target[i] = math.Log1p(v)
		} else {
			target[i] = v
		}
	}

	lastIdx := monthsBetween(ts.trainStart, times[n-1])
	ts.changepoints = ts.changepointPositions(lastIdx)

	x := mat.NewDense(n, ts.featureDim(), nil)
	for i, tm := range times {
		ts.fillRow(x.RawRowView(i), tm)
	}

	ts.model = linearmodel.NewLassoRegression(&linearmodel.LassoOptions{
		Lambda:       ts.opt.Regularization,
		Iterations:   ts.opt.Iterations,
		Tolerance:    ts.opt.Tolerance,
		FitIntercept: true,
	})
	if err := ts.model.Fit(x, mat.NewDense(n, 1, target)); err != nil {
		return nil, fmt.Errorf("trend-seasonal fit, %v, %w", err, ErrModelTraining)
	}

	xf := mat.NewDense(ForecastHorizon, ts.featureDim(), nil)
	for m := 0; m < ForecastHorizon; m++ {
		tm := time.Date(in.TargetYear, time.Month(m+1), 1, 0, 0, 0, 0, time.UTC)
		ts.fillRow(xf.RawRowView(m), tm)
	}
	preds, err := ts.model.Predict(xf)
	if err != nil {
		return nil, fmt.Errorf("trend-seasonal predict, %v, %w", err, ErrModelTraining)
	}

	if ts.opt.Multiplicative {
		for i, v := range preds {
			preds[i] = math.Expm1(v)
		}
	}
	return clipNonNegative(preds), nil
}

// featureDim is trend + 2 features per harmonic + one hinge per changepoint.
func (ts *TrendSeasonal) featureDim() int {
	return 1 + 2*ts.opt.SeasonalityOrder + len(ts.changepoints)
}

func (ts *TrendSeasonal) fillRow(row []float64, tm time.Time) {
	mi := monthsBetween(ts.trainStart, tm)
	m := float64(tm.Month())

	row[0] = mi
	for k := 1; k <= ts.opt.SeasonalityOrder; k++ {
		rad := 2.0 * math.Pi * float64(k) * m / 12.0
		row[2*k-1] = math.Sin(rad)
		row[2*k] = math.Cos(rad)
	}
	base := 1 + 2*ts.opt.SeasonalityOrder
	for j, cp := range ts.changepoints {
		row[base+j] = math.Max(0, mi-cp)
	}
}

func (ts *TrendSeasonal) changepointPositions(lastIdx float64) []float64 {
	var pos []float64
	if ts.opt.NumChangepoints > 0 && lastIdx > 0 {
		// evenly spaced across the first 80% of the training range
		span := 0.8 * lastIdx
		for j := 1; j <= ts.opt.NumChangepoints; j++ {
			pos = append(pos, span*float64(j)/float64(ts.opt.NumChangepoints+1))
		}
	}
	for _, cp := range ts.opt.Changepoints {
		p := cp.MonthsSince(ts.trainStart)
		if p > 0 && p <= lastIdx {
			pos = append(pos, p)
		}
	}
	return pos
}
