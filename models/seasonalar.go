package models

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/pharmalytics/pharmaforecast/feature"
	"github.com/pharmalytics/pharmaforecast/linearmodel"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ARIMAOrder holds an autoregressive/differencing/moving-average order
// triple. Autoregressive and moving-average orders above 1 are clamped
// to 1.
type ARIMAOrder struct {
	P int
	D int
	Q int
}

// SeasonalAROptions configures the seasonal autoregressive adapter.
type SeasonalAROptions struct {
	Order    ARIMAOrder // nonseasonal (p,d,q)
	Seasonal ARIMAOrder // seasonal (P,D,Q) at Period
	Period   int

	// RetryOrder and RetrySeasonal are tried once when the primary
	// order fails to fit, before surfacing the failure.
	RetryOrder    ARIMAOrder
	RetrySeasonal ARIMAOrder

	// MaxIterations caps the coordinate descent iterations of the
	// parameter estimation. Fit latency is bounded by this cap rather
	// than any wall-clock timeout.
	MaxIterations int

	// Lambda is a small stabilizing penalty letting the estimation
	// handle designs with more columns than differenced rows.
	Lambda float64
}

// NewDefaultSeasonalAROptions returns a default set of seasonal autoregressive options
func NewDefaultSeasonalAROptions() *SeasonalAROptions {
	return &SeasonalAROptions{
		Order:         ARIMAOrder{P: 1, D: 1, Q: 1},
		Seasonal:      ARIMAOrder{P: 1, D: 1, Q: 1},
		Period:        12,
		RetryOrder:    ARIMAOrder{P: 1, D: 0, Q: 0},
		RetrySeasonal: ARIMAOrder{P: 1, D: 0, Q: 0},
		MaxIterations: 200,
		Lambda:        1e-3,
	}
}

// SeasonalAR is a seasonal autoregressive integrated moving-average
// model with exogenous regressors. Moving-average terms are estimated
// with the two-stage Hannan-Rissanen regression approach: a long
// autoregression supplies residual proxies which the final regression
// consumes as lagged shock terms.
type SeasonalAR struct {
	opt *SeasonalAROptions
}

func NewSeasonalAR(opt *SeasonalAROptions) *SeasonalAR {
	if opt == nil {
		opt = NewDefaultSeasonalAROptions()
	}
	return &SeasonalAR{opt: opt}
}

func (s *SeasonalAR) TrainAndPredict(in Input) ([]float64, error) {
	train := in.Table.FilterYearBefore(in.TargetYear)
	y, ok := train.Column(feature.ColUnitsSold)
	if !ok {
		return nil, fmt.Errorf("training table has no %s column, %w", feature.ColUnitsSold, ErrModelTraining)
	}
	forwardFill(y)

	n := len(y)
	if n < MinSeasonalTrainRows {
		return nil, fmt.Errorf("seasonal autoregressive got %d training rows, needs at least %d, %w",
			n, MinSeasonalTrainRows, ErrInsufficientData)
	}

	exogNames := ExogenousNames(in.FeatureNames)
	exogHist, exogFuture, err := s.exogenous(train, in.Future, exogNames)
	if err != nil {
		return nil, err
	}

	preds, err := s.fitAndForecast(y, exogHist, exogFuture, s.opt.Order, s.opt.Seasonal)
	if err != nil {
		slog.Warn("seasonal autoregressive primary order failed, retrying simpler order",
			"order", s.opt.Order, "seasonal", s.opt.Seasonal, "error", err.Error())
		var err2 error
		preds, err2 = s.fitAndForecast(y, exogHist, exogFuture, s.opt.RetryOrder, s.opt.RetrySeasonal)
		if err2 != nil {
			return nil, fmt.Errorf("seasonal autoregressive fit failed: %v; simpler-order retry: %v, %w",
				err, err2, ErrModelTraining)
		}
	}
	return clipNonNegative(preds), nil
}

// ExogenousNames filters a feature set down to the columns usable as
// exogenous regressors, dropping pure calendar encodings which the
// seasonal structure already covers.
func ExogenousNames(names []string) []string {
	calendar := make(map[string]bool, len(feature.CalendarCols))
	for _, c := range feature.CalendarCols {
		calendar[c] = true
	}
	var out []string
	for _, name := range names {
		if !calendar[name] {
			out = append(out, name)
		}
	}
	return out
}

// exogenous extracts the historical exogenous matrix and the matching
// future values. Missing future values fall back to the historical
// per-column mean replicated across the horizon.
func (s *SeasonalAR) exogenous(train, future *feature.Table, names []string) ([][]float64, [][]float64, error) {
	if len(names) == 0 {
		return nil, nil, nil
	}

	n := train.Len()
	hist := make([][]float64, n)
	for i := range hist {
		hist[i] = make([]float64, len(names))
	}
	futureRows := make([][]float64, ForecastHorizon)
	for i := range futureRows {
		futureRows[i] = make([]float64, len(names))
	}

	for j, name := range names {
		col, ok := train.Column(name)
		if !ok {
			return nil, nil, fmt.Errorf("exogenous column %q absent from training table, %w",
				name, ErrMissingExogenousData)
		}
		for i, v := range col {
			if math.IsNaN(v) {
				v = 0
			}
			hist[i][j] = v
		}

		if future != nil && future.Has(name) {
			if future.Len() != ForecastHorizon {
				return nil, nil, fmt.Errorf("future table has %d rows, need %d, %w",
					future.Len(), ForecastHorizon, ErrMissingExogenousData)
			}
			fcol, _ := future.Column(name)
			for i, v := range fcol {
				if math.IsNaN(v) {
					v = 0
				}
				futureRows[i][j] = v
			}
			continue
		}

		// no forecast for this signal; hold it at its historical mean
		histCol := make([]float64, n)
		for i := range histCol {
			histCol[i] = hist[i][j]
		}
		mean := stat.Mean(histCol, nil)
		for i := range futureRows {
			futureRows[i][j] = mean
		}
	}
	return hist, futureRows, nil
}

func (s *SeasonalAR) fitAndForecast(y []float64, exogHist, exogFuture [][]float64, order, seasonal ARIMAOrder) ([]float64, error) {
	period := s.opt.Period
	if period <= 0 {
		period = 12
	}

	// difference the target, recording each level for inversion
	w := append([]float64{}, y...)
	var levels [][]float64
	var levelLags []int
	for i := 0; i < order.D; i++ {
		levels = append(levels, append([]float64{}, w...))
		levelLags = append(levelLags, 1)
		w = diff(w, 1)
	}
	for i := 0; i < seasonal.D; i++ {
		levels = append(levels, append([]float64{}, w...))
		levelLags = append(levelLags, period)
		w = diff(w, period)
	}

	// difference exogenous identically over the history+future span
	var exogTrain, exogFut [][]float64
	if len(exogHist) > 0 {
		all := append(append([][]float64{}, exogHist...), exogFuture...)
		for i := 0; i < order.D; i++ {
			all = diffRows(all, 1)
		}
		for i := 0; i < seasonal.D; i++ {
			all = diffRows(all, period)
		}
		exogTrain = all[:len(w)]
		exogFut = all[len(w):]
	}

	arLags := lagSet(order.P, seasonal.P, period)
	maLags := lagSet(order.Q, seasonal.Q, period)
	maxLag := 0
	for _, l := range append(append([]int{}, arLags...), maLags...) {
		if l > maxLag {
			maxLag = l
		}
	}

	minRows := len(arLags) + len(maLags) + 1
	if minRows < 4 {
		minRows = 4
	}
	usable := len(w) - maxLag
	if usable < minRows {
		return nil, fmt.Errorf("order needs %d usable differenced rows, have %d, %w",
			minRows, usable, ErrInsufficientData)
	}

	// residual proxies for the moving-average terms
	var resid []float64
	if len(maLags) > 0 {
		var err error
		resid, err = s.longARResiduals(w, maxLag)
		if err != nil {
			return nil, err
		}
	}

	nExog := 0
	if len(exogTrain) > 0 {
		nExog = len(exogTrain[0])
	}
	nCols := len(arLags) + len(maLags) + nExog
	x := mat.NewDense(usable, nCols, nil)
	target := mat.NewDense(usable, 1, nil)
	for t := maxLag; t < len(w); t++ {
		row := x.RawRowView(t - maxLag)
		for i, l := range arLags {
			row[i] = w[t-l]
		}
		for i, l := range maLags {
			row[len(arLags)+i] = resid[t-l]
		}
		for j := 0; j < nExog; j++ {
			row[len(arLags)+len(maLags)+j] = exogTrain[t][j]
		}
		target.Set(t-maxLag, 0, w[t])
	}

	model := linearmodel.NewLassoRegression(&linearmodel.LassoOptions{
		Lambda:       s.opt.Lambda,
		Iterations:   s.opt.MaxIterations,
		Tolerance:    1e-8,
		FitIntercept: true,
	})
	if err := model.Fit(x, target); err != nil {
		return nil, err
	}
	coef := model.Coef()
	intercept := model.Intercept()
	arCoef := coef[:len(arLags)]
	maCoef := coef[len(arLags) : len(arLags)+len(maLags)]
	exogCoef := coef[len(arLags)+len(maLags):]

	// in-sample shocks drive the moving-average terms of the first
	// forecast steps; future shocks are zero
	fitted, err := model.Predict(x)
	if err != nil {
		return nil, err
	}
	shocks := make([]float64, len(w))
	for t := maxLag; t < len(w); t++ {
		shocks[t] = w[t] - fitted[t-maxLag]
	}

	wExt := append([]float64{}, w...)
	forecast := make([]float64, 0, ForecastHorizon)
	for h := 0; h < ForecastHorizon; h++ {
		idx := len(wExt)
		v := intercept
		for i, l := range arLags {
			v += arCoef[i] * wExt[idx-l]
		}
		for i, l := range maLags {
			if idx-l < len(w) {
				v += maCoef[i] * shocks[idx-l]
			}
		}
		for j := 0; j < nExog; j++ {
			v += exogCoef[j] * exogFut[h][j]
		}
		wExt = append(wExt, v)
		forecast = append(forecast, v)
	}

	// undo differencing in reverse order of application
	for i := len(levels) - 1; i >= 0; i-- {
		forecast = invertDiff(levels[i], forecast, levelLags[i])
	}
	return forecast, nil
}

// longARResiduals fits a long autoregression to the differenced series
// and returns its residuals as shock proxies. Residuals before the lag
// horizon are zero.
func (s *SeasonalAR) longARResiduals(w []float64, lag int) ([]float64, error) {
	usable := len(w) - lag
	if usable < 4 {
		return nil, fmt.Errorf("long autoregression needs 4 usable rows, have %d, %w",
			usable, ErrInsufficientData)
	}

	x := mat.NewDense(usable, lag, nil)
	target := mat.NewDense(usable, 1, nil)
	for t := lag; t < len(w); t++ {
		row := x.RawRowView(t - lag)
		for l := 1; l <= lag; l++ {
			row[l-1] = w[t-l]
		}
		target.Set(t-lag, 0, w[t])
	}

	model := linearmodel.NewLassoRegression(&linearmodel.LassoOptions{
		Lambda:       s.opt.Lambda,
		Iterations:   s.opt.MaxIterations,
		Tolerance:    1e-8,
		FitIntercept: true,
	})
	if err := model.Fit(x, target); err != nil {
		return nil, err
	}
	fitted, err := model.Predict(x)
	if err != nil {
		return nil, err
	}

	resid := make([]float64, len(w))
	for t := lag; t < len(w); t++ {
		resid[t] = w[t] - fitted[t-lag]
	}
	return resid, nil
}

// lagSet expands a nonseasonal/seasonal AR or MA order pair into lag
// offsets, including the multiplicative cross term.
func lagSet(p, seasonalP, period int) []int {
	var lags []int
	if p > 0 {
		lags = append(lags, 1)
	}
	if seasonalP > 0 {
		lags = append(lags, period)
	}
	if p > 0 && seasonalP > 0 {
		lags = append(lags, period+1)
	}
	return lags
}

func diff(x []float64, lag int) []float64 {
	if len(x) <= lag {
		return nil
	}
	out := make([]float64, len(x)-lag)
	for i := lag; i < len(x); i++ {
		out[i-lag] = x[i] - x[i-lag]
	}
	return out
}

func diffRows(x [][]float64, lag int) [][]float64 {
	if len(x) <= lag {
		return nil
	}
	out := make([][]float64, len(x)-lag)
	for i := lag; i < len(x); i++ {
		row := make([]float64, len(x[i]))
		for j := range row {
			row[j] = x[i][j] - x[i-lag][j]
		}
		out[i-lag] = row
	}
	return out
}

// invertDiff reconstructs future values on the undifferenced level
// given the pre-differencing history.
func invertDiff(hist, future []float64, lag int) []float64 {
	ext := append([]float64{}, hist...)
	out := make([]float64, 0, len(future))
	for _, v := range future {
		nv := v + ext[len(ext)-lag]
		ext = append(ext, nv)
		out = append(out, nv)
	}
	return out
}

// forwardFill replaces NaNs with the last seen value, or 0 when no
// value has been seen yet.
func forwardFill(y []float64) {
	last := 0.0
	for i, v := range y {
		if math.IsNaN(v) {
			y[i] = last
			continue
		}
		last = v
	}
}
