package pharmaforecast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pharmalytics/pharmaforecast/models"
	"github.com/pharmalytics/pharmaforecast/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// simSeries returns a product series with n months ending just before
// January of endYear, built from a level, annual wave, trend and fixed
// seed noise.
func simSeries(t *testing.T, product, rawCategory string, n, endYear int) *timedataset.ProductSeries {
	t.Helper()

	start := time.Date(endYear, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -n, 0)
	tt := timedataset.GenerateMonthlyT(n, start)
	y := timedataset.GenerateConstY(n, 120.0).
		Add(timedataset.GenerateAnnualWave(tt, 25.0, 0.0)).
		Add(timedataset.GenerateTrend(n, 0.8)).
		Add(timedataset.GenerateNoise(n, 3.0, 11)).
		ClampMin(0)

	series, err := timedataset.NewProductSeries(product, rawCategory, tt, y, nil)
	require.NoError(t, err)
	return series
}

func TestRunInvalidModelName(t *testing.T) {
	series := simSeries(t, "omeprazole 20mg", "omeprazole", 36, 2024)

	_, err := New(nil).Run(series, ForecastSpec{Product: "omeprazole 20mg", Model: "neuralnet", Year: 2024})
	require.ErrorIs(t, err, ErrInvalidModelName)
}

func TestRunNoSeries(t *testing.T) {
	_, err := New(nil).Run(nil, ForecastSpec{Year: 2024})
	require.ErrorIs(t, err, ErrNoSeries)
}

func TestRunAutoSelection(t *testing.T) {
	series := simSeries(t, "omeprazole 20mg", "omeprazole", 36, 2024)

	res, err := New(nil).Run(series, ForecastSpec{Product: "omeprazole 20mg", Year: 2024})
	require.NoError(t, err)

	// gastro products dispatch to the trend-seasonal model
	assert.Equal(t, string(ModelTrendSeasonal), res.ModelUsed)
	assert.Equal(t, "omeprazole", res.Category)
	assert.Equal(t, MonthLabels(2024), res.Months)
	require.Len(t, res.Predicted, models.ForecastHorizon)
	for _, v := range res.Predicted {
		assert.GreaterOrEqual(t, v, 0.0)
	}

	// nothing observed in the target year yet
	for _, a := range res.Actual {
		assert.Nil(t, a)
	}
	assert.Nil(t, res.Metrics)
}

func TestRunFallbackAnnotation(t *testing.T) {
	// 18 months is enough for trend-seasonal but not for the seasonal
	// autoregressive primary of antibiotics
	series := simSeries(t, "cefixime 200mg", "cefixime", 18, 2024)
	f := New(nil)

	res, err := f.Run(series, ForecastSpec{Product: "cefixime 200mg", Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, "trend_seasonal (fallback)", res.ModelUsed)

	// the fallback's predictions match a direct trend-seasonal run
	direct, err := f.Run(series, ForecastSpec{Product: "cefixime 200mg", Model: ModelTrendSeasonal, Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, direct.Predicted, res.Predicted)
}

func TestRunAllModelsFailed(t *testing.T) {
	series := simSeries(t, "cefixime 200mg", "cefixime", 6, 2024)

	_, err := New(nil).Run(series, ForecastSpec{Product: "cefixime 200mg", Year: 2024})
	require.Error(t, err)

	var allFailed *AllModelsFailedError
	require.ErrorAs(t, err, &allFailed)
	require.Len(t, allFailed.Attempts, 3)
	assert.Equal(t, ModelSeasonalAR, allFailed.Attempts[0].Model)
	assert.Equal(t, ModelTrendSeasonal, allFailed.Attempts[1].Model)
	assert.Equal(t, ModelGradientBoosted, allFailed.Attempts[2].Model)
	assert.ErrorIs(t, err, models.ErrInsufficientData)

	msg := err.Error()
	for _, name := range []string{"seasonal_ar", "trend_seasonal", "gradient_boosted"} {
		assert.Contains(t, msg, name)
	}
}

func TestRunWithActuals(t *testing.T) {
	// 40 months ending April 2024 leaves 36 training months plus 4
	// observed target-year months
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -40, 0)
	tt := timedataset.GenerateMonthlyT(40, start)
	y := timedataset.GenerateConstY(40, 120.0).
		Add(timedataset.GenerateAnnualWave(tt, 25.0, 0.0)).
		Add(timedataset.GenerateNoise(40, 3.0, 11)).
		ClampMin(0)
	series, err := timedataset.NewProductSeries("sitagliptin 100mg", "sitagliptin", tt, y, nil)
	require.NoError(t, err)

	res, err := New(nil).Run(series, ForecastSpec{Product: "sitagliptin 100mg", Year: 2024})
	require.NoError(t, err)

	for m := 0; m < 4; m++ {
		assert.NotNil(t, res.Actual[m], "month %d", m+1)
	}
	for m := 4; m < models.ForecastHorizon; m++ {
		assert.Nil(t, res.Actual[m], "month %d", m+1)
	}
	require.NotNil(t, res.Metrics)
	assert.GreaterOrEqual(t, res.Metrics.MAE, 0.0)
}

func TestRunDeterministic(t *testing.T) {
	series := simSeries(t, "diclofenac sodium 50mg", "diclofenac sodium", 36, 2024)
	f := New(nil)
	spec := ForecastSpec{Product: "diclofenac sodium 50mg", Year: 2024}

	first, err := f.Run(series, spec)
	require.NoError(t, err)
	second, err := f.Run(series, spec)
	require.NoError(t, err)
	assert.Equal(t, first.Predicted, second.Predicted)
	assert.Equal(t, first.ModelUsed, second.ModelUsed)
}

func TestRunOutlierScrub(t *testing.T) {
	series := simSeries(t, "omeprazole 20mg", "omeprazole", 36, 2024)
	series.Y[10] = 5000 // bulk order spike

	opt := NewDefaultOptions()
	opt.OutlierOptions = NewDefaultOutlierOptions()

	res, err := New(opt).Run(series, ForecastSpec{Product: "omeprazole 20mg", Year: 2024})
	require.NoError(t, err)
	require.Len(t, res.Predicted, models.ForecastHorizon)

	// the scrubbed forecast stays near the base level instead of being
	// dragged up by the spike
	for m, v := range res.Predicted {
		assert.Less(t, v, 1000.0, "month %d", m+1)
	}
}

func TestRunCategoryOverride(t *testing.T) {
	series := simSeries(t, "private label", "unknown category", 36, 2024)

	res, err := New(nil).Run(series, ForecastSpec{Product: "private label", Category: "cefixime", Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, "cefixime", res.Category)
	// antibiotic dispatch with 36 months of history fits the seasonal
	// autoregressive primary
	assert.Equal(t, string(ModelSeasonalAR), res.ModelUsed)
}

type stubSource struct {
	series *timedataset.ProductSeries
	err    error
}

func (s *stubSource) ProductSeries(_ context.Context, _ string) (*timedataset.ProductSeries, error) {
	return s.series, s.err
}

type stubSink struct {
	saved map[int]*Result
}

func (s *stubSink) SaveResult(_ context.Context, year int, res *Result) error {
	if s.saved == nil {
		s.saved = make(map[int]*Result)
	}
	s.saved[year] = res
	return nil
}

func TestRunFromSource(t *testing.T) {
	series := simSeries(t, "omeprazole 20mg", "omeprazole", 36, 2024)
	src := &stubSource{series: series}
	sink := &stubSink{}

	res, err := New(nil).RunFromSource(context.Background(), src, sink, ForecastSpec{Product: "omeprazole 20mg", Year: 2024})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Same(t, res, sink.saved[2024])
}

func TestRunFromSourceLoadError(t *testing.T) {
	src := &stubSource{err: errors.New("connection refused")}

	_, err := New(nil).RunFromSource(context.Background(), src, nil, ForecastSpec{Product: "missing", Year: 2024})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}
