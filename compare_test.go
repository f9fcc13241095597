package pharmaforecast

import (
	"testing"

	"github.com/pharmalytics/pharmaforecast/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareModels(t *testing.T) {
	series := simSeries(t, "cefixime 200mg", "cefixime", 48, 2024)

	runs, err := New(nil).CompareModels(series, ForecastSpec{Product: "cefixime 200mg", Year: 2024})
	require.NoError(t, err)
	require.Len(t, runs, 4)

	byModel := make(map[ModelName]ModelRun, len(runs))
	for _, run := range runs {
		byModel[run.Model] = run
	}
	for _, name := range []ModelName{ModelTrendSeasonal, ModelGradientBoosted, ModelSeasonalAR, ModelBlended} {
		run, ok := byModel[name]
		require.True(t, ok, "missing %s", name)
		require.NoError(t, run.Err, "model %s", name)
		assert.Len(t, run.Predicted, models.ForecastHorizon, "model %s", name)
		// no target-year actuals exist, so no metrics either
		assert.Nil(t, run.Metrics, "model %s", name)
	}
}

func TestCompareModelsPartialFailure(t *testing.T) {
	// 18 months fails the seasonal autoregressive minimum but fits the
	// rest
	series := simSeries(t, "cefixime 200mg", "cefixime", 18, 2024)

	runs, err := New(nil).CompareModels(series, ForecastSpec{Product: "cefixime 200mg", Year: 2024})
	require.NoError(t, err)

	for _, run := range runs {
		if run.Model == ModelSeasonalAR {
			assert.ErrorIs(t, run.Err, models.ErrInsufficientData)
			assert.Nil(t, run.Predicted)
			continue
		}
	}
}

func TestCompareModelsNoSeries(t *testing.T) {
	_, err := New(nil).CompareModels(nil, ForecastSpec{Year: 2024})
	require.ErrorIs(t, err, ErrNoSeries)
}
