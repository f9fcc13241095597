package evaluate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateMetrics(t *testing.T) {
	testData := map[string]struct {
		actual    []float64
		predicted []float64
		expected  *Metrics
	}{
		"zero actual excluded from mape": {
			actual:    []float64{10, 20, 0},
			predicted: []float64{12, 18, 5},
			expected:  &Metrics{MAE: 3.0, RMSE: 3.32, MAPE: "15.00%"},
		},
		"perfect forecast": {
			actual:    []float64{5, 10, 15},
			predicted: []float64{5, 10, 15},
			expected:  &Metrics{MAE: 0, RMSE: 0, MAPE: "0.00%"},
		},
		"nan actuals skipped": {
			actual:    []float64{10, math.NaN(), 20},
			predicted: []float64{12, 99, 18},
			expected:  &Metrics{MAE: 2.0, RMSE: 2.0, MAPE: "15.00%"},
		},
		"all zero actuals": {
			actual:    []float64{0, 0},
			predicted: []float64{1, 2},
			expected:  &Metrics{MAE: 1.5, RMSE: 1.58, MAPE: MAPEUndefined},
		},
		"no data": {
			actual:    nil,
			predicted: nil,
			expected:  &Metrics{MAE: 0, RMSE: 0, MAPE: MAPEUndefined},
		},
		"all nan actuals": {
			actual:    []float64{math.NaN(), math.NaN()},
			predicted: []float64{1, 2},
			expected:  &Metrics{MAE: 0, RMSE: 0, MAPE: MAPEUndefined},
		},
		"empty actuals with predictions": {
			actual:    []float64{},
			predicted: []float64{1, 2, 3},
			expected:  &Metrics{MAE: 0, RMSE: 0, MAPE: MAPEUndefined},
		},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			got := CalculateMetrics(td.actual, td.predicted)
			assert.Equal(t, td.expected, got)
		})
	}
}

func TestCalculateMetricsLengthMismatch(t *testing.T) {
	// extra predictions beyond the actuals are ignored
	got := CalculateMetrics([]float64{10}, []float64{12, 99, 99})
	require.NotNil(t, got)
	assert.Equal(t, 2.0, got.MAE)
	assert.Equal(t, 2.0, got.RMSE)
	assert.Equal(t, "20.00%", got.MAPE)
}
