package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectOutliers(t *testing.T) {
	testData := map[string]struct {
		y        []float64
		expected []int
	}{
		"bulk order spike": {
			y:        []float64{100, 102, 98, 101, 99, 950, 100, 103},
			expected: []int{5},
		},
		"stockout dip": {
			y:        []float64{100, 102, 98, 101, 0, 99, 100, 103},
			expected: []int{4},
		},
		"steady demand": {
			y:        []float64{100, 102, 98, 101, 99, 100, 103, 97},
			expected: nil,
		},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			got := DetectOutliers(td.y, 0.25, 0.75, 1.5)
			assert.Equal(t, td.expected, got)
		})
	}
}

func TestScrubOutliers(t *testing.T) {
	y := []float64{100, 102, 98, 101, 99, 950, 100, 103}
	got := ScrubOutliers(y, 0.25, 0.75, 1.5)

	require.Len(t, got, len(y))
	assert.Less(t, got[5], 950.0)
	for i, v := range y {
		if i == 5 {
			continue
		}
		assert.Equal(t, v, got[i], "index %d", i)
	}
	// input untouched
	assert.Equal(t, 950.0, y[5])
}

func TestScrubOutliersNaNPassthrough(t *testing.T) {
	y := []float64{100, math.NaN(), 98, 101, 950, 99, 100, 102, 97}
	got := ScrubOutliers(y, 0.25, 0.75, 1.5)
	assert.True(t, math.IsNaN(got[1]))
	assert.Less(t, got[4], 950.0)
}

func TestVarianceInflationFactor(t *testing.T) {
	n := 24
	base := make([]float64, n)
	dup := make([]float64, n)
	indep := make([]float64, n)
	for i := 0; i < n; i++ {
		base[i] = float64(i)
		dup[i] = 2.0*float64(i) + 1.0
		indep[i] = math.Sin(float64(i) * 2.4)
	}

	vif, err := VarianceInflationFactor(map[string][]float64{
		"lag_1":          base,
		"rolling_mean_3": dup,
		"disease_index":  indep,
	})
	require.NoError(t, err)
	require.Len(t, vif, 3)

	// lag and rolling mean are linear transforms of each other
	assert.Greater(t, vif["lag_1"], 0.99)
	assert.Greater(t, vif["rolling_mean_3"], 0.99)
}

func TestVarianceInflationFactorErrors(t *testing.T) {
	_, err := VarianceInflationFactor(map[string][]float64{"only": {1, 2, 3}})
	assert.ErrorIs(t, err, ErrMinimumFeatures)

	_, err = VarianceInflationFactor(map[string][]float64{
		"a": {1, 2, 3},
		"b": {1, 2},
	})
	assert.ErrorIs(t, err, ErrFeatureLenMismatch)

	_, err = VarianceInflationFactor(map[string][]float64{
		"a": {1},
		"b": {2},
	})
	assert.ErrorIs(t, err, ErrFeatureLen)
}
