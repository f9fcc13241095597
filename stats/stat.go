// Package stats provides series diagnostics used ahead of model
// training: outlier detection on monthly unit counts and collinearity
// checks on feature columns.
package stats

import (
	"errors"
	"math"
	"sort"

	"github.com/pharmalytics/pharmaforecast/linearmodel"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrMinimumFeatures    = errors.New("need at least 2 features to compute VIF")
	ErrFeatureLenMismatch = errors.New("some feature length is not consistent")
	ErrFeatureLen         = errors.New("must have at least 2 points per feature")
)

// DetectOutliers returns the indices of values outside the Tukey fences
// built from the given percentile band. Sales spikes from stockouts and
// bulk orders land here.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	lower, upper := fences(y, lowerPerc, upperPerc, tukeyFactor)

	var outlierIdx []int
	for i := 0; i < len(y); i++ {
		if y[i] >= upper || y[i] <= lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}

// ScrubOutliers clamps values outside the Tukey fences to the nearest
// fence, returning a new slice. NaNs pass through untouched.
func ScrubOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []float64 {
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	lower, upper := fences(y, lowerPerc, upperPerc, tukeyFactor)

	out := make([]float64, len(y))
	for i, v := range y {
		switch {
		case math.IsNaN(v):
			out[i] = v
		case v > upper:
			out[i] = upper
		case v < lower:
			out[i] = lower
		default:
			out[i] = v
		}
	}
	return out
}

func fences(y []float64, lowerPerc, upperPerc, tukeyFactor float64) (float64, float64) {
	yCopy := make([]float64, 0, len(y))
	for _, v := range y {
		if !math.IsNaN(v) {
			yCopy = append(yCopy, v)
		}
	}
	if len(yCopy) == 0 {
		return math.Inf(-1), math.Inf(1)
	}
	sort.Float64s(yCopy)

	lowerIdx := int(math.Floor(float64(len(yCopy)) * lowerPerc))
	upperIdx := int(math.Ceil(float64(len(yCopy)) * upperPerc))
	if upperIdx >= len(yCopy) {
		upperIdx = len(yCopy) - 1
	}

	lower := yCopy[lowerIdx]
	upper := yCopy[upperIdx]
	innerRange := upper - lower
	return lower - innerRange*tukeyFactor, upper + innerRange*tukeyFactor
}

// VarianceInflationFactor reports the R-squared of regressing each
// feature on all others. Values near 1 flag redundant columns, which
// lagged and rolling sales features frequently are.
func VarianceInflationFactor(features map[string][]float64) (map[string]float64, error) {
	if len(features) < 2 {
		return nil, ErrMinimumFeatures
	}
	n := len(features)
	var m int
	for _, col := range features {
		if len(col) < 2 {
			return nil, ErrFeatureLen
		}
		if m == 0 {
			m = len(col)
			continue
		}
		if m != len(col) {
			return nil, ErrFeatureLenMismatch
		}
	}

	vif := make(map[string]float64)
	x := mat.NewDense(m, n-1, nil)
	y := mat.NewDense(m, 1, nil)

	for label, labelCol := range features {
		y.SetCol(0, labelCol)
		c := 0
		for otherLabel, otherCol := range features {
			if otherLabel == label {
				continue
			}
			x.SetCol(c, otherCol)
			c++
		}

		model := linearmodel.NewOLSRegression(nil)
		if err := model.Fit(x, y); err != nil {
			return nil, err
		}
		predicted, err := model.Predict(x)
		if err != nil {
			return nil, err
		}

		vif[label] = stat.RSquaredFrom(predicted, labelCol, nil)
	}
	return vif, nil
}
