// Package linearmodel provides the linear regression fitters backing
// the trend-seasonal and seasonal autoregressive adapters.
package linearmodel

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoOptions          = errors.New("no initialized model options")
	ErrNoTrainingMatrix   = errors.New("no training matrix")
	ErrNoTargetMatrix     = errors.New("no target matrix")
	ErrNoDesignMatrix     = errors.New("no design matrix for inference")
	ErrTargetLenMismatch  = errors.New("target length does not match training rows")
	ErrFeatureLenMismatch = errors.New("number of features does not match number of model coefficients")
)

// Model is a linear regression fitter. x has one row per observation;
// y is a single-column matrix of targets.
type Model interface {
	Fit(x, y mat.Matrix) error
	Predict(x mat.Matrix) ([]float64, error)
	Intercept() float64
	Coef() []float64
}

func withInterceptColumn(x mat.Matrix) *mat.Dense {
	m, n := x.Dims()
	out := mat.NewDense(m, n+1, nil)
	for i := 0; i < m; i++ {
		out.Set(i, 0, 1.0)
		for j := 0; j < n; j++ {
			out.Set(i, j+1, x.At(i, j))
		}
	}
	return out
}

func predictLinear(x mat.Matrix, intercept float64, coef []float64) ([]float64, error) {
	m, n := x.Dims()
	if n != len(coef) {
		return nil, ErrFeatureLenMismatch
	}
	out := make([]float64, m)
	for i := 0; i < m; i++ {
		v := intercept
		for j := 0; j < n; j++ {
			v += coef[j] * x.At(i, j)
		}
		out[i] = v
	}
	return out, nil
}
