package linearmodel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultIterations = 1000
	DefaultTolerance  = 1e-4
)

// LassoOptions represents input options to run the lasso regression.
// Lambda of 0 converges to OLS.
type LassoOptions struct {
	Lambda       float64
	Iterations   int
	Tolerance    float64
	FitIntercept bool
}

// NewDefaultLassoOptions returns a default set of lasso regression options
func NewDefaultLassoOptions() *LassoOptions {
	return &LassoOptions{
		Lambda:       1.0,
		Iterations:   DefaultIterations,
		Tolerance:    DefaultTolerance,
		FitIntercept: true,
	}
}

// LassoRegression computes the lasso regression using coordinate
// descent. Handles designs with more columns than rows, which the QR
// based OLS cannot.
type LassoRegression struct {
	opt       *LassoOptions
	coef      []float64
	intercept float64
}

// NewLassoRegression initializes a lasso model ready for fitting
func NewLassoRegression(opt *LassoOptions) *LassoRegression {
	if opt == nil {
		opt = NewDefaultLassoOptions()
	}
	return &LassoRegression{
		opt: opt,
	}
}

// Fit the model according to the given training data
func (l *LassoRegression) Fit(x, y mat.Matrix) error {
	if l.opt == nil {
		return ErrNoOptions
	}
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}

	m, n := x.Dims()
	ym, _ := y.Dims()
	if ym != m {
		return fmt.Errorf("training data has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
	}

	if l.opt.FitIntercept {
		x = withInterceptColumn(x)
		_, n = x.Dims()
	}

	iterations := l.opt.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	tolerance := l.opt.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	// column views and per-feature dot products
	cols := make([][]float64, n)
	xdot := make([]float64, n)
	for j := 0; j < n; j++ {
		col := make([]float64, m)
		mat.Col(col, j, x)
		cols[j] = col
		xdot[j] = floats.Dot(col, col)
	}

	residual := make([]float64, m)
	mat.Col(residual, 0, y)

	beta := make([]float64, n)
	for i := 0; i < iterations; i++ {
		maxCoef := 0.0
		maxUpdate := 0.0

		for j := 0; j < n; j++ {
			if xdot[j] == 0 {
				continue
			}
			num := floats.Dot(cols[j], residual)
			betaNext := num/xdot[j] + beta[j]

			// the intercept column is not penalized
			if !(l.opt.FitIntercept && j == 0) {
				betaNext = SoftThreshold(betaNext, l.opt.Lambda/xdot[j])
			}

			delta := betaNext - beta[j]
			if delta != 0 {
				floats.AddScaled(residual, -delta, cols[j])
				beta[j] = betaNext
			}
			maxCoef = math.Max(maxCoef, math.Abs(betaNext))
			maxUpdate = math.Max(maxUpdate, math.Abs(delta))
		}

		if maxUpdate < tolerance*maxCoef {
			break
		}
	}

	if l.opt.FitIntercept {
		l.intercept = beta[0]
		l.coef = beta[1:]
	} else {
		l.coef = beta
	}
	return nil
}

// Predict using the lasso model
func (l *LassoRegression) Predict(x mat.Matrix) ([]float64, error) {
	if l.opt == nil {
		return nil, ErrNoOptions
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	return predictLinear(x, l.intercept, l.coef)
}

func (l *LassoRegression) Intercept() float64 {
	return l.intercept
}

func (l *LassoRegression) Coef() []float64 {
	c := make([]float64, len(l.coef))
	copy(c, l.coef)
	return c
}

// SoftThreshold shrinks x toward zero by gamma, returning 0 when the
// magnitude is within gamma.
func SoftThreshold(x, gamma float64) float64 {
	res := math.Max(0, math.Abs(x)-gamma)
	if math.Signbit(x) {
		return -res
	}
	return res
}
