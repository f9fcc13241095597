package models

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/pharmalytics/pharmaforecast/feature"
	"gonum.org/v1/gonum/stat"
)

// GradientBoostedOptions configures the boosted regression tree
// ensemble. The defaults are tuned conservatively for short monthly
// sales histories.
type GradientBoostedOptions struct {
	NumTrees     int
	MaxDepth     int
	LearningRate float64

	// Subsample and ColSample are the per-tree row and feature sampling
	// fractions. MinChildWeight is the minimum number of samples per
	// leaf.
	Subsample      float64
	ColSample      float64
	MinChildWeight int

	// Seed fixes the sampling RNG so repeated runs on identical input
	// produce identical predictions.
	Seed uint64
}

// NewDefaultGradientBoostedOptions returns a default set of gradient boosting options
func NewDefaultGradientBoostedOptions() *GradientBoostedOptions {
	return &GradientBoostedOptions{
		NumTrees:       300,
		MaxDepth:       5,
		LearningRate:   0.05,
		Subsample:      0.8,
		ColSample:      0.8,
		MinChildWeight: 3,
		Seed:           42,
	}
}

// GradientBoosted is a supervised regression tree ensemble on the full
// category-selected feature set. It requires a pre-built future feature
// table to predict from.
type GradientBoosted struct {
	opt *GradientBoostedOptions

	base  float64
	trees []*regressionTree
}

func NewGradientBoosted(opt *GradientBoostedOptions) *GradientBoosted {
	if opt == nil {
		opt = NewDefaultGradientBoostedOptions()
	}
	return &GradientBoosted{opt: opt}
}

func (gb *GradientBoosted) TrainAndPredict(in Input) ([]float64, error) {
	if in.Future == nil {
		return nil, fmt.Errorf("gradient-boosted requires a pre-built future feature table, %w", ErrMissingFutureFeatures)
	}

	names := in.FeatureNames
	dropCols := append([]string{feature.ColUnitsSold}, names...)
	train := in.Table.FilterYearBefore(in.TargetYear).DropNaNRows(dropCols)
	n := train.Len()
	if n < MinTrainRows {
		return nil, fmt.Errorf("gradient-boosted got %d training rows, needs at least %d, %w",
			n, MinTrainRows, ErrInsufficientData)
	}

	xm, err := train.Matrix(names)
	if err != nil {
		return nil, fmt.Errorf("gradient-boosted training matrix, %v, %w", err, ErrModelTraining)
	}
	x := make([][]float64, n)
	for i := 0; i < n; i++ {
		x[i] = xm.RawRowView(i)
	}
	y, _ := train.Column(feature.ColUnitsSold)

	gb.fit(x, y)

	futureTable := in.Future.Copy()
	futureTable.FillNaN(names, 0)
	fm, err := futureTable.Matrix(names)
	if err != nil {
		return nil, fmt.Errorf("gradient-boosted future matrix, %v, %w", err, ErrModelTraining)
	}
	m := futureTable.Len()
	preds := make([]float64, m)
	for i := 0; i < m; i++ {
		preds[i] = gb.predictRow(fm.RawRowView(i))
	}
	return clipNonNegative(preds), nil
}

func (gb *GradientBoosted) fit(x [][]float64, y []float64) {
	rng := rand.New(rand.NewPCG(gb.opt.Seed, gb.opt.Seed))
	n := len(x)
	nFeat := len(x[0])

	gb.base = stat.Mean(y, nil)
	gb.trees = gb.trees[:0]

	pred := make([]float64, n)
	residual := make([]float64, n)
	for i := range pred {
		pred[i] = gb.base
		residual[i] = y[i] - pred[i]
	}

	nRows := int(float64(n) * gb.opt.Subsample)
	if nRows < 1 {
		nRows = n
	}
	nCols := int(float64(nFeat) * gb.opt.ColSample)
	if nCols < 1 {
		nCols = nFeat
	}

	for k := 0; k < gb.opt.NumTrees; k++ {
		rows := sampleIndices(rng, n, nRows)
		cols := sampleIndices(rng, nFeat, nCols)

		tree := &regressionTree{maxDepth: gb.opt.MaxDepth, minLeaf: gb.opt.MinChildWeight}
		tree.fit(x, residual, rows, cols)
		gb.trees = append(gb.trees, tree)

		for i := 0; i < n; i++ {
			pred[i] += gb.opt.LearningRate * tree.predict(x[i])
			residual[i] = y[i] - pred[i]
		}
	}
}

func (gb *GradientBoosted) predictRow(row []float64) float64 {
	v := gb.base
	for _, tree := range gb.trees {
		v += gb.opt.LearningRate * tree.predict(row)
	}
	return v
}

// sampleIndices draws k distinct indices from [0, n) in sorted order.
func sampleIndices(rng *rand.Rand, n, k int) []int {
	out := make([]int, k)
	copy(out, rng.Perm(n)[:k])
	sort.Ints(out)
	return out
}
