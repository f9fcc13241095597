package models

import (
	"fmt"
	"math"
)

// BlendedOptions configures the weighted blend of the trend-seasonal
// and gradient-boosted adapters.
type BlendedOptions struct {
	// Weight is the trend-seasonal share of the blend. The
	// gradient-boosted share is 1 - Weight.
	Weight float64

	TrendSeasonal   *TrendSeasonalOptions
	GradientBoosted *GradientBoostedOptions
}

// NewDefaultBlendedOptions returns a default set of blended model options
func NewDefaultBlendedOptions() *BlendedOptions {
	return &BlendedOptions{
		Weight:          0.5,
		TrendSeasonal:   NewDefaultTrendSeasonalOptions(),
		GradientBoosted: NewDefaultGradientBoostedOptions(),
	}
}

// Blended averages the trend-seasonal and gradient-boosted forecasts
// month by month. Both components must fit for the blend to succeed.
type Blended struct {
	opt *BlendedOptions
}

func NewBlended(opt *BlendedOptions) *Blended {
	if opt == nil {
		opt = NewDefaultBlendedOptions()
	}
	return &Blended{opt: opt}
}

func (b *Blended) TrainAndPredict(in Input) ([]float64, error) {
	if in.Future == nil {
		return nil, fmt.Errorf("blended requires a pre-built future feature table, %w", ErrMissingFutureFeatures)
	}

	tsPreds, err := NewTrendSeasonal(b.opt.TrendSeasonal).TrainAndPredict(in)
	if err != nil {
		return nil, fmt.Errorf("blended trend-seasonal component, %w", err)
	}
	gbPreds, err := NewGradientBoosted(b.opt.GradientBoosted).TrainAndPredict(in)
	if err != nil {
		return nil, fmt.Errorf("blended gradient-boosted component, %w", err)
	}
	if len(tsPreds) != len(gbPreds) {
		return nil, fmt.Errorf("blended components predicted %d and %d months, %w",
			len(tsPreds), len(gbPreds), ErrModelTraining)
	}

	w := b.opt.Weight
	out := make([]float64, len(tsPreds))
	for i := range out {
		out[i] = math.Max(0, w*tsPreds[i]+(1-w)*gbPreds[i])
	}
	return out, nil
}
