package pharmaforecast

import "github.com/pharmalytics/pharmaforecast/models"

// OutlierOptions configures the Tukey fence scrub applied to the sales
// series ahead of feature building. Values outside the fences clamp to
// the nearest fence.
type OutlierOptions struct {
	LowerPercentile float64
	UpperPercentile float64
	TukeyFactor     float64
}

// NewDefaultOutlierOptions returns a default set of outlier scrub options
func NewDefaultOutlierOptions() *OutlierOptions {
	return &OutlierOptions{
		LowerPercentile: 0.25,
		UpperPercentile: 0.75,
		TukeyFactor:     1.5,
	}
}

// Options configures a Forecaster. Any nil model options fall back to
// that model's defaults. A nil OutlierOptions disables outlier
// scrubbing.
type Options struct {
	TrendSeasonal   *models.TrendSeasonalOptions
	GradientBoosted *models.GradientBoostedOptions
	SeasonalAR      *models.SeasonalAROptions
	Blended         *models.BlendedOptions

	OutlierOptions *OutlierOptions
}

// NewDefaultOptions returns a default set of forecaster options
func NewDefaultOptions() *Options {
	return &Options{
		TrendSeasonal:   models.NewDefaultTrendSeasonalOptions(),
		GradientBoosted: models.NewDefaultGradientBoostedOptions(),
		SeasonalAR:      models.NewDefaultSeasonalAROptions(),
		Blended:         models.NewDefaultBlendedOptions(),
	}
}
