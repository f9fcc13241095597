package pharmaforecast

import "github.com/pharmalytics/pharmaforecast/category"

// ModelName identifies one of the interchangeable forecasting models.
type ModelName string

const (
	// ModelAuto resolves to a concrete model via the category type.
	ModelAuto ModelName = "auto"

	ModelTrendSeasonal   ModelName = "trend_seasonal"
	ModelGradientBoosted ModelName = "gradient_boosted"
	ModelSeasonalAR      ModelName = "seasonal_ar"
	ModelBlended         ModelName = "blended"
)

func (m ModelName) Valid() bool {
	switch m {
	case ModelAuto, ModelTrendSeasonal, ModelGradientBoosted, ModelSeasonalAR, ModelBlended:
		return true
	}
	return false
}

// typeToModel is the static dispatch table resolving a logical category
// type to its primary model.
var typeToModel = map[category.Type]ModelName{
	category.Antibiotic: ModelSeasonalAR,
	category.Gastro:     ModelTrendSeasonal,
	category.Acute:      ModelGradientBoosted,
	category.Chronic:    ModelTrendSeasonal,
	category.Other:      ModelGradientBoosted,
}

// typeToFallbacks lists the models tried in order when the primary
// fails.
var typeToFallbacks = map[category.Type][]ModelName{
	category.Antibiotic: {ModelTrendSeasonal, ModelGradientBoosted},
	category.Gastro:     {ModelBlended, ModelGradientBoosted},
	category.Acute:      {ModelBlended, ModelTrendSeasonal},
	category.Chronic:    {ModelSeasonalAR, ModelGradientBoosted},
	category.Other:      {ModelTrendSeasonal, ModelSeasonalAR},
}

var defaultFallbacks = []ModelName{ModelTrendSeasonal, ModelGradientBoosted}

// SelectModel returns the primary model for a logical category type.
func SelectModel(t category.Type) ModelName {
	if m, ok := typeToModel[t]; ok {
		return m
	}
	return ModelGradientBoosted
}

// FallbackModels returns the ordered fallback list for a logical
// category type.
func FallbackModels(t category.Type) []ModelName {
	fallbacks, ok := typeToFallbacks[t]
	if !ok {
		fallbacks = defaultFallbacks
	}
	out := make([]ModelName, len(fallbacks))
	copy(out, fallbacks)
	return out
}
