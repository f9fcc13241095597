// Package feature converts raw monthly product series into the
// category-typed feature tables consumed by the model adapters.
package feature

import (
	"fmt"

	"github.com/pharmalytics/pharmaforecast/category"
)

// Column names shared by the historical and future feature tables.
const (
	ColUnitsSold  = "units_sold"
	ColMonth      = "month"
	ColQuarter    = "quarter"
	ColYear       = "year"
	ColWeekOfYear = "week_of_year"
	ColMonthSin   = "month_sin"
	ColMonthCos   = "month_cos"
	ColTrendIndex = "trend_index"
	ColFluSeason  = "is_flu_season"
	ColMonsoon    = "is_monsoon"
	ColFestival   = "is_festival_period"
)

// LagOffsets are the month offsets at which lagged unit counts are
// computed. RollingWindows are the trailing window sizes for rolling
// mean/std columns.
var (
	LagOffsets     = []int{1, 2, 3, 6, 12}
	RollingWindows = []int{3, 6, 12}
)

func LagCol(offset int) string {
	return fmt.Sprintf("lag_%d", offset)
}

func RollingMeanCol(window int) string {
	return fmt.Sprintf("rolling_mean_%d", window)
}

func RollingStdCol(window int) string {
	return fmt.Sprintf("rolling_std_%d", window)
}

// ExternalSignals are the named external signal placeholders carried by
// every feature table. Values come from the series' external signal
// mapping when present and default to 0 otherwise.
var ExternalSignals = []string{
	"disease_index",
	"prescription_rate",
	"temperature_avg",
	"promotion_flag",
	"weather_index",
	"refill_cycle",
	"patient_adherence",
	"dietary_index",
}

// CalendarCols are pure calendar encodings. The seasonal
// autoregressive model excludes these from its exogenous set since its
// own seasonal structure already accounts for them.
var CalendarCols = []string{ColMonth, ColQuarter, ColYear, ColTrendIndex}

// Seasonal flag month sets. These are coarse approximations by month
// number, not exact date lookups, and are identical for every category.
var (
	fluSeasonMonths = map[int]bool{11: true, 12: true, 1: true, 2: true}
	monsoonMonths   = map[int]bool{7: true, 8: true, 9: true}
	festivalMonths  = map[int]bool{3: true, 4: true, 6: true}
)

// categoryFeatures is the priority-ordered feature mask per logical
// category type. The builder intersects these with the computed
// columns; the mask is the only thing the category changes.
var categoryFeatures = map[category.Type][]string{
	category.Antibiotic: {
		ColMonth, ColQuarter, ColYear,
		"lag_1", "lag_2", "lag_3", "lag_6", "lag_12",
		"rolling_mean_3", "rolling_mean_6", "rolling_std_3",
		ColMonthSin, ColMonthCos,
		ColFluSeason,
		"disease_index",
		"prescription_rate",
		"temperature_avg",
	},
	category.Acute: {
		ColMonth, ColQuarter, ColYear,
		"lag_1", "lag_2", "lag_3", "lag_6",
		"rolling_mean_3", "rolling_mean_6", "rolling_std_3",
		ColMonthSin, ColMonthCos,
		"promotion_flag",
		ColMonsoon,
		"weather_index",
		ColWeekOfYear,
	},
	category.Chronic: {
		ColMonth, ColQuarter, ColYear,
		"lag_1", "lag_3", "lag_6", "lag_12",
		"rolling_mean_3", "rolling_mean_6", "rolling_mean_12",
		"rolling_std_6",
		ColMonthSin, ColMonthCos,
		ColTrendIndex,
		"refill_cycle",
		"patient_adherence",
	},
	category.Gastro: {
		ColMonth, ColQuarter, ColYear,
		"lag_1", "lag_2", "lag_3", "lag_6",
		"rolling_mean_3", "rolling_mean_6", "rolling_std_3",
		ColMonthSin, ColMonthCos,
		ColFestival,
		"dietary_index",
		ColMonsoon,
	},
	category.Other: {
		ColMonth, ColQuarter, ColYear,
		"lag_1", "lag_3", "lag_6",
		"rolling_mean_3", "rolling_mean_6",
		ColMonthSin, ColMonthCos,
	},
}

// ForCategory returns the priority-ordered feature mask for a logical
// category type.
func ForCategory(t category.Type) []string {
	mask, ok := categoryFeatures[t]
	if !ok {
		mask = categoryFeatures[category.Other]
	}
	out := make([]string, len(mask))
	copy(out, mask)
	return out
}
