package feature

import (
	"math"

	"github.com/pharmalytics/pharmaforecast/category"
	"github.com/pharmalytics/pharmaforecast/timedataset"
	"gonum.org/v1/gonum/stat"
)

// BuildHistorical converts a product series into a feature table and
// returns the priority-ordered feature names relevant to the given
// category type. The table always contains every computed column plus
// the units_sold target; the returned names are the category mask
// intersected with what was computed.
func BuildHistorical(series *timedataset.ProductSeries, catType category.Type) (*Table, []string) {
	n := series.Len()
	tb := NewTable(series.T)
	_ = tb.Set(ColUnitsSold, series.Y)

	month := make([]float64, n)
	quarter := make([]float64, n)
	year := make([]float64, n)
	week := make([]float64, n)
	monthSin := make([]float64, n)
	monthCos := make([]float64, n)
	trendIdx := make([]float64, n)
	flu := make([]float64, n)
	monsoon := make([]float64, n)
	festival := make([]float64, n)

	for i, tm := range series.T {
		m := int(tm.Month())
		_, isoWeek := tm.ISOWeek()
		month[i] = float64(m)
		quarter[i] = float64((m-1)/3 + 1)
		year[i] = float64(tm.Year())
		week[i] = float64(isoWeek)
		monthSin[i] = math.Sin(2.0 * math.Pi * float64(m) / 12.0)
		monthCos[i] = math.Cos(2.0 * math.Pi * float64(m) / 12.0)
		trendIdx[i] = float64(i)
		flu[i] = boolFeature(fluSeasonMonths[m])
		monsoon[i] = boolFeature(monsoonMonths[m])
		festival[i] = boolFeature(festivalMonths[m])
	}

	_ = tb.Set(ColMonth, month)
	_ = tb.Set(ColQuarter, quarter)
	_ = tb.Set(ColYear, year)
	_ = tb.Set(ColWeekOfYear, week)
	_ = tb.Set(ColMonthSin, monthSin)
	_ = tb.Set(ColMonthCos, monthCos)

	for _, offset := range LagOffsets {
		lag := make([]float64, n)
		for i := 0; i < n; i++ {
			if i < offset {
				lag[i] = math.NaN()
				continue
			}
			lag[i] = series.Y[i-offset]
		}
		_ = tb.Set(LagCol(offset), lag)
	}

	for _, window := range RollingWindows {
		mean := make([]float64, n)
		std := make([]float64, n)
		for i := 0; i < n; i++ {
			// trailing window over strictly prior months
			lo := i - window
			if lo < 0 {
				lo = 0
			}
			prior := series.Y[lo:i]
			switch {
			case len(prior) == window:
				mean[i] = stat.Mean(prior, nil)
				std[i] = stat.StdDev(prior, nil)
			case len(prior) > 0:
				mean[i] = stat.Mean(prior, nil)
				std[i] = 0
			default:
				mean[i] = 0
				std[i] = 0
			}
		}
		_ = tb.Set(RollingMeanCol(window), mean)
		_ = tb.Set(RollingStdCol(window), std)
	}

	_ = tb.Set(ColTrendIndex, trendIdx)
	_ = tb.Set(ColFluSeason, flu)
	_ = tb.Set(ColMonsoon, monsoon)
	_ = tb.Set(ColFestival, festival)

	for _, name := range ExternalSignals {
		col := make([]float64, n)
		for i := 0; i < n; i++ {
			if series.Ext != nil && series.Ext[i] != nil {
				if v, ok := series.Ext[i][name]; ok {
					col[i] = v
				}
			}
		}
		_ = tb.Set(name, col)
	}

	return tb, tb.Select(ForCategory(catType))
}

func boolFeature(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
