package feature

import (
	"math"
	"time"

	"github.com/pharmalytics/pharmaforecast/category"
	"github.com/pharmalytics/pharmaforecast/timedataset"
	"gonum.org/v1/gonum/stat"
)

// BuildFuture builds feature rows for months beyond the end of known
// data. No true units_sold exists for these rows, so lag and rolling
// columns are computed from a rolling history buffer seeded with
// lastKnown. After each future row is emitted, its own 3-month
// rolling-mean value is appended to the buffer as a synthetic stand-in
// for the unknown actual. The synthetic chain does not feed forecasted
// values forward; it propagates the seed window's level instead. This
// mirrors the pipeline this forecaster was validated against and
// changing it changes forecast output.
//
// externalFuture, when non-nil, supplies a constant per-signal value
// applied to every future month; absent signals default to 0. The
// category argument is accepted for parity with BuildHistorical; the
// computed columns do not depend on it.
func BuildFuture(lastDate time.Time, nMonths int, catType category.Type, lastKnown []float64, externalFuture map[string]float64) *Table {
	_ = catType

	start := timedataset.MonthStart(lastDate)
	t := make([]time.Time, 0, nMonths)
	for i := 0; i < nMonths; i++ {
		t = append(t, start.AddDate(0, i+1, 0))
	}
	tb := NewTable(t)

	history := make([]float64, len(lastKnown))
	copy(history, lastKnown)

	cols := make(map[string][]float64)
	colNames := []string{
		ColMonth, ColQuarter, ColYear, ColWeekOfYear,
		ColMonthSin, ColMonthCos, ColTrendIndex,
		ColFluSeason, ColMonsoon, ColFestival,
	}
	for _, offset := range LagOffsets {
		colNames = append(colNames, LagCol(offset))
	}
	for _, window := range RollingWindows {
		colNames = append(colNames, RollingMeanCol(window), RollingStdCol(window))
	}
	colNames = append(colNames, ExternalSignals...)
	for _, name := range colNames {
		cols[name] = make([]float64, nMonths)
	}

	for i, tm := range t {
		m := int(tm.Month())
		_, isoWeek := tm.ISOWeek()
		cols[ColMonth][i] = float64(m)
		cols[ColQuarter][i] = float64((m-1)/3 + 1)
		cols[ColYear][i] = float64(tm.Year())
		cols[ColWeekOfYear][i] = float64(isoWeek)
		cols[ColMonthSin][i] = math.Sin(2.0 * math.Pi * float64(m) / 12.0)
		cols[ColMonthCos][i] = math.Cos(2.0 * math.Pi * float64(m) / 12.0)
		cols[ColTrendIndex][i] = float64(len(lastKnown) + i)
		cols[ColFluSeason][i] = boolFeature(fluSeasonMonths[m])
		cols[ColMonsoon][i] = boolFeature(monsoonMonths[m])
		cols[ColFestival][i] = boolFeature(festivalMonths[m])

		for _, offset := range LagOffsets {
			if len(history) >= offset {
				cols[LagCol(offset)][i] = history[len(history)-offset]
			} else {
				cols[LagCol(offset)][i] = math.NaN()
			}
		}

		for _, window := range RollingWindows {
			switch {
			case len(history) >= window:
				tail := history[len(history)-window:]
				cols[RollingMeanCol(window)][i] = stat.Mean(tail, nil)
				cols[RollingStdCol(window)][i] = stat.PopStdDev(tail, nil)
			case len(history) > 0:
				cols[RollingMeanCol(window)][i] = stat.Mean(history, nil)
				cols[RollingStdCol(window)][i] = 0
			default:
				cols[RollingMeanCol(window)][i] = 0
				cols[RollingStdCol(window)][i] = 0
			}
		}

		for _, name := range ExternalSignals {
			v := 0.0
			if externalFuture != nil {
				if ev, ok := externalFuture[name]; ok {
					v = ev
				}
			}
			cols[name][i] = v
		}

		history = append(history, cols[RollingMeanCol(3)][i])
	}

	for _, name := range colNames {
		_ = tb.Set(name, cols[name])
	}
	return tb
}
