package models

import (
	"testing"
	"time"

	"github.com/pharmalytics/pharmaforecast/category"
	"github.com/pharmalytics/pharmaforecast/feature"
	"github.com/pharmalytics/pharmaforecast/timedataset"
	"github.com/stretchr/testify/require"
)

// simSales returns n months of simulated sales ending December of
// targetYear-1, with a level of 100, an annual wave peaking in March
// and a mild upward trend.
func simSales(n, targetYear int) ([]time.Time, []float64) {
	start := time.Date(targetYear, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -n, 0)
	t := timedataset.GenerateMonthlyT(n, start)
	y := timedataset.GenerateConstY(n, 100.0).
		Add(timedataset.GenerateAnnualWave(t, 30.0, 0.0)).
		Add(timedataset.GenerateTrend(n, 0.5)).
		Add(timedataset.GenerateNoise(n, 2.0, 7)).
		ClampMin(0)
	return t, y
}

func simInput(t *testing.T, n, targetYear int, catType category.Type) Input {
	t.Helper()

	tt, y := simSales(n, targetYear)
	series, err := timedataset.NewProductSeries("cefixime 200mg", "antibiotic", tt, y, nil)
	require.NoError(t, err)

	table, names := feature.BuildHistorical(series, catType)

	lastKnown := y
	if len(lastKnown) > 12 {
		lastKnown = y[len(y)-12:]
	}
	future := feature.BuildFuture(tt[n-1], ForecastHorizon, catType, lastKnown, nil)

	return Input{
		Table:        table,
		FeatureNames: names,
		TargetYear:   targetYear,
		Future:       future,
	}
}

func TestClipNonNegative(t *testing.T) {
	got := clipNonNegative([]float64{-1.5, 0, 2.5})
	require.Equal(t, []float64{0, 0, 2.5}, got)
}

func TestMonthsBetween(t *testing.T) {
	a := time.Date(2022, 11, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, 3.0, monthsBetween(a, b))
	require.Equal(t, -3.0, monthsBetween(b, a))
	require.Equal(t, 0.0, monthsBetween(a, a))
}
