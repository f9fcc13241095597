package pharmaforecast

import (
	"os"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/pharmalytics/pharmaforecast/timedataset"
	"github.com/pkg/profile"
)

var benchRes *Result

func benchSeries(b *testing.B) *timedataset.ProductSeries {
	b.Helper()

	n := 48
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -n, 0)
	t := timedataset.GenerateMonthlyT(n, start)
	y := timedataset.GenerateConstY(n, 120.0).
		Add(timedataset.GenerateAnnualWave(t, 25.0, 0.0)).
		Add(timedataset.GenerateTrend(n, 0.8)).
		Add(timedataset.GenerateNoise(n, 3.0, 11)).
		ClampMin(0)

	series, err := timedataset.NewProductSeries("cefixime 200mg", "cefixime", t, y, nil)
	if err != nil {
		panic(err)
	}
	return series
}

func BenchmarkRunSeasonalAR(b *testing.B) {
	series := benchSeries(b)
	f := New(nil)
	spec := ForecastSpec{Product: "cefixime 200mg", Year: 2024}

	var err error
	b.ResetTimer()
	for b.Loop() {
		benchRes, err = f.Run(series, spec)
		if err != nil {
			panic(err)
		}
	}
}

func BenchmarkRunGradientBoosted(b *testing.B) {
	series := benchSeries(b)
	f := New(nil)
	spec := ForecastSpec{Product: "cefixime 200mg", Model: ModelGradientBoosted, Year: 2024}

	var err error
	b.ResetTimer()
	defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	for b.Loop() {
		benchRes, err = f.Run(series, spec)
		if err != nil {
			panic(err)
		}
	}

	bytes, err := json.MarshalIndent(benchRes, "", "  ")
	if err != nil {
		panic(err)
	}
	if err := os.WriteFile("benchmark_result.json", bytes, 0o644); err != nil {
		panic(err)
	}
}
