// forecast-example runs the forecasting pipeline over a sales workbook
// or a simulated product set, renders the results to an html chart page
// and optionally persists them to postgres.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/pkg/profile"

	"github.com/pharmalytics/pharmaforecast"
	"github.com/pharmalytics/pharmaforecast/category"
	"github.com/pharmalytics/pharmaforecast/feature"
	"github.com/pharmalytics/pharmaforecast/ingest"
	"github.com/pharmalytics/pharmaforecast/stats"
	"github.com/pharmalytics/pharmaforecast/store"
	"github.com/pharmalytics/pharmaforecast/timedataset"
)

func main() {
	excelPath := flag.String("excel", "", "sales workbook to forecast from; simulated data when empty")
	year := flag.Int("year", time.Now().Year(), "target year to forecast")
	htmlOut := flag.String("html", "forecasts.html", "chart page output path")
	jsonOut := flag.String("json", "", "optional json dump of all results")
	diagnostics := flag.Bool("diagnostics", false, "log highly collinear features per product")
	cpuProfile := flag.Bool("profile", false, "write a cpu profile to the working directory")
	flag.Parse()

	if *cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err.Error())
	}

	if err := run(*excelPath, *year, *htmlOut, *jsonOut, *diagnostics); err != nil {
		slog.Error("forecast run failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(excelPath string, year int, htmlOut, jsonOut string, diagnostics bool) error {
	ctx := context.Background()

	mem := store.NewMemory()
	if excelPath != "" {
		products, err := ingest.ReadWorkbook(excelPath)
		if err != nil {
			return fmt.Errorf("ingesting %q, %w", excelPath, err)
		}
		for _, p := range products {
			mem.PutSeries(p.Series)
		}
		slog.Info("workbook ingested", "path", excelPath, "products", len(products))
	} else {
		for _, series := range simulatedSeries(year) {
			mem.PutSeries(series)
		}
		slog.Info("using simulated product set", "products", len(mem.Products()))
	}

	var sink pharmaforecast.ResultSink = mem
	if url := os.Getenv("POSTGRES_URL"); url != "" {
		pg, err := store.NewPostgres(url)
		if err != nil {
			return fmt.Errorf("connecting to postgres, %w", err)
		}
		defer pg.Close()
		sink = pg
		slog.Info("persisting results to postgres")
	}

	f := pharmaforecast.New(nil)
	var results []*pharmaforecast.Result
	for _, product := range mem.Products() {
		if diagnostics {
			logCollinearity(ctx, mem, product)
		}

		res, err := f.RunFromSource(ctx, mem, sink, pharmaforecast.ForecastSpec{Product: product, Year: year})
		if err != nil {
			slog.Warn("skipping product", "product", product, "error", err.Error())
			continue
		}
		slog.Info("forecast complete", "product", product, "model", res.ModelUsed)
		results = append(results, res)
	}
	if len(results) == 0 {
		return errors.New("no product produced a forecast")
	}

	if err := pharmaforecast.PlotResults(htmlOut, results); err != nil {
		return fmt.Errorf("rendering %q, %w", htmlOut, err)
	}
	slog.Info("chart page written", "path", htmlOut)

	if jsonOut != "" {
		bytes, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding results, %w", err)
		}
		if err := os.WriteFile(jsonOut, bytes, 0o644); err != nil {
			return fmt.Errorf("writing %q, %w", jsonOut, err)
		}
		slog.Info("results written", "path", jsonOut)
	}
	return nil
}

// logCollinearity flags category-selected features that are nearly
// linear combinations of the others, a common artifact of stacking
// lag and rolling windows.
func logCollinearity(ctx context.Context, src pharmaforecast.SeriesSource, product string) {
	series, err := src.ProductSeries(ctx, product)
	if err != nil {
		return
	}
	catType := category.Classify(series.Category)
	table, names := feature.BuildHistorical(series, catType)
	table.FillNaN(names, 0)

	cols := make(map[string][]float64, len(names))
	for _, name := range names {
		if col, ok := table.Column(name); ok {
			cols[name] = col
		}
	}

	vif, err := stats.VarianceInflationFactor(cols)
	if err != nil {
		slog.Warn("collinearity check failed", "product", product, "error", err.Error())
		return
	}
	for name, rsq := range vif {
		if rsq > 0.95 {
			slog.Warn("highly collinear feature", "product", product, "feature", name, "rsquared", rsq)
		}
	}
}

// simulatedSeries fabricates four years of monthly sales for three
// products with distinct seasonal shapes, ending December before the
// target year.
func simulatedSeries(year int) []*timedataset.ProductSeries {
	n := 48
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -n, 0)
	t := timedataset.GenerateMonthlyT(n, start)

	antibiotic := timedataset.GenerateConstY(n, 900.0).
		Add(timedataset.GenerateAnnualWave(t, 250.0, 3.0)).
		Add(timedataset.GenerateHolidayBoost(t, timedataset.Diwali, 120.0)).
		Add(timedataset.GenerateNoise(n, 40.0, 1)).
		ClampMin(0)

	gastro := timedataset.GenerateConstY(n, 1500.0).
		Add(timedataset.GenerateTrend(n, 6.0)).
		Add(timedataset.GenerateAnnualWave(t, 180.0, 0.0)).
		Add(timedataset.GenerateNoise(n, 55.0, 2)).
		ClampMin(0)

	acute := timedataset.GenerateConstY(n, 620.0).
		Add(timedataset.GenerateAnnualWave(t, 90.0, 6.0)).
		Add(timedataset.GenerateHolidayBoost(t, timedataset.Holi, 60.0)).
		Add(timedataset.GenerateNoise(n, 25.0, 3)).
		ClampMin(0)

	var out []*timedataset.ProductSeries
	for _, def := range []struct {
		product  string
		category string
		y        timedataset.Series
	}{
		{product: "caricef 200mg", category: "cefixime", y: antibiotic},
		{product: "omez 20mg", category: "omeprazole", y: gastro},
		{product: "dicloran 50mg", category: "diclofenac sodium", y: acute},
	} {
		series, err := timedataset.NewProductSeries(def.product, def.category, t, def.y, nil)
		if err != nil {
			panic(err)
		}
		out = append(out, series)
	}
	return out
}
