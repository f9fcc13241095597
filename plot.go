package pharmaforecast

import (
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// LineForecastResult generates an echart line chart for a forecast
// result plotting predicted values against whatever actuals have been
// observed. Months with no actual render as gaps.
func LineForecastResult(res *Result) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title:    res.Product,
				Subtitle: "model: " + res.ModelUsed,
			},
		),
	)

	lineDataActual := make([]opts.LineData, 0, len(res.Months))
	lineDataPredicted := make([]opts.LineData, 0, len(res.Months))
	for i := range res.Months {
		if i < len(res.Actual) && res.Actual[i] != nil {
			lineDataActual = append(lineDataActual, opts.LineData{Value: *res.Actual[i]})
		} else {
			lineDataActual = append(lineDataActual, opts.LineData{Value: nil})
		}
		if i < len(res.Predicted) {
			lineDataPredicted = append(lineDataPredicted, opts.LineData{Value: res.Predicted[i]})
		}
	}

	line.SetXAxis(res.Months).
		AddSeries("Actual", lineDataActual).
		AddSeries("Predicted", lineDataPredicted)
	return line
}

// PlotResults renders one chart per forecast result into a single html
// page at the given path.
func PlotResults(path string, results []*Result) error {
	page := components.NewPage()
	for _, res := range results {
		page.AddCharts(LineForecastResult(res))
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return page.Render(io.MultiWriter(file))
}
