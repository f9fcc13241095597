package pharmaforecast

import (
	"time"

	"github.com/pharmalytics/pharmaforecast/evaluate"
	"github.com/pharmalytics/pharmaforecast/models"
)

// Result is the outcome of a single forecast run for one product and
// target year. Actual holds one entry per month, nil where no observed
// value exists yet. Metrics is nil when no month of the target year has
// been observed.
type Result struct {
	Product      string            `json:"product"`
	Category     string            `json:"category"`
	ModelUsed    string            `json:"model_used"`
	Months       []string          `json:"months"`
	Actual       []*float64        `json:"actual"`
	Predicted    []float64         `json:"predicted"`
	Metrics      *evaluate.Metrics `json:"metrics"`
	FeaturesUsed []string          `json:"features_used"`
}

// MonthLabels returns the twelve month labels of a target year in
// "Jan-2006" form.
func MonthLabels(year int) []string {
	labels := make([]string, 0, models.ForecastHorizon)
	for m := 1; m <= models.ForecastHorizon; m++ {
		labels = append(labels, time.Date(year, time.Month(m), 1, 0, 0, 0, 0, time.UTC).Format("Jan-2006"))
	}
	return labels
}
