package feature

import (
	"math"
	"testing"
	"time"

	"github.com/pharmalytics/pharmaforecast/category"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFutureDatesAndCalendar(t *testing.T) {
	lastDate := time.Date(2024, 12, 18, 0, 0, 0, 0, time.UTC)
	tb := BuildFuture(lastDate, 12, category.Other, []float64{10, 20, 30}, nil)

	require.Equal(t, 12, tb.Len())
	times := tb.Times()
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), times[0])
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), times[11])

	month, _ := tb.Column(ColMonth)
	year, _ := tb.Column(ColYear)
	flu, _ := tb.Column(ColFluSeason)
	assert.Equal(t, 1.0, month[0])
	assert.Equal(t, 12.0, month[11])
	assert.Equal(t, 2025.0, year[0])
	assert.Equal(t, 1.0, flu[0])  // Jan
	assert.Equal(t, 0.0, flu[5])  // Jun
	assert.Equal(t, 1.0, flu[10]) // Nov
}

func TestBuildFutureSyntheticHistoryChain(t *testing.T) {
	lastDate := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	tb := BuildFuture(lastDate, 3, category.Other, []float64{10, 20, 30}, nil)

	lag1, _ := tb.Column("lag_1")
	lag3, _ := tb.Column("lag_3")
	lag6, _ := tb.Column("lag_6")
	rm3, _ := tb.Column("rolling_mean_3")
	trend, _ := tb.Column(ColTrendIndex)

	// first row uses the true seed history
	assert.Equal(t, 30.0, lag1[0])
	assert.Equal(t, 10.0, lag3[0])
	assert.True(t, math.IsNaN(lag6[0]), "insufficient seed history leaves lag undefined")
	assert.InDelta(t, 20.0, rm3[0], 1e-9) // mean(10,20,30)

	// the emitted rolling mean is appended to the buffer, so the next
	// lag_1 sees the synthetic value rather than any model prediction
	assert.InDelta(t, 20.0, lag1[1], 1e-9)
	assert.InDelta(t, (20.0+30.0+20.0)/3.0, rm3[1], 1e-9)

	// trend index continues from the seed window length
	assert.Equal(t, 3.0, trend[0])
	assert.Equal(t, 5.0, trend[2])
}

func TestBuildFutureRollingFallbacks(t *testing.T) {
	lastDate := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	tb := BuildFuture(lastDate, 2, category.Other, []float64{50}, nil)

	rm6, _ := tb.Column("rolling_mean_6")
	rs6, _ := tb.Column("rolling_std_6")
	assert.Equal(t, 50.0, rm6[0], "partial history falls back to mean of what exists")
	assert.Equal(t, 0.0, rs6[0])

	empty := BuildFuture(lastDate, 1, category.Other, nil, nil)
	rm3, _ := empty.Column("rolling_mean_3")
	rs3, _ := empty.Column("rolling_std_3")
	assert.Equal(t, 0.0, rm3[0])
	assert.Equal(t, 0.0, rs3[0])
}

func TestBuildFutureExternalSignals(t *testing.T) {
	lastDate := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	tb := BuildFuture(lastDate, 2, category.Acute, []float64{10, 20, 30}, map[string]float64{"promotion_flag": 1})

	promo, _ := tb.Column("promotion_flag")
	weather, _ := tb.Column("weather_index")
	assert.Equal(t, []float64{1, 1}, promo)
	assert.Equal(t, []float64{0, 0}, weather)
}
