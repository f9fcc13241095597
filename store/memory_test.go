package store

import (
	"context"
	"testing"
	"time"

	"github.com/pharmalytics/pharmaforecast"
	"github.com/pharmalytics/pharmaforecast/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeries(t *testing.T, product string) *timedataset.ProductSeries {
	t.Helper()
	tt := timedataset.GenerateMonthlyT(24, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	y := timedataset.GenerateConstY(24, 100.0)
	series, err := timedataset.NewProductSeries(product, "cefixime", tt, y, nil)
	require.NoError(t, err)
	return series
}

func TestMemoryProductSeries(t *testing.T) {
	m := NewMemory()
	m.PutSeries(testSeries(t, "cefixime 200mg"))

	got, err := m.ProductSeries(context.Background(), "cefixime 200mg")
	require.NoError(t, err)
	assert.Equal(t, "cefixime 200mg", got.Product)
	assert.Equal(t, 24, got.Len())

	// returned series is a copy
	got.Y[0] = 999
	again, err := m.ProductSeries(context.Background(), "cefixime 200mg")
	require.NoError(t, err)
	assert.Equal(t, 100.0, again.Y[0])
}

func TestMemoryProductNotFound(t *testing.T) {
	m := NewMemory()
	_, err := m.ProductSeries(context.Background(), "missing")
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemorySaveResultOverwrites(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	first := &pharmaforecast.Result{Product: "cefixime 200mg", ModelUsed: "seasonal_ar"}
	second := &pharmaforecast.Result{Product: "cefixime 200mg", ModelUsed: "trend_seasonal (fallback)"}

	require.NoError(t, m.SaveResult(ctx, 2025, first))
	require.NoError(t, m.SaveResult(ctx, 2025, second))

	got, ok := m.Result("cefixime 200mg", 2025)
	require.True(t, ok)
	assert.Same(t, second, got)

	// other years are untouched
	_, ok = m.Result("cefixime 200mg", 2024)
	assert.False(t, ok)
}

func TestMemoryProducts(t *testing.T) {
	m := NewMemory()
	m.PutSeries(testSeries(t, "cefixime 200mg"))
	m.PutSeries(testSeries(t, "omeprazole 20mg"))

	assert.ElementsMatch(t, []string{"cefixime 200mg", "omeprazole 20mg"}, m.Products())
}
