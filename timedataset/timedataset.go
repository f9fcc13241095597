// Package timedataset holds monthly product sales series used as
// forecaster training input.
package timedataset

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoSeriesData      = errors.New("no series data")
	ErrSeriesLenMismatch = errors.New("date slice has a different length than observations")
	ErrExtLenMismatch    = errors.New("external signal slice has a different length than observations")
	ErrNonMonotonic      = errors.New("series dates are not monotonically increasing")
	ErrDuplicateMonth    = errors.New("duplicate calendar month in series")
	ErrNegativeUnitsSold = errors.New("units sold must be non-negative")
)

// MonthStart normalizes a timestamp to midnight UTC on the first day of
// its calendar month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ProductSeries is the full ordered monthly sales history of a single
// product. T, Y and Ext are parallel slices with one entry per calendar
// month. Ext may be nil when no external signals were recorded. A
// ProductSeries is never mutated after construction; consumers read it
// only.
type ProductSeries struct {
	Product  string
	Category string
	T        []time.Time
	Y        []float64
	Ext      []map[string]float64
}

// NewProductSeries validates and copies the input slices into a new
// series. Dates are normalized to month start and must be strictly
// increasing with at most one point per calendar month. Units sold must
// be non-negative.
func NewProductSeries(product, category string, t []time.Time, y []float64, ext []map[string]float64) (*ProductSeries, error) {
	if len(y) == 0 {
		return nil, ErrNoSeriesData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"date slice has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrSeriesLenMismatch,
		)
	}
	if ext != nil && len(ext) != len(y) {
		return nil, fmt.Errorf(
			"external signals have length of %d, but values has a length of %d, %w",
			len(ext), len(y), ErrExtLenMismatch,
		)
	}

	tSeries := make([]time.Time, len(t))
	ySeries := make([]float64, len(t))
	for i := 0; i < len(t); i++ {
		tSeries[i] = MonthStart(t[i])
		if i > 0 {
			switch {
			case tSeries[i].Equal(tSeries[i-1]):
				return nil, fmt.Errorf("month %s at %d, %w", tSeries[i].Format("2006-01"), i, ErrDuplicateMonth)
			case tSeries[i].Before(tSeries[i-1]):
				return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMonotonic)
			}
		}
		if y[i] < 0 {
			return nil, fmt.Errorf("got %f at %d, %w", y[i], i, ErrNegativeUnitsSold)
		}
		ySeries[i] = y[i]
	}

	var extSeries []map[string]float64
	if ext != nil {
		extSeries = make([]map[string]float64, len(ext))
		for i, m := range ext {
			if m == nil {
				continue
			}
			cp := make(map[string]float64, len(m))
			for k, v := range m {
				cp[k] = v
			}
			extSeries[i] = cp
		}
	}

	return &ProductSeries{
		Product:  product,
		Category: category,
		T:        tSeries,
		Y:        ySeries,
		Ext:      extSeries,
	}, nil
}

func (ps *ProductSeries) Len() int {
	return len(ps.T)
}

func (ps *ProductSeries) Copy() *ProductSeries {
	cp, err := NewProductSeries(ps.Product, ps.Category, ps.T, ps.Y, ps.Ext)
	if err != nil {
		// constructed series always re-validate cleanly
		panic(err)
	}
	return cp
}

// ValueAt returns the units sold for the given calendar month and
// whether that month exists in the series.
func (ps *ProductSeries) ValueAt(year int, month time.Month) (float64, bool) {
	want := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for i, tm := range ps.T {
		if tm.Equal(want) {
			return ps.Y[i], true
		}
	}
	return 0, false
}
