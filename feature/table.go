package feature

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrColumnLenMismatch = errors.New("column has a different length than table")
	ErrUnknownColumn     = errors.New("unknown column")
	ErrEmptyTable        = errors.New("empty table")
)

// Table is a column-oriented feature table. Every column has one value
// per time point. Missing values are represented as NaN.
type Table struct {
	t     []time.Time
	cols  map[string][]float64
	order []string
}

func NewTable(t []time.Time) *Table {
	ts := make([]time.Time, len(t))
	copy(ts, t)
	return &Table{
		t:    ts,
		cols: make(map[string][]float64),
	}
}

func (tb *Table) Len() int {
	return len(tb.t)
}

// Times returns a copy of the table's time points.
func (tb *Table) Times() []time.Time {
	out := make([]time.Time, len(tb.t))
	copy(out, tb.t)
	return out
}

// Set stores a column under the given name, keeping first-set order.
// Data is copied.
func (tb *Table) Set(name string, data []float64) error {
	if len(data) != len(tb.t) {
		return fmt.Errorf("column %q has %d values for %d time points, %w",
			name, len(data), len(tb.t), ErrColumnLenMismatch)
	}
	if _, exists := tb.cols[name]; !exists {
		tb.order = append(tb.order, name)
	}
	cp := make([]float64, len(data))
	copy(cp, data)
	tb.cols[name] = cp
	return nil
}

// Column returns a copy of the named column.
func (tb *Table) Column(name string) ([]float64, bool) {
	col, ok := tb.cols[name]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, true
}

func (tb *Table) Has(name string) bool {
	_, ok := tb.cols[name]
	return ok
}

// Names returns the column names in first-set order.
func (tb *Table) Names() []string {
	out := make([]string, len(tb.order))
	copy(out, tb.order)
	return out
}

// Select returns the subset of desired column names present in the
// table, preserving the desired order.
func (tb *Table) Select(desired []string) []string {
	out := make([]string, 0, len(desired))
	for _, name := range desired {
		if tb.Has(name) {
			out = append(out, name)
		}
	}
	return out
}

// Matrix returns the named columns as an m x n dense matrix with one
// row per time point.
func (tb *Table) Matrix(names []string) (*mat.Dense, error) {
	if tb.Len() == 0 {
		return nil, ErrEmptyTable
	}
	m := tb.Len()
	n := len(names)
	data := make([]float64, m*n)
	for j, name := range names {
		col, ok := tb.cols[name]
		if !ok {
			return nil, fmt.Errorf("%q, %w", name, ErrUnknownColumn)
		}
		for i := 0; i < m; i++ {
			data[i*n+j] = col[i]
		}
	}
	return mat.NewDense(m, n, data), nil
}

// Copy returns a deep copy of the table.
func (tb *Table) Copy() *Table {
	cp := NewTable(tb.t)
	for _, name := range tb.order {
		// Set copies the data
		_ = cp.Set(name, tb.cols[name])
	}
	return cp
}

// FilterYearBefore returns a new table keeping only rows strictly
// before the given calendar year.
func (tb *Table) FilterYearBefore(year int) *Table {
	keep := make([]int, 0, tb.Len())
	for i, tm := range tb.t {
		if tm.Year() < year {
			keep = append(keep, i)
		}
	}
	return tb.filterRows(keep)
}

// DropNaNRows returns a new table without any row carrying a NaN in one
// of the named columns.
func (tb *Table) DropNaNRows(names []string) *Table {
	keep := make([]int, 0, tb.Len())
	for i := range tb.t {
		ok := true
		for _, name := range names {
			col, exists := tb.cols[name]
			if !exists {
				continue
			}
			if math.IsNaN(col[i]) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, i)
		}
	}
	return tb.filterRows(keep)
}

// FillNaN replaces NaNs in the named columns with val, in place.
func (tb *Table) FillNaN(names []string, val float64) {
	for _, name := range names {
		col, ok := tb.cols[name]
		if !ok {
			continue
		}
		for i, v := range col {
			if math.IsNaN(v) {
				col[i] = val
			}
		}
	}
}

func (tb *Table) filterRows(keep []int) *Table {
	t := make([]time.Time, 0, len(keep))
	for _, idx := range keep {
		t = append(t, tb.t[idx])
	}
	out := NewTable(t)
	for _, name := range tb.order {
		src := tb.cols[name]
		col := make([]float64, 0, len(keep))
		for _, idx := range keep {
			col = append(col, src[idx])
		}
		_ = out.Set(name, col)
	}
	return out
}
