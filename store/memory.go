// Package store provides the storage backends forecasts read series
// from and persist results to: an in-memory store for tests and
// examples and a postgres-backed one for deployments.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pharmalytics/pharmaforecast"
	"github.com/pharmalytics/pharmaforecast/timedataset"
)

var ErrProductNotFound = errors.New("product not found")

type resultKey struct {
	product string
	year    int
}

// Memory is a concurrency-safe in-memory store. Results are keyed by
// product and year; re-saving overwrites the prior result.
type Memory struct {
	mu      sync.RWMutex
	series  map[string]*timedataset.ProductSeries
	results map[resultKey]*pharmaforecast.Result
}

func NewMemory() *Memory {
	return &Memory{
		series:  make(map[string]*timedataset.ProductSeries),
		results: make(map[resultKey]*pharmaforecast.Result),
	}
}

// PutSeries registers a product's sales history, replacing any prior
// series under the same product name.
func (m *Memory) PutSeries(series *timedataset.ProductSeries) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series[series.Product] = series.Copy()
}

func (m *Memory) ProductSeries(_ context.Context, product string) (*timedataset.ProductSeries, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	series, ok := m.series[product]
	if !ok {
		return nil, fmt.Errorf("%q, %w", product, ErrProductNotFound)
	}
	return series.Copy(), nil
}

func (m *Memory) SaveResult(_ context.Context, year int, res *pharmaforecast.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[resultKey{product: res.Product, year: year}] = res
	return nil
}

// Result returns the stored forecast for a product and year.
func (m *Memory) Result(product string, year int) (*pharmaforecast.Result, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res, ok := m.results[resultKey{product: product, year: year}]
	return res, ok
}

// Products lists the products with a registered series.
func (m *Memory) Products() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.series))
	for p := range m.series {
		out = append(out, p)
	}
	return out
}
