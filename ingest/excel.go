// Package ingest reads pharmaceutical sales workbooks into product
// series. The supported layout is a wide sheet with one header row of
// monthly date columns ordered newest to oldest, and three row types
// below it: category rows, brand rows, and product data rows.
package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pharmalytics/pharmaforecast/timedataset"
	"github.com/xuri/excelize/v2"
)

var (
	ErrNoSheets       = errors.New("workbook has no sheets")
	ErrNoMonthColumns = errors.New("header row has no parseable month columns")
	ErrNoProducts     = errors.New("no product rows found")
)

// monthColOffset is the first month column; the leading columns are
// rank, name, launch date, and price.
const monthColOffset = 4

// Product is one parsed product row with its monthly sales series and
// row metadata.
type Product struct {
	Series     *timedataset.ProductSeries
	Brand      string
	Company    string
	Price      float64
	LaunchDate time.Time
}

// ReadWorkbook opens the workbook at path and parses its active sheet.
func ReadWorkbook(path string) ([]Product, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %q, %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads the first sheet of an open workbook. Category rows carry
// only a name; brand rows carry an integer rank; product rows carry a
// numeric price followed by monthly unit counts.
func Parse(f *excelize.File) ([]Product, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q, %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, ErrNoProducts
	}

	months := headerMonths(rows[0])
	if len(months) == 0 {
		return nil, ErrNoMonthColumns
	}

	currentCategory := "UNKNOWN"
	currentBrand := "UNKNOWN"
	currentCompany := "UNKNOWN"

	var products []Product
	for i, row := range rows[1:] {
		rank := cell(row, 0)
		name := strings.TrimSpace(cell(row, 1))
		launch := cell(row, 2)
		price := cell(row, 3)

		if rank == "" && name == "" && price == "" {
			continue
		}

		// category rows have a bare name
		if rank == "" && price == "" && strings.TrimSpace(launch) == "" {
			currentCategory = strings.ToUpper(name)
			currentBrand = "UNKNOWN"
			currentCompany = "UNKNOWN"
			continue
		}

		// brand rows carry an integer rank
		if _, err := strconv.Atoi(strings.TrimSpace(rank)); err == nil && price == "" {
			currentBrand, currentCompany = splitBrandCompany(name)
			continue
		}

		priceVal, err := strconv.ParseFloat(strings.TrimSpace(price), 64)
		if err != nil {
			slog.Warn("skipping unclassifiable row", "row", i+2, "name", name)
			continue
		}

		series, err := productSeries(name, currentCategory, row, months)
		if err != nil {
			return nil, fmt.Errorf("product %q at row %d, %w", name, i+2, err)
		}

		p := Product{
			Series:  series,
			Brand:   currentBrand,
			Company: currentCompany,
			Price:   priceVal,
		}
		if launchDate, ok := parseMonth(launch); ok {
			p.LaunchDate = launchDate
		}
		products = append(products, p)
	}

	if len(products) == 0 {
		return nil, ErrNoProducts
	}
	return products, nil
}

type monthColumn struct {
	col   int
	month time.Time
}

func headerMonths(header []string) []monthColumn {
	var months []monthColumn
	for col := monthColOffset; col < len(header); col++ {
		if m, ok := parseMonth(header[col]); ok {
			months = append(months, monthColumn{col: col, month: m})
		}
	}
	return months
}

func productSeries(product, category string, row []string, months []monthColumn) (*timedataset.ProductSeries, error) {
	points := make([]monthColumn, len(months))
	copy(points, months)
	// columns run newest to oldest
	sort.Slice(points, func(i, j int) bool { return points[i].month.Before(points[j].month) })

	t := make([]time.Time, 0, len(points))
	y := make([]float64, 0, len(points))
	for _, p := range points {
		units := 0.0
		if raw := strings.TrimSpace(cell(row, p.col)); raw != "" {
			if v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64); err == nil {
				units = math.Max(0, math.Trunc(v))
			}
		}
		t = append(t, p.month)
		y = append(y, units)
	}
	return timedataset.NewProductSeries(product, category, t, y, nil)
}

// splitBrandCompany separates "CARICEF            SAM" into brand
// "CARICEF" and company code "SAM"; the company is the last
// whitespace-separated token.
func splitBrandCompany(raw string) (string, string) {
	parts := strings.Fields(raw)
	if len(parts) >= 2 {
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
	return strings.TrimSpace(raw), "UNKNOWN"
}

var monthLayouts = []string{
	"Jan-06",
	"Jan-2006",
	"2006-01-02",
	"1/2/06",
	"1/2/2006",
	"01-02-06",
	"2006-01-02 15:04:05",
}

// parseMonth reads a header or launch date cell, normalizing to month
// start. Handles both formatted dates and raw excel serials.
func parseMonth(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return timedataset.MonthStart(t), true
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 59 {
		// days since the excel epoch 1899-12-30
		t := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC).Add(time.Duration(serial*24.0) * time.Hour)
		return timedataset.MonthStart(t), true
	}
	return time.Time{}, false
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return row[col]
}
