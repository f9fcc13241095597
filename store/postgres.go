package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/lib/pq"

	"github.com/pharmalytics/pharmaforecast"
	"github.com/pharmalytics/pharmaforecast/timedataset"
)

// Postgres stores sales history in a sales_data table and forecast
// results as json payloads keyed by (product, year).
//
// Expected schema:
//
//	CREATE TABLE sales_data (
//	    product_name TEXT NOT NULL,
//	    category     TEXT NOT NULL DEFAULT '',
//	    month        DATE NOT NULL,
//	    units_sold   DOUBLE PRECISION NOT NULL,
//	    signals      JSONB,
//	    PRIMARY KEY (product_name, month)
//	);
//
//	CREATE TABLE forecast_results (
//	    product TEXT NOT NULL,
//	    year    INT NOT NULL,
//	    result  JSONB NOT NULL,
//	    PRIMARY KEY (product, year)
//	);
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection pool against the given connection
// string and verifies connectivity.
func NewPostgres(connStr string) (*Postgres, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening postgres pool, %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging postgres, %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

// ProductSeries loads a product's full sales history ordered by month.
func (p *Postgres) ProductSeries(ctx context.Context, product string) (*timedataset.ProductSeries, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT category, month, units_sold, signals
		   FROM sales_data
		  WHERE product_name = $1
		  ORDER BY month`,
		product,
	)
	if err != nil {
		return nil, fmt.Errorf("querying sales for %q, %w", product, err)
	}
	defer rows.Close()

	var (
		category string
		t        []time.Time
		y        []float64
		ext      []map[string]float64
		hasExt   bool
	)
	for rows.Next() {
		var (
			month      time.Time
			unitsSold  float64
			signalsRaw sql.NullString
		)
		if err := rows.Scan(&category, &month, &unitsSold, &signalsRaw); err != nil {
			return nil, fmt.Errorf("scanning sales row for %q, %w", product, err)
		}
		var signals map[string]float64
		if signalsRaw.Valid && signalsRaw.String != "" {
			if err := json.Unmarshal([]byte(signalsRaw.String), &signals); err != nil {
				return nil, fmt.Errorf("decoding signals for %q at %s, %w", product, month.Format("2006-01"), err)
			}
			hasExt = true
		}
		t = append(t, month)
		y = append(y, unitsSold)
		ext = append(ext, signals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sales rows for %q, %w", product, err)
	}
	if len(t) == 0 {
		return nil, fmt.Errorf("%q, %w", product, ErrProductNotFound)
	}
	if !hasExt {
		ext = nil
	}

	return timedataset.NewProductSeries(product, category, t, y, ext)
}

// SaveResult upserts the forecast result for (product, year).
func (p *Postgres) SaveResult(ctx context.Context, year int, res *pharmaforecast.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encoding result for %q, %w", res.Product, err)
	}

	_, err = p.db.ExecContext(ctx,
		`INSERT INTO forecast_results (product, year, result)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (product, year) DO UPDATE SET result = EXCLUDED.result`,
		res.Product, year, payload,
	)
	if err != nil {
		return fmt.Errorf("upserting result for %q year %d, %w", res.Product, year, err)
	}
	return nil
}

// Result loads the stored forecast for a product and year.
func (p *Postgres) Result(ctx context.Context, product string, year int) (*pharmaforecast.Result, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT result FROM forecast_results WHERE product = $1 AND year = $2`,
		product, year,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%q year %d, %w", product, year, ErrProductNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying result for %q year %d, %w", product, year, err)
	}

	var res pharmaforecast.Result
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("decoding result for %q year %d, %w", product, year, err)
	}
	return &res, nil
}
