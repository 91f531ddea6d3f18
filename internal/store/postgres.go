// Package store is the query layer: parameterized SQL aggregations against
// the read-only classicmodels analytical database, plus an in-memory
// implementation of the same contract for tests.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"classicmodels-dashboard/internal/config"
	"classicmodels-dashboard/internal/models"
	"classicmodels-dashboard/internal/observability"
)

// Postgres issues the dashboard's aggregation queries through a pgx pool.
// All queries are read-only; the pool needs no further coordination.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgres connects and pings the analytical store. The caller owns the
// lifecycle: Close belongs in a shutdown hook.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	connectCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping analytical store: %w", err)
	}

	logger.Info("connected to analytical store",
		"host", poolConfig.ConnConfig.Host,
		"database", poolConfig.ConnConfig.Database,
		"max_conns", cfg.MaxConns,
	)

	return &Postgres{pool: pool, logger: logger}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// TimeRange returns the dataset's min and max sale date. An empty
// order_facts table scans NULL and errors; startup treats that as fatal.
func (p *Postgres) TimeRange(ctx context.Context) (_ time.Time, _ time.Time, err error) {
	defer func(start time.Time) { observability.ObserveQuery("time_range", start, err) }(time.Now())

	var min, max time.Time
	if err = p.pool.QueryRow(ctx, timeRangeQuery).Scan(&min, &max); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("scan time range: %w", err)
	}
	return min, max, nil
}

// TimeSeries returns every (week, year, country) aggregation row. The time
// window is deliberately not pushed into SQL: filtering happens in the
// reshaper so a range change re-windows without changing the statement.
func (p *Postgres) TimeSeries(ctx context.Context) (_ []models.TimeSeriesPoint, err error) {
	defer func(start time.Time) { observability.ObserveQuery("time_series", start, err) }(time.Now())

	rows, err := p.pool.Query(ctx, timeSeriesQuery)
	if err != nil {
		return nil, fmt.Errorf("query time series: %w", err)
	}
	defer rows.Close()

	var points []models.TimeSeriesPoint
	for rows.Next() {
		var pt models.TimeSeriesPoint
		if err = rows.Scan(&pt.SalesAmount, &pt.Date, &pt.Year, &pt.Week, &pt.Country); err != nil {
			return nil, fmt.Errorf("scan time series row: %w", err)
		}
		points = append(points, pt)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate time series rows: %w", err)
	}
	return points, nil
}

// TopProducts returns the overall top-n products by sales amount within the
// window. A window with start > finish matches nothing and returns an empty
// slice, not an error.
func (p *Postgres) TopProducts(ctx context.Context, w models.TimeWindow, n int) (_ []models.ProductSales, err error) {
	defer func(start time.Time) { observability.ObserveQuery("top_products", start, err) }(time.Now())

	rows, err := p.pool.Query(ctx, topProductsQuery, pgx.NamedArgs{
		"start":  w.Start,
		"finish": w.End,
		"n":      n,
	})
	if err != nil {
		return nil, fmt.Errorf("query top products: %w", err)
	}
	defer rows.Close()

	var products []models.ProductSales
	for rows.Next() {
		var ps models.ProductSales
		if err = rows.Scan(&ps.ProductName, &ps.SalesAmount); err != nil {
			return nil, fmt.Errorf("scan top products row: %w", err)
		}
		products = append(products, ps)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top products rows: %w", err)
	}
	return products, nil
}

// TopProductsByCountry returns, per country, that country's top-n products
// within the window. Rank restarts at 1 for each country and follows
// descending sales amount with product name as tie-break.
func (p *Postgres) TopProductsByCountry(ctx context.Context, w models.TimeWindow, n int) (_ []models.ProductSales, err error) {
	defer func(start time.Time) { observability.ObserveQuery("top_products_by_country", start, err) }(time.Now())

	rows, err := p.pool.Query(ctx, topProductsByCountryQuery, pgx.NamedArgs{
		"start":  w.Start,
		"finish": w.End,
		"n":      n,
	})
	if err != nil {
		return nil, fmt.Errorf("query top products by country: %w", err)
	}
	defer rows.Close()

	var products []models.ProductSales
	for rows.Next() {
		var ps models.ProductSales
		var rank int64
		if err = rows.Scan(&ps.Country, &ps.ProductName, &ps.SalesAmount, &rank); err != nil {
			return nil, fmt.Errorf("scan top products by country row: %w", err)
		}
		ps.Rank = int(rank)
		products = append(products, ps)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top products by country rows: %w", err)
	}
	return products, nil
}
