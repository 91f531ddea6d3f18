package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"classicmodels-dashboard/internal/charts"
	"classicmodels-dashboard/internal/config"
	"classicmodels-dashboard/internal/models"
	"classicmodels-dashboard/internal/observability"
)

// SalesStore is the query layer contract. The Postgres implementation lives
// in internal/store; tests use the in-memory one.
type SalesStore interface {
	TimeRange(ctx context.Context) (time.Time, time.Time, error)
	TimeSeries(ctx context.Context) ([]models.TimeSeriesPoint, error)
	TopProducts(ctx context.Context, w models.TimeWindow, n int) ([]models.ProductSales, error)
	TopProductsByCountry(ctx context.Context, w models.TimeWindow, n int) ([]models.ProductSales, error)
}

// Mark is one labelled tick on the range slider.
type Mark struct {
	Timestamp int64  `json:"timestamp"`
	Label     string `json:"label"`
}

// Analytics runs the query → reshape → build pipeline for both charts. It
// holds no result state between runs; every control change re-executes the
// SQL in full.
type Analytics struct {
	store          SalesStore
	logger         *slog.Logger
	topProducts    int
	topPerCountry  int
	minTime        time.Time
	maxTime        time.Time
	bootstrappedAt time.Time
}

func New(store SalesStore, cfg config.DashboardConfig, logger *slog.Logger) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{
		store:         store,
		logger:        logger,
		topProducts:   cfg.TopProducts,
		topPerCountry: cfg.TopProductsPerCountry,
	}
}

// Bootstrap queries the dataset's min/max sale date to bound the slider.
// There is no dashboard without a time range, so the caller treats an error
// here as fatal.
func (a *Analytics) Bootstrap(ctx context.Context) error {
	min, max, err := a.store.TimeRange(ctx)
	if err != nil {
		return fmt.Errorf("query data time range: %w", err)
	}
	a.minTime = min
	a.maxTime = max
	a.bootstrappedAt = time.Now()

	a.logger.Info("data time range loaded",
		"min", min.Format(time.DateOnly),
		"max", max.Format(time.DateOnly),
	)
	return nil
}

// Bounds returns the dataset's observed min/max sale date.
func (a *Analytics) Bounds() (time.Time, time.Time) {
	return a.minTime, a.maxTime
}

// FullWindow is the widest selectable window, used when a request carries no
// explicit range.
func (a *Analytics) FullWindow() models.TimeWindow {
	return models.TimeWindow{Start: a.minTime, End: a.maxTime}
}

// Marks returns quarterly slider ticks from the dataset minimum up to its
// maximum, labelled YYYY-MM.
func (a *Analytics) Marks() []Mark {
	marks := make([]Mark, 0)
	for current := a.minTime; !current.After(a.maxTime); current = current.AddDate(0, 3, 0) {
		marks = append(marks, Mark{
			Timestamp: current.Unix(),
			Label:     current.Format("2006-01"),
		})
	}
	return marks
}

// TimelineChart runs the time-series pipeline: fetch all weekly rows, filter
// to the window client-side, group or collapse, build. On a query failure it
// returns the error together with an empty but renderable chart so the
// dashboard degrades to a blank plot instead of breaking.
func (a *Analytics) TimelineChart(ctx context.Context, state models.ControlState) (_ charts.ChartSpec, err error) {
	ctx, span := observability.StartSpan(ctx, "recompute.timeline")
	span.SetTag("by_country", strconv.FormatBool(state.ByCountry))
	defer func() { span.FinishWith(err) }()

	rows, err := a.store.TimeSeries(ctx)
	if err != nil {
		return charts.BuildTimelineChart(nil, state.ByCountry), fmt.Errorf("query time series: %w", err)
	}

	filtered := filterWindow(rows, state.Window)

	var groups []charts.SeriesGroup
	if state.ByCountry {
		groups = groupByCountry(filtered)
	} else {
		groups = collapsePeriods(filtered)
	}

	return charts.BuildTimelineChart(groups, state.ByCountry), nil
}

// ProductsChart runs the top-products pipeline. The per-country variant
// ranks within each country; the plain variant takes the overall top N.
func (a *Analytics) ProductsChart(ctx context.Context, state models.ControlState) (_ charts.ChartSpec, err error) {
	ctx, span := observability.StartSpan(ctx, "recompute.products")
	span.SetTag("by_country", strconv.FormatBool(state.ByCountry))
	defer func() { span.FinishWith(err) }()

	var rows []models.ProductSales
	if state.ByCountry {
		rows, err = a.store.TopProductsByCountry(ctx, state.Window, a.topPerCountry)
	} else {
		rows, err = a.store.TopProducts(ctx, state.Window, a.topProducts)
	}
	if err != nil {
		return charts.BuildProductsChart(nil, state.ByCountry), fmt.Errorf("query top products: %w", err)
	}

	return charts.BuildProductsChart(rows, state.ByCountry), nil
}

// Stats exposes operational details for the admin endpoint.
func (a *Analytics) Stats() map[string]any {
	return map[string]any{
		"data_min":                 a.minTime.Format(time.DateOnly),
		"data_max":                 a.maxTime.Format(time.DateOnly),
		"bootstrapped_at":          a.bootstrappedAt,
		"top_products":             a.topProducts,
		"top_products_per_country": a.topPerCountry,
		"slider_marks":             len(a.Marks()),
	}
}
