package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueryDuration tracks SQL round-trip time per named query, scan included.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_query_duration_seconds",
			Help:    "Duration of analytical SQL queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	QueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_query_errors_total",
			Help: "Total number of failed analytical SQL queries",
		},
		[]string{"query"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	ChartRecomputes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_chart_recomputes_total",
			Help: "Total chart recomputation cycles triggered by control changes",
		},
		[]string{"chart"},
	)
)

// ObserveQuery records one query execution. Meant to be deferred with a
// named error return:
//
//	defer func() { observability.ObserveQuery("time_series", start, err) }()
func ObserveQuery(query string, start time.Time, err error) {
	QueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
	if err != nil {
		QueryErrors.WithLabelValues(query).Inc()
	}
}
