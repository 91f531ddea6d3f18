package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"classicmodels-dashboard/internal/errors"
	"classicmodels-dashboard/internal/models"
	"classicmodels-dashboard/internal/observability"
	"classicmodels-dashboard/internal/services"
)

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// controlState reads the two control values from query parameters:
// by_country (bool) and start/finish (unix seconds). Missing range params
// fall back to the full dataset window; non-numeric ones produce a zero
// window, which filters to nothing and renders as an empty chart.
func (h *APIHandlers) controlState(r *http.Request) models.ControlState {
	q := r.URL.Query()

	state := models.ControlState{Window: h.analytics.FullWindow()}
	if v, err := strconv.ParseBool(q.Get("by_country")); err == nil {
		state.ByCountry = v
	}

	startParam, finishParam := q.Get("start"), q.Get("finish")
	if startParam == "" && finishParam == "" {
		return state
	}

	start, startErr := strconv.ParseFloat(startParam, 64)
	finish, finishErr := strconv.ParseFloat(finishParam, 64)
	if startErr != nil || finishErr != nil {
		state.Window = models.TimeWindow{}
		return state
	}

	state.Window = models.WindowFromUnix(start, finish)
	return state
}

// HandleTimeline serves the time-series chart spec. A failed query logs and
// still answers with the empty chart, keeping the surface renderable.
func (h *APIHandlers) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	state := h.controlState(r)
	observability.ChartRecomputes.WithLabelValues("timeline").Inc()

	spec, err := h.analytics.TimelineChart(r.Context(), state)
	if err != nil {
		h.logger.Error("timeline recompute failed", "error", err,
			"request_id", observability.GetRequestID(r.Context()))
	}

	errors.WriteSuccessWithHeaders(w, spec, cacheHeaders)
}

// HandleProducts serves the top-products chart spec.
func (h *APIHandlers) HandleProducts(w http.ResponseWriter, r *http.Request) {
	state := h.controlState(r)
	observability.ChartRecomputes.WithLabelValues("products").Inc()

	spec, err := h.analytics.ProductsChart(r.Context(), state)
	if err != nil {
		h.logger.Error("products recompute failed", "error", err,
			"request_id", observability.GetRequestID(r.Context()))
	}

	errors.WriteSuccessWithHeaders(w, spec, cacheHeaders)
}

// HandleMarks serves the slider bounds and quarterly tick marks.
func (h *APIHandlers) HandleMarks(w http.ResponseWriter, r *http.Request) {
	min, max := h.analytics.Bounds()

	errors.WriteSuccessWithHeaders(w, map[string]any{
		"min":   min.Unix(),
		"max":   max.Unix(),
		"marks": h.analytics.Marks(),
	}, cacheHeaders)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.analytics.Stats()

	errors.WriteSuccess(w, stats)
}
