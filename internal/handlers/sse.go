package handlers

import (
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/starfederation/datastar-go/datastar"
	"golang.org/x/sync/errgroup"

	"classicmodels-dashboard/internal/charts"
	"classicmodels-dashboard/internal/models"
	"classicmodels-dashboard/internal/observability"
	"classicmodels-dashboard/internal/services"
)

// controlSignals is the browser-side control state carried on every SSE
// request: the "By Country" checkbox and the slider's unix-second pair.
type controlSignals struct {
	ByCountry bool      `json:"byCountry"`
	TimeRange []float64 `json:"timeRange"`
}

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// controlState maps incoming signals onto a ControlState. Unreadable or
// incomplete signals fall back to the full window so the first render and
// malformed requests both still produce charts.
func (h *SSEHandlers) controlState(r *http.Request) models.ControlState {
	var signals controlSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		h.logger.Debug("unreadable control signals, using defaults", "error", err)
	}

	state := models.ControlState{ByCountry: signals.ByCountry}
	if len(signals.TimeRange) == 2 {
		state.Window = models.WindowFromUnix(signals.TimeRange[0], signals.TimeRange[1])
	} else {
		state.Window = h.analytics.FullWindow()
	}
	return state
}

func (h *SSEHandlers) patchChart(w http.ResponseWriter, r *http.Request, signal string, spec charts.ChartSpec) {
	sse := datastar.NewSSE(w, r)

	payload, err := json.Marshal(map[string]any{signal: spec})
	if err != nil {
		h.logger.Error("marshal chart signal", "signal", signal, "error", err)
		return
	}
	sse.PatchSignals(payload)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleTimeline recomputes only the time-series chart.
func (h *SSEHandlers) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	state := h.controlState(r)
	observability.ChartRecomputes.WithLabelValues("timeline").Inc()

	spec, err := h.analytics.TimelineChart(r.Context(), state)
	if err != nil {
		h.logger.Error("timeline recompute failed", "error", err,
			"request_id", observability.GetRequestID(r.Context()))
	}

	h.patchChart(w, r, "timelineChart", spec)
}

// HandleProducts recomputes only the top-products chart.
func (h *SSEHandlers) HandleProducts(w http.ResponseWriter, r *http.Request) {
	state := h.controlState(r)
	observability.ChartRecomputes.WithLabelValues("products").Inc()

	spec, err := h.analytics.ProductsChart(r.Context(), state)
	if err != nil {
		h.logger.Error("products recompute failed", "error", err,
			"request_id", observability.GetRequestID(r.Context()))
	}

	h.patchChart(w, r, "productsChart", spec)
}

// HandleCharts is the endpoint the dashboard controls hit: any control
// change recomputes both charts. The two pipelines are independent and run
// concurrently; a failure in one still patches the other, with the failed
// chart degrading to an empty plot.
func (h *SSEHandlers) HandleCharts(w http.ResponseWriter, r *http.Request) {
	state := h.controlState(r)
	requestID := observability.GetRequestID(r.Context())

	observability.ChartRecomputes.WithLabelValues("timeline").Inc()
	observability.ChartRecomputes.WithLabelValues("products").Inc()

	var timelineSpec, productsSpec charts.ChartSpec

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		if timelineSpec, err = h.analytics.TimelineChart(ctx, state); err != nil {
			h.logger.Error("timeline recompute failed", "error", err, "request_id", requestID)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if productsSpec, err = h.analytics.ProductsChart(ctx, state); err != nil {
			h.logger.Error("products recompute failed", "error", err, "request_id", requestID)
		}
		return nil
	})
	_ = g.Wait()

	sse := datastar.NewSSE(w, r)

	payload, err := json.Marshal(map[string]any{
		"timelineChart": timelineSpec,
		"productsChart": productsSpec,
	})
	if err != nil {
		h.logger.Error("marshal chart signals", "error", err, "request_id", requestID)
		return
	}
	sse.PatchSignals(payload)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
