package handlers

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
)

func testSSELogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// signalRequest builds a GET request carrying datastar signals the way the
// browser SDK does: JSON in the "datastar" query parameter.
func signalRequest(path, signals string) *http.Request {
	target := path + "?datastar=" + url.QueryEscape(signals)
	return httptest.NewRequest(http.MethodGet, target, nil)
}

func TestNewSSEHandlers(t *testing.T) {
	analytics := createTestAnalytics(t)
	logger := testSSELogger()

	handlers := NewSSEHandlers(analytics, logger)

	if handlers == nil {
		t.Fatal("NewSSEHandlers() returned nil")
	}
	if handlers.analytics != analytics {
		t.Error("NewSSEHandlers() should set analytics field")
	}
	if handlers.logger != logger {
		t.Error("NewSSEHandlers() should set logger field")
	}
}

func TestSSEHandlers_controlState_Defaults(t *testing.T) {
	analytics := createTestAnalytics(t)
	handlers := NewSSEHandlers(analytics, testSSELogger())

	// No signals at all: the first page load before any control change.
	req := httptest.NewRequest(http.MethodGet, "/sse/charts", nil)
	state := handlers.controlState(req)

	if state.ByCountry {
		t.Error("byCountry should default to false")
	}
	if state.Window != analytics.FullWindow() {
		t.Errorf("window = %+v, want the full dataset window", state.Window)
	}
}

func TestSSEHandlers_controlState_Signals(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testSSELogger())

	req := signalRequest("/sse/charts", `{"byCountry":true,"timeRange":[1043800000,1046400000]}`)
	state := handlers.controlState(req)

	if !state.ByCountry {
		t.Error("byCountry signal should be honored")
	}
	if state.Window.Start.Unix() != 1043800000 || state.Window.End.Unix() != 1046400000 {
		t.Errorf("window = %+v, want the signalled range", state.Window)
	}
}

func TestSSEHandlers_controlState_PartialRange(t *testing.T) {
	analytics := createTestAnalytics(t)
	handlers := NewSSEHandlers(analytics, testSSELogger())

	// A one-element range is incomplete and falls back to the full window.
	req := signalRequest("/sse/charts", `{"byCountry":true,"timeRange":[1043800000]}`)
	state := handlers.controlState(req)

	if !state.ByCountry {
		t.Error("byCountry signal should still be honored")
	}
	if state.Window != analytics.FullWindow() {
		t.Errorf("window = %+v, want the full dataset window", state.Window)
	}
}

func TestSSEHandlers_HandleCharts(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testSSELogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/charts", nil)
	w := httptest.NewRecorder()

	handlers.HandleCharts(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("expected content-type 'text/event-stream', got %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "no-cache") {
		t.Errorf("expected no-cache cache-control, got %q", cc)
	}

	body := w.Body.String()
	if !strings.Contains(body, "datastar-patch-signals") {
		t.Error("expected a datastar-patch-signals event")
	}
	// One control change patches both chart signals.
	if !strings.Contains(body, "timelineChart") {
		t.Error("expected timelineChart signal in event stream")
	}
	if !strings.Contains(body, "productsChart") {
		t.Error("expected productsChart signal in event stream")
	}
}

func TestSSEHandlers_HandleCharts_SplitSignal(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testSSELogger())

	req := signalRequest("/sse/charts", `{"byCountry":true,"timeRange":[]}`)
	w := httptest.NewRecorder()

	handlers.HandleCharts(w, req)

	body := w.Body.String()
	// Split series carry country names on the timeline chart.
	if !strings.Contains(body, `"USA"`) || !strings.Contains(body, `"France"`) {
		t.Error("split charts should name the per-country series")
	}
}

func TestSSEHandlers_HandleTimeline(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testSSELogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/timeline", nil)
	w := httptest.NewRecorder()

	handlers.HandleTimeline(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "timelineChart") {
		t.Error("expected timelineChart signal in event stream")
	}
	if strings.Contains(body, "productsChart") {
		t.Error("timeline endpoint must not patch the products chart")
	}
	if !strings.Contains(body, `"markers"`) {
		t.Error("expected a markers-mode scatter series")
	}
}

func TestSSEHandlers_HandleProducts(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testSSELogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/products", nil)
	w := httptest.NewRecorder()

	handlers.HandleProducts(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "productsChart") {
		t.Error("expected productsChart signal in event stream")
	}
	if !strings.Contains(body, "1952 Alpine Renault 1300") {
		t.Error("expected the top product in the patched chart")
	}
	if !strings.Contains(body, "Most Profitable Products") {
		t.Error("expected the chart title in the patched spec")
	}
}
