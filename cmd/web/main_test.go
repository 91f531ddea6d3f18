package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"classicmodels-dashboard/internal/config"
	"classicmodels-dashboard/internal/models"
	"classicmodels-dashboard/internal/server"
	"classicmodels-dashboard/internal/services"
	"classicmodels-dashboard/internal/store"
)

func newTestAnalytics(t *testing.T) *services.Analytics {
	t.Helper()

	facts := []models.SalesFact{
		{Date: time.Date(2003, 1, 1, 0, 0, 0, 0, time.UTC), Country: "USA", ProductName: "1917 Grand Touring Sedan", SalesAmount: 100},
		{Date: time.Date(2003, 2, 3, 0, 0, 0, 0, time.UTC), Country: "USA", ProductName: "1952 Alpine Renault 1300", SalesAmount: 5000},
		{Date: time.Date(2003, 2, 4, 0, 0, 0, 0, time.UTC), Country: "France", ProductName: "1952 Alpine Renault 1300", SalesAmount: 4000},
		{Date: time.Date(2003, 3, 10, 0, 0, 0, 0, time.UTC), Country: "France", ProductName: "1940 Ford Pickup Truck", SalesAmount: 2500},
		{Date: time.Date(2003, 6, 30, 0, 0, 0, 0, time.UTC), Country: "USA", ProductName: "1911 Ford Town Car", SalesAmount: 100},
	}

	cfg := config.DashboardConfig{TopProducts: 5, TopProductsPerCountry: 3}
	analytics := services.New(store.NewMemory(facts), cfg, slog.Default())
	if err := analytics.Bootstrap(t.Context()); err != nil {
		t.Fatalf("Bootstrap() failed: %v", err)
	}
	return analytics
}

func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	analytics := newTestAnalytics(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	templateHandlers := &server.TemplateHandlers{Dashboard: newDashboardHandler(analytics)}
	return server.NewServer(analytics, logger, templateHandlers)
}

// Integration tests for HTTP routes
func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/api/timeline", http.StatusOK, "application/json"},
		{"/api/products", http.StatusOK, "application/json"},
		{"/api/marks", http.StatusOK, "application/json"},
		{"/health", http.StatusOK, "application/json"},
		{"/admin/stats", http.StatusOK, "application/json"},
		{"/metrics", http.StatusOK, "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}

			if tt.contentType == "application/json" {
				var result any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Errorf("invalid json: %v", err)
				}
			}
		})
	}
}

// A chart endpoint answers the success envelope around a plotly figure.
func TestServer_JSONResponse(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/products", nil)
	srv.ServeHTTP(w, r)

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}

	if success, ok := response["success"].(bool); !ok || !success {
		t.Error("expected success=true in response")
	}

	spec, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected chart spec in response")
	}

	data, ok := spec["data"].([]interface{})
	if !ok || len(data) == 0 {
		t.Fatal("expected a non-empty plotly data array")
	}

	series, ok := data[0].(map[string]interface{})
	if !ok {
		t.Fatal("invalid series structure")
	}
	if typ, _ := series["type"].(string); typ != "bar" {
		t.Errorf("series type = %q, want 'bar'", typ)
	}

	layout, ok := spec["layout"].(map[string]interface{})
	if !ok {
		t.Fatal("expected a layout object")
	}
	if title, _ := layout["title"].(string); title != "Most Profitable Products" {
		t.Errorf("layout title = %q", title)
	}
}

// Server-Sent Events routes
func TestServer_SSERoutes(t *testing.T) {
	srv := newTestServer(t)

	sseRoutes := []string{
		"/sse/charts",
		"/sse/timeline",
		"/sse/products",
	}

	for _, route := range sseRoutes {
		t.Run(route, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", route, nil)

			srv.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
			}

			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("content-type = %q, should contain 'text/event-stream'", ct)
			}

			if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "no-cache") {
				t.Errorf("cache-control = %q, should contain 'no-cache'", cc)
			}
		})
	}
}

func TestServer_HandleHealth(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	srv.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode health JSON: %v", err)
	}

	if success, ok := response["success"].(bool); !ok || !success {
		t.Error("expected success=true in response")
	}

	healthData, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected health data in response")
	}

	if status, ok := healthData["status"].(string); !ok || status != "healthy" {
		t.Errorf("health status = %v, want 'healthy'", healthData["status"])
	}

	if _, ok := healthData["timestamp"]; !ok {
		t.Error("health response should include timestamp")
	}
}

// Invalid methods fall through the method-scoped mux patterns.
func TestServer_ErrorHandling(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"POST", "/api/timeline", http.StatusMethodNotAllowed},
		{"PUT", "/", http.StatusMethodNotAllowed},
		{"DELETE", "/health", http.StatusMethodNotAllowed},
		{"PATCH", "/sse/charts", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, tt.path, nil)

			srv.ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

// Dashboard shell rendering
func TestDashboardTemplate(t *testing.T) {
	analytics := newTestAnalytics(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	newDashboardHandler(analytics)(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := w.Body.String()
	if !strings.Contains(body, "Classic Models Dashboard") {
		t.Error("dashboard should contain the page title")
	}

	// Key dashboard wiring: datastar signals, the two controls, and the
	// chart containers the SSE patches target.
	expectedComponents := []string{
		"data-signals",
		"data-on-load=\"@get('/sse/charts')\"",
		`data-bind="byCountry"`,
		"timelineChart",
		"productsChart",
		"plotly.min.js",
	}

	for _, component := range expectedComponents {
		if !strings.Contains(body, component) {
			t.Errorf("dashboard should contain %q", component)
		}
	}

	// The slider bounds come from the dataset.
	min := time.Date(2003, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	max := time.Date(2003, 6, 30, 0, 0, 0, 0, time.UTC).Unix()
	if !strings.Contains(body, strconv.FormatInt(min, 10)) || !strings.Contains(body, strconv.FormatInt(max, 10)) {
		t.Error("dashboard should embed the dataset time bounds")
	}
}
