package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"classicmodels-dashboard/internal/handlers"
	"classicmodels-dashboard/internal/services"
)

type Server struct {
	analytics   *services.Analytics
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		analytics:   analytics,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard shell
	s.mux.HandleFunc("GET /", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	// Chart specs as plain JSON
	s.mux.HandleFunc("GET /api/timeline", s.apiHandlers.HandleTimeline)
	s.mux.HandleFunc("GET /api/products", s.apiHandlers.HandleProducts)
	s.mux.HandleFunc("GET /api/marks", s.apiHandlers.HandleMarks)

	// Datastar SSE endpoints driving the reactive charts
	s.mux.HandleFunc("GET /sse/charts", s.sseHandlers.HandleCharts)
	s.mux.HandleFunc("GET /sse/timeline", s.sseHandlers.HandleTimeline)
	s.mux.HandleFunc("GET /sse/products", s.sseHandlers.HandleProducts)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
