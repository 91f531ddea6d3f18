package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"classicmodels-dashboard/internal/config"
	"classicmodels-dashboard/internal/middleware"
	"classicmodels-dashboard/internal/observability"
	"classicmodels-dashboard/internal/server"
	"classicmodels-dashboard/internal/services"
	"classicmodels-dashboard/internal/store"
	"classicmodels-dashboard/internal/ui/templates"
)

const (
	renderTimeout    = 10 * time.Second
	bootstrapTimeout = 30 * time.Second
	cacheMaxAge      = "public, max-age=300"
)

// newDashboardHandler renders the page shell with the slider bounds and
// marks fixed at startup.
func newDashboardHandler(analytics *services.Analytics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		min, max := analytics.Bounds()
		w.Header().Set("Cache-Control", cacheMaxAge)
		if err := templates.Dashboard(min.Unix(), max.Unix(), analytics.Marks()).Render(ctx, w); err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	ctx, cancel := context.WithTimeout(context.Background(), bootstrapTimeout)
	defer cancel()

	// No store, no dashboard: connectivity and the min/max bootstrap are
	// both fatal at startup.
	sales, err := store.NewPostgres(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to analytical store", "error", err)
		os.Exit(1)
	}

	analytics := services.New(sales, cfg.Dashboard, logger)
	if err := analytics.Bootstrap(ctx); err != nil {
		logger.Error("failed to bootstrap data time range", "error", err)
		sales.Close()
		os.Exit(1)
	}

	templateHandlers := &server.TemplateHandlers{
		Dashboard: newDashboardHandler(analytics),
	}

	srv := server.NewServer(analytics, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.Metrics(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook("postgres pool", func(ctx context.Context) error {
		logger.Info("closing analytical store pool")
		sales.Close()
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
