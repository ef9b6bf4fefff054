// Package app assembles the dashboard server: configuration, logging,
// services, router and lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"marketlens/internal/config"
	apierrors "marketlens/internal/errors"
	"marketlens/internal/infrastructure"
	custommw "marketlens/internal/middleware"
	"marketlens/internal/services"
	handlers "marketlens/internal/transport/http"
)

// Version is the reported application version, overridable at build time.
var Version = "dev"

// Application is the main application container.
type Application struct {
	Config         *config.Config
	Logger         *slog.Logger
	Router         *chi.Mux
	Server         *http.Server
	SessionService *services.SessionService
}

// New creates a fully wired application instance.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := infrastructure.NewLogger(infrastructure.LoggerOptions{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Output:    os.Stdout,
		AddSource: cfg.Logging.Development,
	})
	slog.SetDefault(logger)

	app := &Application{
		Config:         cfg,
		Logger:         logger,
		SessionService: services.NewSessionService(logger, cfg.Upload.TopN),
	}
	app.Router = app.setupRouter()
	app.Server = &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

// setupRouter builds the middleware chain and mounts all routes.
func (app *Application) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(custommw.StructuredLogger(app.Logger))
	r.Use(custommw.Recoverer(app.Logger))
	r.Use(custommw.Metrics)
	if app.Config.Security.RateLimit.Enabled {
		r.Use(custommw.RateLimit(app.Config.Security.RateLimit.RPS, app.Config.Security.RateLimit.Burst))
	}

	errorHandler := apierrors.NewErrorHandler(app.Logger, app.Config.Logging.Development)
	sessionHandler := handlers.NewSessionHandler(app.SessionService, app.Logger, errorHandler, app.Config.Upload.MaxSizeBytes)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/sessions", sessionHandler.Routes())
	})
	r.Method(http.MethodGet, "/healthz", handlers.NewHealthHandler(Version))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// server fails. Shutdown is graceful within the configured timeout.
func (app *Application) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Logger.InfoContext(ctx, "server starting",
			slog.String("addr", app.Server.Addr),
			slog.String("version", Version))
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
		defer cancel()

		app.Logger.Info("server shutting down")
		return app.Server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
