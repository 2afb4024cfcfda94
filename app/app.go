// Package app wires configuration, storage, messaging, and the HTTP surface
// into one runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"

	rankingsservice "github.com/combine-day/combine-bot/app/modules/rankings/application"
	rankingshandlers "github.com/combine-day/combine-bot/app/modules/rankings/infrastructure/handlers"
	rosterservice "github.com/combine-day/combine-bot/app/modules/roster/application"
	rosterhandlers "github.com/combine-day/combine-bot/app/modules/roster/infrastructure/handlers"
	"github.com/combine-day/combine-bot/app/modules/roster/infrastructure/parsers"
	rosterqueue "github.com/combine-day/combine-bot/app/modules/roster/infrastructure/queue"
	"github.com/combine-day/combine-bot/config"
	"github.com/combine-day/combine-bot/db/bundb"
	"github.com/combine-day/combine-bot/internal/eventbus"
	"github.com/combine-day/combine-bot/internal/observability"
	"github.com/combine-day/combine-bot/internal/observability/attr"
)

// App is the assembled application.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	dbService     *bundb.DBService
	eventBus      eventbus.EventBus
	queue         *rosterqueue.Service
	httpServer    *http.Server
	metricsServer *http.Server
}

// NewApp initializes the application with the necessary services and configuration.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := observability.NewLogger(cfg.Observability.Environment)
	tracer := otel.Tracer("combine-bot")

	registry := prometheus.NewRegistry()
	metrics := observability.NewImportMetrics(registry)

	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}

	var bus eventbus.EventBus
	if cfg.NATS.URL != "" {
		bus, err = eventbus.NewEventBus(cfg.NATS.URL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize event bus: %w", err)
		}
	} else {
		logger.WarnContext(ctx, "NATS URL not configured, cache invalidation events disabled")
	}

	policy := rosterservice.ParsePolicy(cfg.Import.NullNumberPolicy)

	importService := rosterservice.NewImportService(
		dbService.RosterDB,
		bus,
		logger,
		metrics,
		tracer,
		policy,
		cfg.Import.MaxRows,
	)
	rankingsService := rankingsservice.NewRankingsService(dbService.RosterDB, logger)

	parserFactory := parsers.NewFactory()

	queue, err := rosterqueue.NewService(ctx, cfg.Postgres.DSN, importService, parserFactory, logger, metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize import queue: %w", err)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(rosterhandlers.CORSMiddleware(cfg.HTTP.AllowedOrigins))

	limiter := rosterhandlers.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimitRPS), cfg.HTTP.RateLimitBurst)
	rosterHandlers := rosterhandlers.NewRosterHandlers(
		importService,
		queue,
		parserFactory,
		logger,
		tracer,
		cfg.Import.AsyncThreshold,
	)
	rosterhandlers.RegisterRoutes(router, rosterHandlers, limiter)

	rankingsHandlers := rankingshandlers.NewRankingsHandlers(rankingsService, dbService.RosterDB, logger)
	rankingsHandlers.RegisterRoutes(router)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := queue.HealthCheck(r.Context()); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	return &App{
		Config: cfg,
		Logger: logger,

		dbService:     dbService,
		eventBus:      bus,
		queue:         queue,
		httpServer:    &http.Server{Addr: cfg.HTTP.Address, Handler: router},
		metricsServer: observability.MetricsServer(cfg.Observability.MetricsAddress, registry),
	}, nil
}

// Run starts the queue and HTTP listeners and blocks until the context is
// canceled, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	if err := a.queue.Start(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 2)

	go func() {
		a.Logger.InfoContext(ctx, "HTTP server listening", attr.String("address", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if a.metricsServer != nil {
		go func() {
			a.Logger.InfoContext(ctx, "Metrics server listening", attr.String("address", a.metricsServer.Addr))
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		a.shutdown()
		return err
	}

	a.shutdown()
	return nil
}

func (a *App) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("HTTP server shutdown failed", attr.Error(err))
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("Metrics server shutdown failed", attr.Error(err))
		}
	}
	if err := a.queue.Stop(shutdownCtx); err != nil {
		a.Logger.Error("Queue shutdown failed", attr.Error(err))
	}
	if a.eventBus != nil {
		if err := a.eventBus.Close(); err != nil {
			a.Logger.Error("Event bus close failed", attr.Error(err))
		}
	}
	if err := a.dbService.Close(); err != nil {
		a.Logger.Error("Database close failed", attr.Error(err))
	}
}
