package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/simbi/simbi-seller/internal/analytics"
	analytichttp "github.com/simbi/simbi-seller/internal/analytics/http"
	"github.com/simbi/simbi-seller/internal/app"
	"github.com/simbi/simbi-seller/internal/insights"
	"github.com/simbi/simbi-seller/internal/observability"
	"github.com/simbi/simbi-seller/internal/orders"
	"github.com/simbi/simbi-seller/jobs"
)

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg)

	backend, err := app.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	if err := backend.Cache.ListenForInvalidation(ctx); err != nil {
		logger.Warn("snapshot cache listener", slog.Any("error", err))
	}

	metrics := observability.NewMetrics()
	analyticsService := analytics.NewService(backend.Source, backend.Source)
	orderService := orders.NewService(backend.Source, backend.Statuses, backend.Source, logger)
	builder := insights.NewBuilder(cfg.Location(), cfg.ReportsPreferredBarYear, cfg.ReportsMaxYears)
	analyticsHandler := analytichttp.NewHandler(logger, analyticsService, builder, orderService)
	analyticsHandler.WithExportObserver(metrics)

	var jobHandler *jobs.Handler
	if cfg.RedisAddr != "" {
		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobHandler = jobs.NewHandler(inspector, logger)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AnalyticsHandler: analyticsHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
		Readiness:        backend.Readiness(),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
	return nil
}
