package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/simbi/simbi-seller/internal/analytics"
	"github.com/simbi/simbi-seller/internal/app"
	"github.com/simbi/simbi-seller/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	if err := checkWorkerConfig(cfg); err != nil {
		logger.Error("invalid worker config", slog.Any("error", err))
		os.Exit(1)
	}

	backend, err := app.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("open backend", slog.Any("error", err))
		os.Exit(1)
	}
	defer backend.Close()

	analyticsService := analytics.NewService(backend.Source, backend.Source)
	warmupJob := jobs.NewSnapshotWarmupJob(analyticsService, backend.Source, logger, nil)

	warmupTask, err := jobs.NewScheduledWarmupTask()
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Location:  cfg.Location(),
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskSnapshotWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.WarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("warmup_cron", cfg.WarmupCron))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

// checkWorkerConfig rejects configurations the worker cannot serve. Warmup
// writes shared snapshots, which is only safe over Postgres.
func checkWorkerConfig(cfg *app.Config) error {
	if cfg.RedisAddr == "" {
		return errors.New("worker requires REDIS_ADDR")
	}
	if cfg.PGDSN == "" {
		return errors.New("worker requires PG_DSN; the static seed is local to the server process")
	}
	return nil
}
