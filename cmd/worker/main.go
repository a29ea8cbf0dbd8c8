package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/helios-campus/helios/internal/app"
	"github.com/helios-campus/helios/internal/authz"
	"github.com/helios-campus/helios/internal/grants"
	"github.com/helios-campus/helios/internal/platform/db"
	"github.com/helios-campus/helios/internal/shared"
	"github.com/helios-campus/helios/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	catalog := authz.NewCatalog()
	shared.RegisterCatalog(catalog)

	grantRepo := grants.NewRepository(pool)
	scanner := jobs.NewIntegrityScanner(catalog, grantRepo, logger)

	scanTask, err := jobs.NewIntegrityScanTask(jobs.IntegrityScanPayload{})
	if err != nil {
		logger.Error("build integrity scan task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeIntegrityScan, Handler: scanner.HandleTask},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "45 1 * * *", Task: scanTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
