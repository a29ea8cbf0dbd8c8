package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/helios-campus/helios/internal/app"
	"github.com/helios-campus/helios/internal/audit"
	"github.com/helios-campus/helios/internal/authz"
	authzhttp "github.com/helios-campus/helios/internal/authz/http"
	"github.com/helios-campus/helios/internal/grants"
	"github.com/helios-campus/helios/internal/navigation"
	"github.com/helios-campus/helios/internal/observability"
	"github.com/helios-campus/helios/internal/platform/cache"
	"github.com/helios-campus/helios/internal/platform/db"
	"github.com/helios-campus/helios/internal/shared"
	"github.com/helios-campus/helios/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())

	catalog := authz.NewCatalog()
	shared.RegisterCatalog(catalog)

	grantRepo := grants.NewRepository(pool)
	engine := authz.NewEngine(catalog, grantRepo)

	resolver, err := navigation.NewResolver(engine, navigation.DefaultManifests())
	if err != nil {
		logger.Error("build navigation resolver", slog.Any("error", err))
		os.Exit(1)
	}

	recorder := audit.NewRecorder(pool, logger)
	metrics := observability.NewMetrics()

	authzHandler := authzhttp.NewHandler(logger, engine, resolver, recorder, metrics)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		AuthzHandler:   authzHandler,
		JobsHandler:    jobsHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
}
