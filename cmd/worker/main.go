package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/hireloop-ats/hireloop/internal/activity"
	"github.com/hireloop-ats/hireloop/internal/analytics"
	"github.com/hireloop-ats/hireloop/internal/app"
	"github.com/hireloop-ats/hireloop/internal/candidates"
	"github.com/hireloop-ats/hireloop/internal/realtime"
	"github.com/hireloop-ats/hireloop/internal/screening"
	"github.com/hireloop-ats/hireloop/jobs"
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

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	// The worker has no websocket hub; it still invalidates the dashboard
	// summary so API instances rebuild it after batch progress.
	analyticsCache := analytics.NewSummaryCache(redisClient, 10*time.Minute)
	broadcaster := &analytics.InvalidatingBroadcaster{
		Next:   realtime.NopBroadcaster{},
		Cache:  analyticsCache,
		Logger: logger,
	}

	activityRepo := activity.NewRepository(pool)
	activityService := activity.NewService(activityRepo, logger)

	candidateRepo := candidates.NewRepository(pool)
	candidateService := candidates.NewService(candidateRepo, activityService, broadcaster)

	screeningRepo := screening.NewRepository(pool)
	screeningService := screening.NewService(logger, screeningRepo, candidateService, activityService, broadcaster, screening.NopEnqueuer{})

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Screening: screeningService,
		Cron: []jobs.CronRegistration{
			{Spec: "0 3 * * *", Task: jobs.NewRejectedCleanupTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
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
