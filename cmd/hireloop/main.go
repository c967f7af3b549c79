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
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/hireloop-ats/hireloop/internal/activity"
	"github.com/hireloop-ats/hireloop/internal/analytics"
	"github.com/hireloop-ats/hireloop/internal/app"
	"github.com/hireloop-ats/hireloop/internal/auth"
	"github.com/hireloop-ats/hireloop/internal/candidates"
	"github.com/hireloop-ats/hireloop/internal/matches"
	"github.com/hireloop-ats/hireloop/internal/observability"
	"github.com/hireloop-ats/hireloop/internal/openings"
	"github.com/hireloop-ats/hireloop/internal/rbac"
	"github.com/hireloop-ats/hireloop/internal/realtime"
	"github.com/hireloop-ats/hireloop/internal/screening"
	"github.com/hireloop-ats/hireloop/internal/shared"
	"github.com/hireloop-ats/hireloop/internal/users"
	"github.com/hireloop-ats/hireloop/jobs"
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

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	hub := realtime.NewHub(logger)
	hub.SetConnectionGauge(metrics.SetWSConnections)
	hub.SetBroadcastCounter(metrics.CountBroadcast)
	go hub.Run(ctx)

	analyticsCache := analytics.NewSummaryCache(redisClient, 10*time.Minute)

	// Domain events invalidate the cached dashboard summary before fan-out.
	broadcaster := &analytics.InvalidatingBroadcaster{
		Next:   hub,
		Cache:  analyticsCache,
		Logger: logger,
	}

	tokenIssuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	sessionRegistry := auth.NewSessionRegistry(redisClient, cfg.TokenTTL)
	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(logger, authRepo, tokenIssuer, sessionRegistry)
	authHandler := auth.NewHandler(logger, authService)

	rbacMiddleware := rbac.Middleware{Logger: logger}

	activityRepo := activity.NewRepository(dbpool)
	activityService := activity.NewService(activityRepo, logger)
	activityHandler := activity.NewHandler(logger, activityService, rbacMiddleware)

	candidateRepo := candidates.NewRepository(dbpool)
	candidateService := candidates.NewService(candidateRepo, activityService, broadcaster)
	candidateHandler := candidates.NewHandler(logger, candidateService, rbacMiddleware)

	matchRepo := matches.NewRepository(dbpool)
	matchService := matches.NewService(matchRepo, activityService, broadcaster)
	matchHandler := matches.NewHandler(logger, matchService, rbacMiddleware)
	candidateHandler.MatchHistory = matchHandler.CandidateMatches()

	openingRepo := openings.NewRepository(dbpool)
	openingService := openings.NewService(openingRepo, activityService, broadcaster)
	openingHandler := openings.NewHandler(logger, openingService, rbacMiddleware)

	queueClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()

	screeningRepo := screening.NewRepository(dbpool)
	screeningService := screening.NewService(logger, screeningRepo, candidateService, activityService, broadcaster, queueClient)
	screeningHandler := screening.NewHandler(logger, screeningService, rbacMiddleware)

	analyticsRepo := analytics.NewRepository(dbpool)
	analyticsService := analytics.NewService(logger, analyticsRepo, analyticsCache)
	analyticsHandler := analytics.NewHandler(logger, analyticsService, rbacMiddleware)
	// Rebuild the summary when the worker (or a peer instance) invalidates it.
	go analyticsService.WarmOnInvalidation(ctx)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, activityService)
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)

	permissionsHandler := rbac.NewPermissionsHandler(logger)

	realtimeHandler := realtime.NewHandler(logger, hub, func(r *http.Request, token string) (*shared.Principal, error) {
		return authService.Resolve(r.Context(), token)
	})

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		AuthService:        authService,
		AuthHandler:        authHandler,
		CandidatesHandler:  candidateHandler,
		MatchesHandler:     matchHandler,
		OpeningsHandler:    openingHandler,
		ScreeningHandler:   screeningHandler,
		AnalyticsHandler:   analyticsHandler,
		ActivityHandler:    activityHandler,
		UsersHandler:       usersHandler,
		PermissionsHandler: permissionsHandler,
		RealtimeHandler:    realtimeHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
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
