package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/tallybooks/tallybooks/internal/adapter/http"
	"github.com/tallybooks/tallybooks/internal/adapter/http/handler"
	postgresRepo "github.com/tallybooks/tallybooks/internal/adapter/repository/postgres"
	redisRepo "github.com/tallybooks/tallybooks/internal/adapter/repository/redis"
	"github.com/tallybooks/tallybooks/internal/domain"
	"github.com/tallybooks/tallybooks/internal/infrastructure/auth"
	"github.com/tallybooks/tallybooks/internal/infrastructure/config"
	"github.com/tallybooks/tallybooks/internal/infrastructure/eventpublisher"
	"github.com/tallybooks/tallybooks/internal/infrastructure/logger"
	"github.com/tallybooks/tallybooks/internal/infrastructure/metrics"
	"github.com/tallybooks/tallybooks/internal/infrastructure/postgres"
	"github.com/tallybooks/tallybooks/internal/infrastructure/redis"
	"github.com/tallybooks/tallybooks/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	log.Logger = appLogger

	ctx := context.Background()

	// Schema first: the server never starts against an out-of-date database.
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		appLogger.Fatal().Err(err).Msg("failed to run migrations")
	}
	appLogger.Info().Msg("migrations applied")

	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		URL:            cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	appLogger.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	periodRepo := postgresRepo.NewPeriodRepository(pool)
	balanceRepo := postgresRepo.NewOpeningBalanceRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()

	// Use cases. The period use case doubles as the posting guard and the
	// entry use case as the importer's poster.
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, entryRepo, outboxRepo, idGen, m)
	periodUC := usecase.NewPeriodUseCase(txManager, periodRepo, entryRepo, outboxRepo, cache, idGen, nil, m)
	entryUC := usecase.NewEntryUseCase(txManager, accountRepo, entryRepo, outboxRepo, periodUC, idGen, retrier, m)
	balanceUC := usecase.NewOpeningBalanceUseCase(txManager, balanceRepo, accountRepo, outboxRepo, entryUC, idGen, m)
	reportUC := usecase.NewReportUseCase(accountRepo, cache)

	// HTTP surface
	routerCfg := httpAdapter.RouterConfig{
		AccountHandler:        handler.NewAccountHandler(accountUC),
		EntryHandler:          handler.NewEntryHandler(entryUC),
		PeriodHandler:         handler.NewPeriodHandler(periodUC),
		OpeningBalanceHandler: handler.NewOpeningBalanceHandler(balanceUC),
		ReportHandler:         handler.NewReportHandler(reportUC, entryUC),
		HealthHandler:         handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:      idempotencyStore,
		Logger:                appLogger,
		Metrics:               m,
	}

	if cfg.AuthEnabled && cfg.JWTSecret != "" {
		routerCfg.JWTManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	} else {
		appLogger.Warn().Msg("authentication disabled; using static development identity")
		routerCfg.DevUser = domain.User{
			ID:       uuid.New(),
			TenantID: "dev",
			Email:    "dev@localhost",
			Role:     domain.RoleOwner,
			Active:   true,
		}
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Outbox publisher drains committed events in the background.
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(slogger),
		Logger:     slogger,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && !errors.Is(err, context.Canceled) {
			appLogger.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server...")
	stopPublisher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server stopped")
}
