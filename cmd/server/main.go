package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/coreledger/internal/adapter/http"
	"github.com/iho/coreledger/internal/adapter/http/handler"
	postgresRepo "github.com/iho/coreledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/coreledger/internal/adapter/repository/redis"
	"github.com/iho/coreledger/internal/infrastructure/auth"
	"github.com/iho/coreledger/internal/infrastructure/config"
	"github.com/iho/coreledger/internal/infrastructure/eventpublisher"
	"github.com/iho/coreledger/internal/infrastructure/logger"
	"github.com/iho/coreledger/internal/infrastructure/metrics"
	"github.com/iho/coreledger/internal/infrastructure/postgres"
	"github.com/iho/coreledger/internal/infrastructure/redis"
	"github.com/iho/coreledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolConfig{
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	var (
		idempotencyCache usecase.IdempotencyCache
		redisClient      *goredis.Client
	)
	if cfg.RedisEnabled {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		idempotencyCache = redisRepo.NewIdempotencyCache(redisClient)
		log.Info().Msg("connected to redis")
	}

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	entryRepo := postgresRepo.NewJournalEntryRepository(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	periodRepo := postgresRepo.NewPeriodRepository(pool)
	balanceRepo := postgresRepo.NewTemporalBalanceRepository(pool)
	entityRepo := postgresRepo.NewEntityRepository(pool)
	trialBalanceRepo := postgresRepo.NewTrialBalanceRepository(pool)
	idempotencyRepo := postgresRepo.NewIdempotencyRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	converter := postgresRepo.NewExchangeRateRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	clock := postgresRepo.NewSystemClock()
	retrier := postgresRepo.NewRetrier(log.Logger)

	// Services
	balances := usecase.NewTemporalBalanceService(balanceRepo, idGen, clock)
	idempotency := usecase.NewIdempotencyService(idempotencyRepo, idempotencyCache, clock, cfg.IdempotencyTTL)
	createSvc := usecase.NewCreateJournalEntryService(
		txManager, entryRepo, accountRepo, periodRepo,
		balances, idempotency, outboxRepo, auditRepo,
		idGen, clock, retrier, m,
	)
	reverseSvc := usecase.NewReverseJournalEntryService(
		txManager, entryRepo, periodRepo, balances,
		outboxRepo, auditRepo, idGen, clock, retrier, m,
	)
	trialBalanceSvc := usecase.NewTrialBalanceService()
	consolidation := usecase.NewConsolidationService()
	balanceSheetSvc := usecase.NewConsolidatedBalanceSheetService(entityRepo, trialBalanceRepo, consolidation)
	closingSvc := usecase.NewClosingService(trialBalanceRepo, converter, idGen, clock)
	eliminationSvc := usecase.NewEliminationService(entryRepo, idGen, clock)
	periodSvc := usecase.NewPeriodService(txManager, periodRepo, outboxRepo, auditRepo, idGen, clock)

	// Outbox publisher
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(log.Logger),
		Logger:     log.Logger,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && publisherCtx.Err() == nil {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled && cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		EntryHandler:   handler.NewEntryHandler(createSvc, reverseSvc, entryRepo),
		ReportHandler:  handler.NewReportHandler(trialBalanceRepo, trialBalanceSvc, balanceSheetSvc, closingSvc, eliminationSvc),
		BalanceHandler: handler.NewBalanceHandler(balances),
		PeriodHandler:  handler.NewPeriodHandler(periodSvc),
		HealthHandler:  handler.NewHealthHandler(pool, redisClient),
		Logger:         log.Logger,
		JWTManager:     jwtManager,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	stopPublisher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
