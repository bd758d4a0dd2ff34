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
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/bankledger/internal/adapter/http"
	"github.com/iho/bankledger/internal/adapter/http/handler"
	"github.com/iho/bankledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/bankledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/bankledger/internal/adapter/repository/redis"
	"github.com/iho/bankledger/internal/infrastructure/config"
	"github.com/iho/bankledger/internal/infrastructure/eventpublisher"
	"github.com/iho/bankledger/internal/infrastructure/logger"
	"github.com/iho/bankledger/internal/infrastructure/logging"
	"github.com/iho/bankledger/internal/infrastructure/metrics"
	"github.com/iho/bankledger/internal/infrastructure/postgres"
	"github.com/iho/bankledger/internal/infrastructure/redis"
	"github.com/iho/bankledger/internal/usecase"
)

const (
	streamMaxLen        = 100_000
	poolStatsInterval   = 15 * time.Second
	limiterCleanupEvery = time.Minute
	limiterMaxIdle      = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	zl := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = zl

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, zl zerolog.Logger) error {
	slogger := logging.NewWithWriter(os.Stdout, logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	zl.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL,
		redis.WithPoolSize(cfg.RedisPoolSize),
		redis.WithTimeouts(cfg.RedisTimeout))
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	zl.Info().Msg("connected to redis")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewWith(registry)

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	movementRepo := postgresRepo.NewMovementRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(postgresRepo.WithRetryLogger(slogger))
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Use cases
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, outboxRepo, idGen, m).
		WithRetrier(retrier).
		WithCache(cache, cfg.AccountCacheTTL)
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, movementRepo, outboxRepo, idGen, m).
		WithRetrier(retrier).
		WithCache(cache).
		WithLogger(zl.With().Str("component", "ledger").Logger())
	movementUC := usecase.NewMovementUseCase(txManager, accountRepo, movementRepo)
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo, movementRepo)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitEnabled() {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
		go rateLimiter.RunCleanup(ctx, limiterCleanupEvery, limiterMaxIdle)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:        handler.NewAccountHandler(accountUC),
		MovementHandler:       handler.NewMovementHandler(ledgerUC, movementUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC),
		HealthHandler: handler.NewHealthHandler(
			pool,
			handler.PingerFunc(func(ctx context.Context) error { return redis.Ping(ctx, redisClient) }),
		),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		Metrics:          m,
		MetricsHandler:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Logger:           &zl,
	})

	outboxLogger := slogger.WithContext(ctx).With("component", "outbox")
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  newOutboxSink(cfg, redisClient, outboxLogger),
		Logger:     outboxLogger,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})
	go func() {
		if err := publisher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zl.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	go reportPoolStats(ctx, pool, m)

	server := newHTTPServer(cfg, router)

	errCh := make(chan error, 1)
	go func() {
		zl.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	zl.Info().Msg("server stopped")
	return nil
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           h,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}
}

type poolStatter interface {
	Stat() *pgxpool.Stat
}

func reportPoolStats(ctx context.Context, pool poolStatter, m *metrics.Metrics) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()

	for {
		m.DBConnections.Set(float64(pool.Stat().AcquiredConns()))

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// newOutboxSink picks where drained outbox events go.
func newOutboxSink(cfg *config.Config, client goredis.UniversalClient, logger *slog.Logger) eventpublisher.Publisher {
	if cfg.OutboxSink == config.OutboxSinkLog {
		return eventpublisher.NewLogPublisher(logger)
	}
	return eventpublisher.NewStreamPublisher(client, cfg.OutboxStream, streamMaxLen)
}
