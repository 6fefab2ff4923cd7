package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"transaction-service/config"
	httpHandler "transaction-service/internal/adapter/http/handler"
	"transaction-service/internal/adapter/http/middleware"
	"transaction-service/internal/adapter/metrics"
	pgStorage "transaction-service/internal/adapter/storage/postgres"
	redisStorage "transaction-service/internal/adapter/storage/redis"
	"transaction-service/internal/core/ports"
	"transaction-service/internal/service"
	"transaction-service/pkg/logger"

	"github.com/spf13/pflag"
)

func main() {
	flags := pflag.NewFlagSet("transaction-service", pflag.ExitOnError)
	configPath := flags.String("config", "", "path to the YAML config file")
	flags.Bool("migrate", true, "apply database migrations on startup")
	flags.Int("port", 8080, "HTTP listen port")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.LoadWithFlags(*configPath, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting transaction service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.Migrate {
		if err := pgStorage.Migrate(cfg.Database.DSN()); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		log.Info().Msg("Migrations applied")
	}

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Repositories
	accountRepo := pgStorage.NewAccountRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Redis stores
	balanceCache := redisStorage.NewBalanceCache(rdb, cfg.Processing.ReservationTTL)
	lock := redisStorage.NewLock(rdb)
	var rateLimitStore *redisStorage.RateLimitStore
	if cfg.RateLimit.Enabled {
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
	}

	registry := metrics.NewRegistry()
	prom := metrics.New(registry)

	// Services
	processor := service.NewTransactionService(
		accountRepo,
		txRepo,
		balanceCache,
		transactor,
		prom,
		service.ProcessingConfig{
			ReservationTTL:          cfg.Processing.ReservationTTL,
			BaseBackoff:             cfg.Processing.BaseBackoff,
			MaxRetries:              cfg.Processing.MaxRetries,
			IdempotencyWaitAttempts: cfg.Processing.IdempotencyWaitAttempts,
			IdempotencyWaitInterval: cfg.Processing.IdempotencyWaitInterval,
		},
		logger.Component(log, "processor"),
	)
	balanceSvc := service.NewBalanceService(accountRepo, balanceCache, logger.Component(log, "balances"))
	reconciler := service.NewReconciler(
		processor,
		accountRepo,
		txRepo,
		balanceCache,
		lock,
		prom,
		service.ReconcilerConfig{
			Interval:    cfg.Reconcile.Interval,
			BatchSize:   cfg.Reconcile.BatchSize,
			LockEnabled: cfg.Reconcile.LockEnabled,
			LockTTL:     cfg.Reconcile.LockTTL,
			FullResync:  cfg.Reconcile.FullResync,
			MaxRetries:  cfg.Processing.MaxRetries,
			BaseBackoff: cfg.Processing.BaseBackoff,
		},
		logger.Component(log, "reconciler"),
	)

	// Warm the mirror before taking traffic.
	if n, err := reconciler.WarmCache(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial cache warm-up failed")
	} else {
		log.Info().Int("accounts", n).Msg("Cache warmed")
	}
	reconcilerDone := reconciler.Run(ctx)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Processor:      processor,
		BalanceSvc:     balanceSvc,
		RateLimitStore: rateLimitStore,
		RateLimitRules: map[string]middleware.RateLimitRule{
			"transactions": {Limit: int64(cfg.RateLimit.Limit), Window: cfg.RateLimit.Window},
		},
		HealthCheckers: []ports.HealthChecker{pgStorage.NewHealthCheck(pool), redisStorage.NewHealthCheck(rdb)},
		HTTPObserver:   prom,
		MetricsHandler: metrics.Handler(registry),
		Mode:           cfg.Server.Mode,
		Logger:         logger.Component(log, "http"),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	select {
	case <-reconcilerDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("Reconciler did not stop in time")
	}

	log.Info().Msg("Server exited")
}
