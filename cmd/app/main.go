package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"isp-subscription-billing/internal/config"
	"isp-subscription-billing/internal/domain/ports"
	"isp-subscription-billing/internal/domain/ports/repository"
	pg "isp-subscription-billing/internal/infra/db/postgres"
	"isp-subscription-billing/internal/infra/logging"
	"isp-subscription-billing/internal/infra/metrics"
	red "isp-subscription-billing/internal/infra/redis"
	"isp-subscription-billing/internal/infra/sched"
	"isp-subscription-billing/internal/infra/web"
	"isp-subscription-billing/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed checks)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("schema migration failed")
	}

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	userRepo := pg.NewUserRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	payRepo := pg.NewPaymentRepo(pool)
	renewRepo := pg.NewRenewalRepo(pool)

	var pkgRepo repository.PackageRepository = pg.NewPackageRepo(pool)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connect failed")
		}
		defer redisClient.Close()
		pkgRepo = pg.NewPackageRepoCacheDecorator(pkgRepo, redisClient, cfg.Redis.TTL)
		logger.Info().Msg("package cache enabled")
	}

	// ---- Use cases ----
	clock := ports.SystemClock{}
	subUC := usecase.NewSubscriptionUseCase(userRepo, pkgRepo, subRepo, payRepo, renewRepo, tm, clock, logger)
	statsUC := usecase.NewStatsUseCase(subRepo, tm, logger)
	pkgUC := usecase.NewPackageUseCase(pkgRepo, clock, logger)

	// ---- Metrics ----
	metrics.MustRegister()

	// ---- HTTP API ----
	auth := web.NewAuthManager(cfg.Server.JWTSecret, cfg.Server.TokenTTL)
	srv := web.NewServer(subUC, statsUC, pkgUC, auth, clock, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http api listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	// ---- Expiry worker ----
	worker := sched.NewExpiryWorker(cfg.Scheduler.ReconcileInterval, subUC, statsUC, clock, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
}
