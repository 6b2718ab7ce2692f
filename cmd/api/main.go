package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/contract-ledger/internal/api/http"
	"github.com/spec-kit/contract-ledger/internal/api/http/handlers"
	"github.com/spec-kit/contract-ledger/internal/auth"
	"github.com/spec-kit/contract-ledger/internal/cache"
	"github.com/spec-kit/contract-ledger/internal/config"
	"github.com/spec-kit/contract-ledger/internal/events"
	"github.com/spec-kit/contract-ledger/internal/observability"
	"github.com/spec-kit/contract-ledger/internal/persistence"
	"github.com/spec-kit/contract-ledger/internal/ratelimit"
	"github.com/spec-kit/contract-ledger/internal/repository"
	"github.com/spec-kit/contract-ledger/internal/repository/memory"
	"github.com/spec-kit/contract-ledger/internal/service"
	"github.com/spec-kit/contract-ledger/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	repos, storage := openRepositories(ctx, cfg, pg, logger)

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var reportCache cache.ReportCache
	if redis != nil {
		reportCache = cache.NewRedisReportCache(redis.Client, cfg.Cache.ReportsTTL())
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	contractService := service.NewContractService(repos.Contracts)
	jobService := service.NewJobService(service.JobDependencies{
		JobRepo:    repos.Jobs,
		LedgerRepo: repos.Ledger,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	balanceService := service.NewBalanceService(service.BalanceDependencies{
		LedgerRepo:         repos.Ledger,
		Dispatcher:         dispatcher,
		Metrics:            metrics,
		Logger:             logger,
		DepositCapRatio:    cfg.Ledger.DepositCapRatio,
		DepositRequireSelf: cfg.Ledger.DepositRequireSelf,
	})
	reportService := service.NewReportService(service.ReportDependencies{
		ReportRepo:   repos.Reports,
		Cache:        reportCache,
		Metrics:      metrics,
		Logger:       logger,
		DefaultLimit: cfg.Ledger.ReportDefaultLimit,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartEventWorkers(dispatcher, notificationService, reportService)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens, repos.Profiles, cfg.Auth.ProfileHeader)

	dependencies := map[string]handlers.Pinger{}
	if pg != nil {
		dependencies["postgres"] = pg
	}
	if redis != nil {
		dependencies["redis"] = redis
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:             handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, storage, dependencies),
		Contracts:          handlers.NewContractsHandler(contractService),
		Jobs:               handlers.NewJobsHandler(jobService),
		Balances:           handlers.NewBalancesHandler(balanceService),
		Admin:              handlers.NewAdminHandler(reportService),
		AuthMiddleware:     authMiddleware,
		AdminTokenRequired: cfg.Auth.AdminTokenRequired,
		Limiter:            ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL()),
		Metrics:            metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

// openRepositories selects Postgres when a pool exists and the seeded in-memory store otherwise.
func openRepositories(ctx context.Context, cfg *config.Config, pg *persistence.Postgres, logger *zap.Logger) (repository.Repositories, string) {
	if pg == nil {
		store := memory.New()
		if err := memory.SeedDemo(store); err != nil {
			logger.Fatal("failed to seed in-memory store", zap.Error(err))
		}
		logger.Info("ledger storage ready", zap.String("storage", "memory"))
		return store.Repositories(), "memory"
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	if cfg.Postgres.SeedDemo {
		if err := persistence.SeedDemo(ctx, pg.Pool, logger); err != nil {
			logger.Fatal("failed to seed demo data", zap.Error(err))
		}
	}
	logger.Info("ledger storage ready", zap.String("storage", "postgres"))
	return repository.NewPostgresRepositories(pg.Pool), "postgres"
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
