package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/credora/credit-analysis/internal/application/usecase"
	"github.com/credora/credit-analysis/internal/domain/port"
	"github.com/credora/credit-analysis/internal/domain/service"
	rediscache "github.com/credora/credit-analysis/internal/infrastructure/cache"
	"github.com/credora/credit-analysis/internal/infrastructure/config"
	"github.com/credora/credit-analysis/internal/infrastructure/messaging"
	pgrepo "github.com/credora/credit-analysis/internal/infrastructure/persistence/postgres"
	"github.com/credora/credit-analysis/internal/presentation/rest"
	pkgkafka "github.com/credora/credit-analysis/pkg/kafka"
	"github.com/credora/credit-analysis/pkg/observability"
	pkgpostgres "github.com/credora/credit-analysis/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: cfg.ServiceName,
	})
	logger.Info("starting credit-analysis", "http_port", cfg.HTTPPort)

	metrics := observability.NewMetrics("credit_analysis")
	healthHandler := rest.NewHealthHandler(cfg.ServiceName, logger)

	// Optional infrastructure. The pipeline itself never depends on any of
	// these: a disabled or unreachable backend degrades persistence,
	// caching or eventing, not the decision.
	var repo port.AnalysisRepository
	if cfg.DB.Enabled {
		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		pgCfg := pkgpostgres.Config{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			User:     cfg.DB.User,
			Password: cfg.DB.Password,
			Database: cfg.DB.Name,
			SSLMode:  cfg.DB.SSLMode,
		}
		pool, err := pkgpostgres.NewPool(dbCtx, pgCfg)
		dbCancel()
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("connected to database")

		migrations := "file://internal/infrastructure/persistence/postgres/migrations"
		if err := pkgpostgres.RunMigrations(pgCfg.DSN(), migrations); err != nil {
			logger.Warn("migration warning", "error", err)
		}

		repo = pgrepo.NewAnalysisRepo(pool)
		healthHandler.AddBackend("postgres", pool)
	}

	var cache port.AnalysisCache
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		analysisCache := rediscache.NewAnalysisCache(client, cfg.Redis.TTL)
		cache = analysisCache
		healthHandler.AddBackend("redis", analysisCache)
	}

	var publisher port.EventPublisher
	if cfg.Kafka.Enabled {
		producer := pkgkafka.NewProducer(pkgkafka.Config{Brokers: cfg.Kafka.Brokers})
		defer producer.Close()
		publisher = messaging.NewKafkaEventPublisher(producer, logger)
	}

	// Domain services.
	persona := service.NewPersonaFilter()
	solver := service.NewCreditLimitSolver()
	riskEngine := service.NewRiskEngine(logger, cfg.Model.CurveDir)
	network := service.NewApprovalNetwork(cfg.Model.WeightPath)
	if loaded, err := network.LoadWeights(); err != nil {
		logger.Warn("failed to load model weights, using heuristic initialization", "error", err)
	} else if !loaded {
		logger.Warn("no model weights found, using heuristic initialization",
			"path", cfg.Model.WeightPath)
	} else {
		logger.Info("model weights loaded", "path", cfg.Model.WeightPath)
	}
	classifier := service.NewApprovalClassifier(network, logger)

	// Use cases.
	analyzeUC := usecase.NewAnalyzeCreditUseCase(
		persona, solver, riskEngine, classifier,
		repo, cache, publisher, metrics, logger,
	)
	getUC := usecase.NewGetAnalysisUseCase(repo, cache, logger)
	productsUC := usecase.NewListProductsUseCase(solver)
	trainUC := usecase.NewTrainModelUseCase(network, publisher, metrics, logger)

	// HTTP server.
	mux := http.NewServeMux()
	rest.NewAnalysisHandler(analyzeUC, getUC, productsUC, trainUC, logger).RegisterRoutes(mux)
	healthHandler.RegisterRoutes(mux)
	mux.Handle("GET /metrics", metrics.Handler())

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("credit-analysis stopped")
}
