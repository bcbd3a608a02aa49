package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"huntboard/internal/api"
	"huntboard/internal/api/handler"
	"huntboard/internal/api/middleware"
	"huntboard/internal/config"
	"huntboard/internal/coordinator"
	"huntboard/internal/core/ports"
	"huntboard/internal/core/postgres"
	"huntboard/internal/core/postgres/repository"
	"huntboard/internal/infrastructure/n8n"
	"huntboard/internal/infrastructure/redis"
	"huntboard/internal/service"
	"huntboard/internal/worker"
)

func runServe(parent context.Context, opts *rootOptions) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := bootstrap(opts)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// 1. Database
	db, err := postgres.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(db); err != nil {
			return err
		}
	}

	// 2. Redis, only when queue dispatch or webhook dedup needs it
	var rdb *goredis.Client
	if cfg.NeedsRedis() {
		rdb, err = redis.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		log.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
	}

	// 3. Repositories
	workflowRepo := repository.NewWorkflowRepository(db)
	productRepo := repository.NewProductRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)
	executionRepo := repository.NewExecutionRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	health := postgres.NewHealthCheck(db)

	// 4. Dispatch
	var (
		dispatcher ports.Dispatcher
		queue      *redis.RedisQueue
		bus        *redis.RedisEventBus
	)
	switch cfg.Executor.Mode {
	case config.ExecutorModeQueue:
		queue = redis.NewRedisQueue(rdb)
		bus = redis.NewRedisEventBus(rdb, log)
		dispatcher = queue
	case config.ExecutorModeWebhook:
		dispatcher = n8n.NewWebhookDispatcher(time.Duration(cfg.Executor.Timeout) * time.Second)
	}

	var dedup ports.Deduper
	if cfg.Webhook.Dedup.Enabled {
		dedup = redis.NewRedisDeduper(rdb, cfg.Webhook.Dedup.Window())
	}

	// 5. Services
	executionSvc := service.NewExecutionService(workflowRepo, executionRepo, dispatcher, cfg.Executor.Mode, cfg.Executor.CallbackURL, log)
	webhookSvc := service.NewWebhookService(workflowRepo, productRepo, analysisRepo, health, dedup, log)
	workflowSvc := service.NewWorkflowService(workflowRepo, log)
	productSvc := service.NewProductService(productRepo, workflowRepo, log)
	analysisSvc := service.NewAnalysisService(analysisRepo)
	statsSvc := service.NewStatsService(statsRepo)

	// 6. Background consumers
	var wg sync.WaitGroup
	if bus != nil {
		coord := coordinator.NewCoordinator(bus, executionSvc, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := coord.Start(ctx); err != nil {
				log.Error("coordinator stopped", zap.Error(err))
			}
		}()

		if n := cfg.Executor.LocalWorkers; n > 0 {
			w := worker.NewWorker(queue, bus, worker.InitRegistry(), log)
			wg.Add(1)
			go func() {
				defer wg.Done()
				w.StartPool(ctx, n)
			}()
			log.Info("local worker pool started", zap.Int("workers", n))
		}
	}

	// 7. HTTP
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	production := cfg.IsProduction()
	router := api.NewRouter(api.Handlers{
		Webhooks:  handler.NewWebhookHandler(webhookSvc, executionSvc, log, production),
		Workflows: handler.NewWorkflowHandler(workflowSvc, executionSvc, log, production),
		Products:  handler.NewProductHandler(productSvc, log, production),
		Analysis:  handler.NewAnalysisHandler(analysisSvc, log, production),
		Stats:     handler.NewStatsHandler(statsSvc, log, production),
		Health:    handler.NewHealthHandler(health, log),
	}, middleware.NewAuthenticator(cfg.Auth), log)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", server.Addr), zap.String("executor_mode", cfg.Executor.Mode))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("http server: %w", err)
		}
	}

	// 8. Graceful shutdown
	log.Info("shutting down")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	wg.Wait()
	log.Info("server stopped")
	return nil
}
