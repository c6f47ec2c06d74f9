package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/notemap-service/internal/config"
	"github.com/notemap-service/internal/pkg/logger"
	"github.com/notemap-service/internal/repository/cache"
	"github.com/notemap-service/internal/repository/postgres"
	redisrepo "github.com/notemap-service/internal/repository/redis"
	"github.com/notemap-service/internal/worker/ingest"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if !cfg.Worker.Enabled {
		log.Info("Worker disabled by configuration, exiting")
		return
	}

	log.Info("Starting NoteMap ingest worker")

	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	postRepo := postgres.NewPostRepository(db, log)
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisrepo.NewStreamRepository(redisClient.Client(), log)

	w := ingest.NewIngestWorker(
		streamRepo,
		postRepo,
		cacheRepo,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.MaxBatchSize,
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- w.Start(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatal("Worker error", zap.Error(err))
		}
	case sig := <-quit:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))
		if err := w.Stop(); err != nil {
			log.Error("Failed to stop worker", zap.Error(err))
		}
		cancel()

		// Give the in-flight batch a moment to finish.
		select {
		case <-errChan:
		case <-time.After(5 * time.Second):
			log.Warn("Worker did not stop in time")
		}
	}

	log.Info("Worker stopped")
}
