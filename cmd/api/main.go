package main

// @title NoteMap Service API
// @version 1.0.0
// @description Backend for the location-tagged notes map. Aggregates geotagged
// @description posts, normalizes legacy location encodings, derives the visible
// @description marker set per map session and serves the render model the map
// @description widget draws.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/notemap-service/docs"
	"github.com/notemap-service/internal/config"
	httpDelivery "github.com/notemap-service/internal/delivery/http"
	"github.com/notemap-service/internal/delivery/http/handler"
	"github.com/notemap-service/internal/mapview"
	"github.com/notemap-service/internal/pkg/logger"
	"github.com/notemap-service/internal/repository/cache"
	"github.com/notemap-service/internal/repository/postgres"
	redisrepo "github.com/notemap-service/internal/repository/redis"
	"github.com/notemap-service/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting NoteMap Service")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
	)

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 5. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}
	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}
	log.Info("All connections healthy")

	// 6. Initialize repositories
	postRepo := postgres.NewPostRepository(db, log)
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisrepo.NewStreamRepository(redisClient.Client(), log)

	// 7. Initialize use cases and the session registry
	postUC := usecase.NewPostUseCase(postRepo, cacheRepo, streamRepo, log, cfg.Cache.PostListTTL)
	renderUC := usecase.NewRenderUseCase(cfg.Map, log)
	sessions := mapview.NewRegistry(postUC, cfg.Map.SessionIdleTTL, log)
	defer sessions.CloseAll()

	// 8. Initialize handlers and server
	postHandler := handler.NewPostHandler(postUC, log)
	mapViewHandler := handler.NewMapViewHandler(sessions, renderUC, log)

	server := httpDelivery.NewServer(cfg, log, postHandler, mapViewHandler)

	// 9. Run until interrupted
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.Fatal("Server error", zap.Error(err))
	case sig := <-quit:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}

	log.Info("Server stopped")
}
