package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/katuripu/katuripu/backend/cache"
	"github.com/katuripu/katuripu/backend/config"
	"github.com/katuripu/katuripu/backend/database"
	"github.com/katuripu/katuripu/backend/middleware"
	"github.com/katuripu/katuripu/backend/routes"
	"github.com/katuripu/katuripu/backend/services"
	"github.com/katuripu/katuripu/backend/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := database.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("Error initializing database", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("Error migrating database", "error", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Error getting database handle", "error", err)
	}
	defer sqlDB.Close()

	store := newCache(cfg, logger)
	defer store.Close()
	svc := services.New(db, services.NewRoadmapCache(store, cfg.CacheTTL, logger), logger)

	app := fiber.New(fiber.Config{
		AppName:      "katuripu",
		ErrorHandler: utils.ErrorHandler(logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	stop := make(chan struct{})
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	limiter.StartCleanup(time.Minute, stop)

	routes.SetupRoutes(app, svc, sqlDB, limiter, cfg, logger)

	go func() {
		if err := app.Listen(":" + cfg.ServerPort); err != nil {
			logger.Fatal("Server stopped", "error", err)
		}
	}()
	logger.Info("Server started", "port", cfg.ServerPort, "env", cfg.Env)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()

	close(stop)
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("Shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}

// newCache prefers redis and falls back to process memory.
func newCache(cfg *config.Config, logger *utils.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		return cache.NewMemory()
	}
	rdb, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory cache", "addr", cfg.RedisAddr, "error", err)
		return cache.NewMemory()
	}
	return rdb
}
