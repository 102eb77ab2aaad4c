package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vocaplay/game-service/internal/cache"
	"github.com/vocaplay/game-service/internal/config"
	"github.com/vocaplay/game-service/internal/handlers"
	"github.com/vocaplay/game-service/internal/models"
	"github.com/vocaplay/game-service/internal/repositories/postgres"
	"github.com/vocaplay/game-service/internal/services"
	"github.com/vocaplay/game-service/internal/utils"
	"github.com/vocaplay/game-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var slogger *slog.Logger
	if cfg.Environment == "production" {
		slogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	} else {
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	slog.SetDefault(slogger)
	logger := utils.NewSlogLogger(slogger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		slogger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Word{},
		&models.GameSession{},
		&models.Achievement{},
		&models.Reward{},
		&models.Task{},
	); err != nil {
		slogger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	var cacheService cache.CacheService = cache.NoopCache{}
	if redisClient, err := pkg.NewRedisClient(cfg); err != nil {
		slogger.Warn("Redis unavailable, caching disabled", "error", err)
	} else {
		cacheService = cache.NewRedisCache(redisClient, slogger)
		defer redisClient.Close()
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		slogger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	validator := utils.NewValidator()

	// One lock registry across services: session completion and task
	// submission must serialize on the same user key.
	locks := services.NewKeyedMutex()

	gameService := services.NewGameService(repo, slogger, validator, publisher, cacheService, locks)
	catalogService := services.NewCatalogService(repo, slogger, validator)
	taskService := services.NewTaskService(repo, slogger, validator, publisher, locks)
	wordService := services.NewWordService(repo, slogger, validator)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(
		gameService, catalogService, taskService, wordService, validator, logger,
	)
	handlerManager.SetupRoutes(router)

	var sweeper *services.OverdueSweeper
	if cfg.OverdueSweepMinutes > 0 {
		sweeper = services.NewOverdueSweeper(
			taskService, slogger, time.Duration(cfg.OverdueSweepMinutes)*time.Minute,
		)
		if err := sweeper.Start(); err != nil {
			slogger.Error("Failed to start overdue sweeper", "error", err)
			os.Exit(1)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		slogger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slogger.Info("Shutting down server")
	if sweeper != nil {
		if err := sweeper.Shutdown(); err != nil {
			slogger.Warn("Sweeper shutdown failed", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slogger.Error("Forced shutdown", "error", err)
		os.Exit(1)
	}
	slogger.Info("Server stopped")
}
