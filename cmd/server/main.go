package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/classmark/testing-service/internal/cache"
	"github.com/classmark/testing-service/internal/config"
	"github.com/classmark/testing-service/internal/events"
	"github.com/classmark/testing-service/internal/handlers"
	"github.com/classmark/testing-service/internal/models"
	"github.com/classmark/testing-service/internal/repositories/postgres"
	"github.com/classmark/testing-service/internal/services"
	"github.com/classmark/testing-service/internal/utils"
	"github.com/classmark/testing-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Test{},
		&models.Question{},
		&models.Result{},
	); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Error("Failed to create upload directory", "error", err, "dir", cfg.UploadDir)
		os.Exit(1)
	}

	bus := events.NewChannelEventBus(utils.ToSlogLogger(logger))
	defer bus.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := events.StartResultLogger(ctx, bus); err != nil {
		logger.Error("Failed to start result consumer", "error", err)
		os.Exit(1)
	}

	repo := postgres.NewRepository(db)
	validator := utils.NewValidator()
	progress := cache.NewRedisProgressStore(redisClient, logger)

	budget := time.Duration(cfg.AttemptDurationMinutes) * time.Minute
	grace := time.Duration(cfg.SnapshotGraceMinutes) * time.Minute

	authService := services.NewAuthService(repo, logger, validator, cfg.JWTSecret)
	groupService := services.NewGroupService(repo, logger, validator)
	testService := services.NewTestService(repo, logger, validator)
	scoringService := services.NewScoringService(repo, logger)
	resultService := services.NewResultService(repo, scoringService, progress, bus, logger, validator)
	attemptService := services.NewAttemptService(testService, progress, logger, validator, budget, grace)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	manager := handlers.NewHandlerManager(
		authService,
		groupService,
		testService,
		scoringService,
		resultService,
		attemptService,
		cfg.UploadDir,
		logger,
	)
	manager.SetupRoutes(router)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  90 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
