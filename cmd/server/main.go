package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/yathboss/revenue-vision/internal/api"
	"github.com/yathboss/revenue-vision/internal/api/handlers"
	"github.com/yathboss/revenue-vision/internal/config"
	"github.com/yathboss/revenue-vision/internal/database"
	"github.com/yathboss/revenue-vision/internal/dataset"
	"github.com/yathboss/revenue-vision/internal/logging"
	"github.com/yathboss/revenue-vision/internal/middleware"
	"github.com/yathboss/revenue-vision/internal/models"
	"github.com/yathboss/revenue-vision/internal/services"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Environment)

	// Load the sales ledger from the configured source
	var records []models.SalesRecord
	var db *database.PostgresDB
	switch cfg.Dataset.Source {
	case "postgres":
		db, err = database.NewPostgresConnection(cfg.Database, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		repo := dataset.NewLedgerRepository(db.Pool, cfg.Dataset.Table, logger)
		records, err = repo.LoadRecords(context.Background())
		if err != nil {
			logger.WithError(err).Fatal("Failed to load sales ledger from database")
		}
	default:
		records, err = dataset.LoadCSV(cfg.Dataset.CSVPath, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to load sales ledger from csv")
		}
	}

	// Optional Redis tier for the result cache
	var redisClient *database.RedisClient
	if cfg.Redis.Enabled {
		redisClient, err = database.NewRedisConnection(cfg.Redis, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redisClient.Close()
	}

	store := services.NewModelStore(logger)
	cache := services.NewResultCache(redisClient, logger)
	forecastService := services.NewForecastService(records, cfg, store, cache, logger)

	// Precompute common fast-mode signatures in the background
	warmup := services.NewWarmupService(forecastService, cfg.Forecast.WarmSignatures, logger)
	go warmup.Warm(context.Background())

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))

	forecastHandler := handlers.NewForecastHandler(forecastService, logger)
	api.SetupRoutes(router, forecastHandler, db, redisClient)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
