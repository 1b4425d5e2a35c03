package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orchard-bridge/config"
	"orchard-bridge/database"
	"orchard-bridge/deadletter"
	"orchard-bridge/handlers"
	"orchard-bridge/mqtt"
	"orchard-bridge/redis"
	"orchard-bridge/services"
	"orchard-bridge/utils"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.NewLogger(cfg.LogLevel)

	// Initialize database
	db, err := database.NewDatabase(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis
	redisClient, err := redis.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer redisClient.Close()

	// Dead-letter sink drains asynchronously; close it after MQTT stops.
	sink := deadletter.NewSink(db.DeadLetterRepo, logger)

	resolver := services.NewIdentityResolver(db.SensorRepo, redisClient, logger)
	gateway := mqtt.NewGateway(db, resolver, sink, logger)

	// Initialize MQTT client
	mqttClient, err := mqtt.NewClient(cfg, gateway, logger)
	if err != nil {
		log.Fatalf("Failed to initialize MQTT client: %v", err)
	}

	// Initialize services
	statusService := services.NewStatusService(db, redisClient, logger)
	snapshotService := services.NewSnapshotService(db, cfg.SnapshotWorkers, logger)
	farmService := services.NewFarmService(db, logger)

	// Initialize handlers
	apiHandler := handlers.NewAPIHandler(statusService, snapshotService, farmService)
	handlers.SetErrorLogger(logger)

	// Setup HTTP server
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.CustomHTTPErrorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	apiHandler.RegisterRoutes(e)

	// Start server in goroutine
	go func() {
		logger.Info("Starting HTTP server", "port", cfg.HTTPPort)
		if err := e.Start(":" + cfg.HTTPPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	mqttClient.Disconnect()
	sink.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
