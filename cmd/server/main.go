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

	"github.com/labstack/echo/v4"

	"tnstc-api/internal/api/routes"
	"tnstc-api/internal/config"
	"tnstc-api/internal/parser"
	"tnstc-api/internal/upstream"
	"tnstc-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	utils.ConfigureLogger(cfg.Logging.Level, cfg.Logging.Format)
	logger := utils.GetLogger()
	logger.Info("Starting TNSTC bus search API")

	// Initialize upstream client
	client, err := upstream.NewClient(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create upstream client")
	}

	// Initialize parser strategy manager
	manager := parser.NewManager(cfg)
	logger.WithField("strategy", cfg.Parser.Strategy).Info("Parser strategy configured")

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Setup routes
	routes.SetupRoutes(e, client, manager)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Error shutting down server")
		}

		logger.Info("Server shutdown complete")
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.WithField("address", address).Info("Server starting")

	if err := e.Start(address); err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
