// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/formweave/formweave-go/internal/application/container"
	"github.com/formweave/formweave-go/internal/infrastructure/database"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/logging"
	persistence "github.com/formweave/formweave-go/internal/infrastructure/persistence/database"
	"github.com/formweave/formweave-go/internal/infrastructure/security"
	"github.com/formweave/formweave-go/internal/presentation/http/server"
	"github.com/formweave/formweave-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// Initialize performs the complete startup sequence
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	// Step 1: Channeled logger
	loggerConfig := logging.DefaultLoggerConfig()
	loggerConfig.OutputToFile = config.LogToFile
	loggerConfig.JSONFormat = config.LogJSONFormat
	loggerConfig.LogDirectory = config.LogDirectory
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		loggerConfig.DefaultLevel = logging.ParseLevel(level)
	}
	logger, err := logging.NewChanneledLogger(loggerConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Startup().Info("Channeled logger initialized")

	// Step 2: Database connection and schema
	dbStart := time.Now()
	db, err := persistence.NewConnectionWithLogger(config.DBDriver, config.DBPath, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.NewTableCreator().CreateSchema(db.DB); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	logger.LogStartupPhase("database", time.Since(dbStart), true)

	// Step 3: Auth signing key
	if config.JWTSecret == "" {
		key, err := security.GenerateSigningKey(64)
		if err != nil {
			return fmt.Errorf("failed to generate signing key: %w", err)
		}
		config.JWTSecret = key
		logger.Auth().Warn("JWT_SECRET not set, generated an ephemeral signing key; editor tokens will not survive restarts")
	}

	// Step 4: Dependency injection container
	appContainer := container.NewContainer(db, logger)
	logger.Startup().Info("Dependency injection container created with singleton services")

	// Step 5: Load form definitions
	formsStart := time.Now()
	if err := appContainer.FormService.LoadAll(); err != nil {
		logger.LogStartupPhase("form_definitions", time.Since(formsStart), false)
		return fmt.Errorf("failed to load form definitions: %w", err)
	}
	logger.LogStartupPhase("form_definitions", time.Since(formsStart), true)

	// Step 6: Session sweeper
	appContainer.SessionStore.StartSweeper(config.SessionSweepPeriod)
	logger.Startup().Info("Session sweeper started", "period", config.SessionSweepPeriod)

	// Step 7: HTTP server
	httpServer := server.New(config.Port, appContainer)
	logger.Startup().Info("HTTP server initialized", "port", config.Port)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+config.Port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"forms", len(appContainer.FormService.IDs()),
		"port", config.Port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")
	shutdownStart := time.Now()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	appContainer.SessionStore.StopSweeper()

	if err := db.Close(); err != nil {
		logger.Shutdown().Error("Error closing database", "error", err.Error())
	} else {
		logger.Shutdown().Info("Database closed successfully")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))
	return logger.Close()
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	slog.SetLogLoggerLevel(slog.LevelInfo)
}
