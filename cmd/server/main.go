// Package main is the entry point for the Minty dashboard service.
// It serves the stock and portfolio dashboards: views are mounted over HTTP,
// refreshed on timers and streamed to browsers as chart and section events.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/minty/internal/config"
	"github.com/aristath/minty/internal/di"
	"github.com/aristath/minty/internal/server"
	"github.com/aristath/minty/pkg/logger"
)

// main loads configuration, wires dependencies, starts the scheduler and the
// HTTP server, then waits for a shutdown signal
func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting Minty")

	// Wire all dependencies using DI container
	container, _, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.CacheDB.Close()

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		Container: container,
	})

	// View timers and the cache sweep run on the shared scheduler
	container.Scheduler.Start()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Unmount every view so its timers are removed and charts destroyed
	container.Registry.CloseAll()
	container.Scheduler.Stop()
	log.Info().Msg("Scheduler stopped")

	log.Info().Msg("Server stopped")
}
