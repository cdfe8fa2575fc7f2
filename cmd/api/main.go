package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lumina-face-analysis/internal/config"
	"lumina-face-analysis/internal/container"
	"lumina-face-analysis/internal/logger"

	"github.com/sirupsen/logrus"
)

func main() {
	if config.LoadDotEnv() {
		// LOG_* may have come from the file
		logger.Configure(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
		logger.Debug("Loaded .env file")
	}

	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load config")
	}

	// Initialize dependency injection container
	c, err := container.NewContainer(context.Background(), cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize container")
	}

	// The long-poll endpoint may hold a response for AwaitTimeout
	writeTimeout := cfg.RequestTimeout
	if cfg.AwaitTimeout+5*time.Second > writeTimeout {
		writeTimeout = cfg.AwaitTimeout + 5*time.Second
	}

	server := &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      c.Handler(),
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: writeTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.WithFields(logrus.Fields{
			"address":  cfg.ServerAddress(),
			"timeout":  cfg.RequestTimeout,
			"provider": cfg.AnalysisProvider,
		}).Info("Starting HTTP server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	if err := c.Close(); err != nil {
		logger.WithError(err).Warn("Failed to release analysis client")
	}

	logger.Info("Server exited")
}
