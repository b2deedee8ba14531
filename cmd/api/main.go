package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"go-motion-inspector/internal/config"
	"go-motion-inspector/internal/container"
	"go-motion-inspector/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load config")
	}

	motionCfg, err := config.LoadMotionConfig(cfg.MotionConfigFile)
	if err != nil {
		logger.WithError(err).WithField("file", cfg.MotionConfigFile).Fatal("Failed to load motion config")
	}

	// Initialize dependency injection container
	c, err := container.NewContainer(cfg, motionCfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize container")
	}

	ctx, stop := context.WithCancel(context.Background())
	c.Start(ctx)

	// Create HTTP server with configurable timeouts. The event stream is
	// long lived so there is no write timeout.
	server := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           c.Handler(),
		ReadHeaderTimeout: cfg.RequestTimeout,
		ReadTimeout:       cfg.RequestTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.WithFields(logrus.Fields{
			"address": cfg.ServerAddress(),
			"timeout": cfg.RequestTimeout,
			"camera":  motionCfg.Camera.Type,
			"archive": motionCfg.Archive.Type,
		}).Info("Starting HTTP server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")
	stop()

	// Create a deadline for shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	c.Close()

	logger.Logger.Info("Server exited")
}
