package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/labtrack/labtrack/internal/adapter/http"
	"github.com/labtrack/labtrack/internal/app"
	"github.com/labtrack/labtrack/internal/config"
	"github.com/labtrack/labtrack/internal/domain"
)

// Version information
var Version = "development"

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize structured logger
	structuredLogger := app.NewLogger(cfg, "labtrack-server")
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"version": Version,
		"env":     cfg.Server.Environment,
	})

	application, err := app.Open(ctx, cfg, structuredLogger)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to initialize application", err, nil)
		os.Exit(1)
	}
	defer application.Close()

	if cfg.Admin.Password != "" {
		if _, err := application.UseCases.Users.SeedAdministrator(ctx, cfg.Admin.Login, cfg.Admin.Password); err != nil {
			structuredLogger.Warn(ctx, "Administrator not seeded", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		CORSOrigins:    cfg.Server.CORSOrigins,
		DefaultActor:   domain.PrimordialAdministratorID,
		MetricsEnabled: cfg.Metrics.Enabled,
	}, application.Services(), structuredLogger)
	server.RegisterOnShutdown(application.StopStreams)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			structuredLogger.Error(ctx, "Server failed to start", err, map[string]interface{}{
				"host": cfg.Server.Host,
				"port": cfg.Server.Port,
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Server forced to shutdown", err, nil)
	}
	structuredLogger.Info(ctx, "Server exited", nil)
}
