// Command sas runs the folder catalog service: an HTTP API for managing
// per-tenant folders (creation, ownership, metadata tags, lazily cached
// sizes) on top of a hierarchical storage backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fredcicles/sas/internal/api"
	"github.com/fredcicles/sas/internal/logger"
	"github.com/fredcicles/sas/pkg/catalog"
	"github.com/fredcicles/sas/pkg/config"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: "+config.GetDefaultConfigPath()+")")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "sas: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := setupLogging(&cfg.Logging); err != nil {
		return err
	}

	logger.Info("Starting folder catalog service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage backend
	st, err := config.CreateStore(ctx, &cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	if closer, ok := st.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Error("Store close error: %v", err)
			}
		}()
	}
	logger.Info("Store initialized: type=%s", cfg.Store.Type)

	// Metrics (optional)
	metricsResult := config.InitializeMetrics(cfg)

	// Catalog core
	cat := catalog.New(st, catalog.Config{
		CostPerTerabyte: cfg.Catalog.CostPerTerabyte,
		SizeMaxAge:      cfg.Catalog.SizeMaxAge,
	}, metricsResult.CatalogMetrics)

	// API server
	server := api.NewServer(api.ServerConfig{
		ListenAddress:      cfg.Server.ListenAddress,
		ShutdownTimeout:    cfg.Server.ShutdownTimeout,
		RequestsPerSecond:  cfg.Server.RateLimit.RequestsPerSecond,
		Burst:              cfg.Server.RateLimit.Burst,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	}, cat)

	errChan := make(chan error, 2)

	if metricsResult.Server != nil {
		go func() {
			if err := metricsResult.Server.Start(ctx); err != nil {
				errChan <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	go func() {
		if err := server.Start(ctx); err != nil {
			errChan <- fmt.Errorf("api server: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Received signal %v, initiating graceful shutdown", sig)
	case err := <-errChan:
		logger.Error("Server error: %v", err)
		cancel()
		return err
	}

	// Cancelling the context makes both servers drain and stop.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		return err
	}
	if metricsResult.Server != nil {
		if err := metricsResult.Server.Stop(shutdownCtx); err != nil {
			return err
		}
	}

	logger.Info("Shutdown complete")
	return nil
}

// setupLogging applies the logging configuration to the process logger.
func setupLogging(cfg *config.LoggingConfig) error {
	logger.SetLevel(cfg.Level)

	switch cfg.Output {
	case "", "stdout":
		logger.SetOutput(os.Stdout)
	case "stderr":
		logger.SetOutput(os.Stderr)
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
		}
		logger.SetOutput(f)
	}

	return nil
}
