package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/maisonhub/sentinel/internal/app"
	"github.com/maisonhub/sentinel/internal/config"
	internalHTTP "github.com/maisonhub/sentinel/internal/http"
)

// RunServer starts the HTTP server with graceful shutdown support.
// Loads configuration, initializes the DI container, warms up the device
// registry from the durable store, and starts the event writer, the sweeper
// and the HTTP servers. Blocks until receiving SIGINT/SIGTERM or encountering
// a fatal error.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))

	defer closeContainer(container, logger)

	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	recorder, err := container.EventRecorder()
	if err != nil {
		return fmt.Errorf("failed to initialize event recorder: %w", err)
	}

	registry, err := container.DeviceRegistry()
	if err != nil {
		return fmt.Errorf("failed to initialize device registry: %w", err)
	}

	backgroundSweeper, err := container.Sweeper()
	if err != nil {
		return fmt.Errorf("failed to initialize sweeper: %w", err)
	}

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Reload the trusted device registry before accepting traffic.
	if cfg.DBEnabled {
		if err := registry.WarmUp(ctx); err != nil {
			return fmt.Errorf("failed to warm up device registry: %w", err)
		}
	}

	// Start background workers. Both run until the shutdown context is
	// cancelled.
	workers, workersCtx := errgroup.WithContext(ctx)
	workers.Go(func() error {
		return recorder.Start(workersCtx)
	})
	workers.Go(func() error {
		return backgroundSweeper.Run(workersCtx)
	})
	defer func() {
		if err := workers.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("background worker stopped", slog.Any("error", err))
		}
	}()

	// Start servers in goroutines
	serverErr := make(chan error, 2)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErr <- fmt.Errorf("api server error: %w", err)
		}
	}()

	if metricsServer != nil {
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				serverErr <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		return shutdownServers(server, metricsServer, cfg, nil)
	case err := <-serverErr:
		logger.Error("server error, initiating shutdown", slog.Any("error", err))
		return shutdownServers(server, metricsServer, cfg, err)
	}
}

// shutdownServers stops both servers within the configured timeout and joins
// any errors with the optional cause.
func shutdownServers(
	server *internalHTTP.Server,
	metricsServer *internalHTTP.MetricsServer,
	cfg *config.Config,
	cause error,
) error {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.DBConnMaxLifetime)
	defer shutdownCancel()

	var shutdownErrors []error
	if cause != nil {
		shutdownErrors = append(shutdownErrors, cause)
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		shutdownErrors = append(shutdownErrors, fmt.Errorf("api server shutdown: %w", err))
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return errors.Join(shutdownErrors...)
	}
	return nil
}
