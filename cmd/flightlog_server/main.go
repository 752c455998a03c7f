package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"

	"github.com/lucasjlepore/flightlog-analyzer/internal/config"
	"github.com/lucasjlepore/flightlog-analyzer/internal/handlers"
	"github.com/lucasjlepore/flightlog-analyzer/internal/logging"
	"github.com/lucasjlepore/flightlog-analyzer/internal/metrics"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "Optional KEY=VALUE config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("flightlog-api", version, logging.ParseLevel(cfg.LogLevel))

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting flight log API server", logging.Fields{
		"version":          version,
		"server_host":      cfg.Host,
		"server_port":      cfg.Port,
		"max_upload_bytes": cfg.MaxUploadBytes,
		"series_format":    cfg.SeriesFormat,
	})

	metricsCollector := metrics.NewCollector(cfg.MetricsNamespace)

	router := mux.NewRouter()
	handlers.NewFlightHandler(cfg, logger, metricsCollector).RegisterRoutes(router)
	router.Handle("/metrics", metricsCollector.Handler())

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		logger.Error(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		os.Exit(1)
	}

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
