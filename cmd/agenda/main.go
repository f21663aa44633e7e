// Command agenda serves the civic-center activity agenda as an HTML page,
// with a calendar export and health, readiness, and metrics endpoints.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	httpadapter "github.com/couchcryptid/burgos-civicos/internal/adapter/http"
	"github.com/couchcryptid/burgos-civicos/internal/adapter/dataset"
	"github.com/couchcryptid/burgos-civicos/internal/catalog"
	"github.com/couchcryptid/burgos-civicos/internal/config"
	"github.com/couchcryptid/burgos-civicos/internal/observability"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client, err := dataset.NewClient(cfg.DataBaseURL, cfg.FetchTimeout, metrics, logger)
	if err != nil {
		logger.Error("failed to create dataset client", "error", err)
		os.Exit(1)
	}
	logger.Info("dataset source configured", "base", cfg.DataBaseURL, "window", cfg.MonthWindow, "timezone", cfg.Location.String())

	loader := catalog.NewLoader(client, cfg.MonthWindow, cfg.Location, metrics, logger)
	index := catalog.NewMonthIndex(loader, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, catalog.Indexed{Loader: loader, Index: index}, index, cfg.Location, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Discover months, then keep the index fresh.
	go func() {
		index.Refresh(ctx)
		if err := index.Start(cfg.MonthsRefreshSchedule); err != nil {
			logger.Error("month refresh disabled", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	index.Stop()

	logger.Info("shutdown complete")
}
