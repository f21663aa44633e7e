// Command publish writes one month of activities to Kafka as a snapshot, one
// message per activity keyed by center id.
//
// Usage:
//
//	KAFKA_BROKERS=localhost:9092 go run ./cmd/publish -mes 202503
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/couchcryptid/burgos-civicos/internal/adapter/dataset"
	"github.com/couchcryptid/burgos-civicos/internal/adapter/kafka"
	"github.com/couchcryptid/burgos-civicos/internal/catalog"
	"github.com/couchcryptid/burgos-civicos/internal/config"
	"github.com/couchcryptid/burgos-civicos/internal/domain"
	"github.com/couchcryptid/burgos-civicos/internal/observability"
	"github.com/couchcryptid/burgos-civicos/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	month := flag.String("mes", "", "month to publish as YYYYMM (default: most recent)")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *month != "" {
		if _, err := domain.FormatMonth(*month); err != nil {
			slog.Error("invalid -mes", "error", err)
			os.Exit(2)
		}
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client, err := dataset.NewClient(cfg.DataBaseURL, cfg.FetchTimeout, metrics, logger)
	if err != nil {
		logger.Error("failed to create dataset client", "error", err)
		os.Exit(1)
	}
	loader := catalog.NewLoader(client, cfg.MonthWindow, cfg.Location, metrics, logger)

	writer := kafka.NewWriter(cfg, logger)
	p := pipeline.New(loader, writer, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	n, runErr := p.Run(ctx, *month, domain.Filters{})

	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if runErr != nil {
		logger.Error("publish failed", "error", runErr)
		os.Exit(1)
	}
	logger.Info("publish complete", "messages", n, "topic", cfg.KafkaTopic)
}
