// Command listado prints one month of civic-center activities to the terminal.
//
// Usage:
//
//	go run ./cmd/listado -mes 202503 -civico capiscol -publico infantil
//
// Without -fecha the listing shows today's activities; pass -fecha "" to list
// the whole month.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/couchcryptid/burgos-civicos/internal/adapter/dataset"
	"github.com/couchcryptid/burgos-civicos/internal/agenda"
	"github.com/couchcryptid/burgos-civicos/internal/catalog"
	"github.com/couchcryptid/burgos-civicos/internal/config"
	"github.com/couchcryptid/burgos-civicos/internal/domain"
	"github.com/couchcryptid/burgos-civicos/internal/observability"
	"github.com/couchcryptid/burgos-civicos/internal/render"
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

	defaults := agenda.DefaultFilters(cfg.Location)
	month := flag.String("mes", "", "month to list as YYYYMM (default: most recent)")
	civico := flag.String("civico", "", "center id, e.g. capiscol")
	fecha := flag.String("fecha", defaults.Fecha, "date as YYYY-MM-DD; empty lists the whole month")
	publico := flag.String("publico", "", "audience text to match")
	inscripcion := flag.String("inscripcion", "", `"true" or "false" to filter by registration`)
	flag.Parse()

	switch *inscripcion {
	case "", "true", "false":
	default:
		fmt.Fprintf(os.Stderr, "invalid -inscripcion %q: use true or false\n", *inscripcion)
		os.Exit(2)
	}

	// Logs go to stderr so they never mix with the listing.
	cfg.LogFormat = "text"
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "warn"
	}
	logger := observability.NewLoggerTo(os.Stderr, cfg)

	// One-shot run: metrics are collected but never scraped.
	metrics := observability.NewUnregisteredMetrics()

	client, err := dataset.NewClient(cfg.DataBaseURL, cfg.FetchTimeout, metrics, logger)
	if err != nil {
		logger.Error("failed to create dataset client", "error", err)
		os.Exit(1)
	}
	loader := catalog.NewLoader(client, cfg.MonthWindow, cfg.Location, metrics, logger)

	filters := domain.Filters{
		Civico:      *civico,
		Fecha:       *fecha,
		Publico:     *publico,
		Inscripcion: *inscripcion,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := agenda.NewSession(loader, render.NewTextView(os.Stdout), filters, defaults.Fecha, logger)
	if err := session.Init(ctx, *month); err != nil {
		os.Exit(1)
	}
	if st := session.Snapshot(); len(st.Months) == 0 {
		os.Exit(1)
	}
}
