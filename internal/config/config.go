package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without zoneinfo

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const (
	defaultMonthWindow = 12
	maxMonthWindow     = 24
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataBaseURL  string
	MonthWindow  int
	FetchTimeout time.Duration
	Location     *time.Location

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Cron spec for rediscovering months. Empty disables the refresh.
	MonthsRefreshSchedule string

	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	window, err := parseMonthWindow(sharedcfg.EnvOrDefault("MONTH_WINDOW", strconv.Itoa(defaultMonthWindow)))
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("FETCH_TIMEOUT", "0s"))
	if err != nil || fetchTimeout < 0 {
		return nil, errors.New("invalid FETCH_TIMEOUT")
	}

	tz := sharedcfg.EnvOrDefault("TIMEZONE", "Europe/Madrid")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	cfg := &Config{
		DataBaseURL:     strings.TrimSpace(sharedcfg.EnvOrDefault("DATA_BASE_URL", "./data")),
		MonthWindow:     window,
		FetchTimeout:    fetchTimeout,
		Location:        loc,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		MonthsRefreshSchedule: refreshSchedule(),

		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "civic-activities"),
	}

	if cfg.DataBaseURL == "" {
		return nil, errors.New("DATA_BASE_URL is required")
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}

func parseMonthWindow(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > maxMonthWindow {
		return 0, fmt.Errorf("invalid MONTH_WINDOW %q: must be between 1 and %d", s, maxMonthWindow)
	}
	return n, nil
}

// refreshSchedule distinguishes an unset variable (default) from one set to
// the empty string (disabled).
func refreshSchedule() string {
	const def = "@every 1h"
	v, ok := os.LookupEnv("MONTHS_REFRESH_SCHEDULE")
	if !ok {
		return def
	}
	return strings.TrimSpace(v)
}
