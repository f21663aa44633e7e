// Package catalog loads the published activity datasets for display. Every
// loader method degrades to an empty value on failure so that one missing or
// broken file never takes the page down.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/burgos-civicos/internal/domain"
	"github.com/couchcryptid/burgos-civicos/internal/observability"
)

// Loader reads datasets from a domain.DatasetSource and never returns errors.
type Loader struct {
	source  domain.DatasetSource
	window  int
	loc     *time.Location
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewLoader creates a loader that discovers months in a trailing window of the
// given size, measured from today in loc.
func NewLoader(source domain.DatasetSource, window int, loc *time.Location, metrics *observability.Metrics, logger *slog.Logger) *Loader {
	return &Loader{
		source:  source,
		window:  window,
		loc:     loc,
		metrics: metrics,
		logger:  logger,
	}
}

// AvailableMonths returns the months with a published activity file, most
// recent first.
func (l *Loader) AvailableMonths(ctx context.Context) []string {
	checker := domain.MonthCheckerFunc(func(ctx context.Context, month string) (bool, error) {
		ok, err := l.source.MonthExists(ctx, month)
		if err != nil {
			l.logger.Debug("month probe failed", "month", month, "error", err)
		}
		return ok, err
	})

	months := domain.DiscoverMonths(ctx, domain.Now(l.loc), l.window, checker)
	l.metrics.MonthsAvailable.Set(float64(len(months)))
	l.logger.Info("months discovered", "count", len(months), "window", l.window)
	return months
}

// LoadCivicos returns the center directory, or an empty map on failure.
func (l *Loader) LoadCivicos(ctx context.Context) map[string]domain.Civico {
	civicos, err := l.source.Civicos(ctx)
	if err != nil {
		l.logger.Error("failed to load civicos", "error", err)
		return map[string]domain.Civico{}
	}
	if civicos == nil {
		return map[string]domain.Civico{}
	}
	return civicos
}

// LoadActivitiesForMonth returns the raw per-center activity blocks for month,
// or nil on failure.
func (l *Loader) LoadActivitiesForMonth(ctx context.Context, month string) domain.MonthActivities {
	data, err := l.source.Activities(ctx, month)
	if err != nil {
		l.logger.Warn("failed to load activities", "month", month, "error", err)
		return nil
	}
	return data
}

// LoadLinksForMonth returns center id -> PDF URL for month. A month without a
// links file is normal and yields an empty map.
func (l *Loader) LoadLinksForMonth(ctx context.Context, month string) map[string]string {
	set, err := l.source.Links(ctx, month)
	switch {
	case errors.Is(err, domain.ErrDatasetNotFound):
		l.logger.Debug("no links for month", "month", month)
		return map[string]string{}
	case err != nil:
		l.logger.Warn("failed to load links", "month", month, "error", err)
		return map[string]string{}
	}
	return set.ByCivico()
}

// ExtractActivities loads and flattens the activities of month. Unlike the
// Load methods it reports failures, for jobs that must not act on a missing
// month.
func (l *Loader) ExtractActivities(ctx context.Context, month string) ([]domain.Activity, error) {
	data, err := l.source.Activities(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("extract activities %s: %w", month, err)
	}
	return domain.Normalize(data), nil
}
