package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/burgos-civicos/internal/domain"
	"github.com/couchcryptid/burgos-civicos/internal/observability"
)

// ErrNoMonths is returned when no month was given and none is published.
var ErrNoMonths = errors.New("no activity months available")

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Extractor reads the activities published for a month. catalog.Loader
// implements it.
type Extractor interface {
	AvailableMonths(ctx context.Context) []string
	ExtractActivities(ctx context.Context, month string) ([]domain.Activity, error)
}

// BatchLoader writes a snapshot batch to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, activities []domain.PublishedActivity) error
}

// Pipeline publishes one month of activities: extract, filter, load.
type Pipeline struct {
	extractor Extractor
	loader    BatchLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor: e,
		loader:    l,
		logger:    logger,
		metrics:   metrics,
		now:       func() time.Time { return domain.Now(time.UTC) },
	}
}

// Run publishes the activities of month that match filters and returns how
// many were written. An empty month selects the most recent one available.
// Load failures are retried with exponential backoff until ctx is done.
func (p *Pipeline) Run(ctx context.Context, month string, filters domain.Filters) (int, error) {
	p.metrics.PublishRunning.Set(1)
	defer p.metrics.PublishRunning.Set(0)

	if month == "" {
		months := p.extractor.AvailableMonths(ctx)
		if len(months) == 0 {
			return 0, ErrNoMonths
		}
		month = months[0]
	}

	extracted, err := p.extractor.ExtractActivities(ctx, month)
	if err != nil {
		return 0, fmt.Errorf("publish %s: %w", month, err)
	}

	activities := domain.ApplyFilters(extracted, filters)
	batch := domain.Snapshot(month, activities, p.now())
	if filters.IsZero() {
		p.logger.Info("publishing snapshot", "month", month, "activities", len(batch))
	} else {
		p.logger.Info("publishing filtered snapshot", "month", month, "activities", len(batch), "extracted", len(extracted), "filters", filters)
	}

	if len(batch) == 0 {
		return 0, nil
	}

	backoff := initialBackoff
	for {
		err := p.loader.LoadBatch(ctx, batch)
		if err == nil {
			p.metrics.MessagesPublished.Add(float64(len(batch)))
			p.logger.Info("snapshot published", "month", month, "activities", len(batch))
			return len(batch), nil
		}

		p.metrics.PublishErrors.Inc()
		p.logger.Error("load batch failed", "error", err, "batch_size", len(batch), "retry_in", backoff)
		if !sleepWithContext(ctx, backoff) {
			return 0, fmt.Errorf("publish %s: %w", month, errors.Join(ctx.Err(), err))
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
