package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/robfig/cron/v3"
)

// MonthIndex caches the discovered month list for a long-running process and
// refreshes it on a cron schedule.
type MonthIndex struct {
	loader *Loader
	logger *slog.Logger

	mu        sync.RWMutex
	months    []string
	refreshed bool

	cron *cron.Cron
}

// NewMonthIndex creates an empty index. Call Refresh or Start to populate it.
func NewMonthIndex(loader *Loader, logger *slog.Logger) *MonthIndex {
	return &MonthIndex{loader: loader, logger: logger}
}

// Refresh rediscovers the available months and swaps them in.
func (x *MonthIndex) Refresh(ctx context.Context) []string {
	months := x.loader.AvailableMonths(ctx)

	x.mu.Lock()
	x.months = months
	x.refreshed = true
	x.mu.Unlock()

	return slices.Clone(months)
}

// Months returns a copy of the last discovered month list.
func (x *MonthIndex) Months() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return slices.Clone(x.months)
}

// Start schedules periodic refreshes. An empty schedule disables them.
func (x *MonthIndex) Start(schedule string) error {
	if schedule == "" {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		months := x.Refresh(context.Background())
		x.logger.Debug("month index refreshed", "months", months)
	}); err != nil {
		return fmt.Errorf("schedule month refresh %q: %w", schedule, err)
	}
	c.Start()

	x.mu.Lock()
	x.cron = c
	x.mu.Unlock()
	x.logger.Info("month refresh scheduled", "schedule", schedule)
	return nil
}

// Stop halts scheduled refreshes and waits for a running one to finish.
func (x *MonthIndex) Stop() {
	x.mu.RLock()
	c := x.cron
	x.mu.RUnlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
}

// CheckReadiness reports ready once the first discovery has completed.
func (x *MonthIndex) CheckReadiness(_ context.Context) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if !x.refreshed {
		return errors.New("month index not loaded")
	}
	return nil
}

// Indexed serves the month list from a MonthIndex and every dataset from the
// embedded Loader.
type Indexed struct {
	*Loader
	Index *MonthIndex
}

// AvailableMonths returns the cached month list.
func (i Indexed) AvailableMonths(_ context.Context) []string {
	return i.Index.Months()
}
