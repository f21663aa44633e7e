package domain

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentProbes bounds the number of in-flight existence checks.
const maxConcurrentProbes = 4

// MonthChecker reports whether the activity dataset for a month exists.
type MonthChecker interface {
	MonthExists(ctx context.Context, month string) (bool, error)
}

// MonthCheckerFunc adapts a function to MonthChecker.
type MonthCheckerFunc func(ctx context.Context, month string) (bool, error)

// MonthExists calls f.
func (f MonthCheckerFunc) MonthExists(ctx context.Context, month string) (bool, error) {
	return f(ctx, month)
}

// MonthWindow returns the keys of the size months ending at now's month, most
// recent first.
func MonthWindow(now time.Time, size int) []string {
	if size <= 0 {
		return nil
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	keys := make([]string, 0, size)
	for i := range size {
		keys = append(keys, MonthKey(first.AddDate(0, -i, 0)))
	}
	return keys
}

// DiscoverMonths probes every month in the trailing window and returns the ones
// that exist, sorted descending. Probes that fail are treated as absent.
func DiscoverMonths(ctx context.Context, now time.Time, window int, checker MonthChecker) []string {
	candidates := MonthWindow(now, window)

	var (
		mu    sync.Mutex
		found = make([]string, 0, len(candidates))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentProbes)
	for _, month := range candidates {
		g.Go(func() error {
			ok, err := checker.MonthExists(gctx, month)
			if err != nil || !ok {
				return nil
			}
			mu.Lock()
			found = append(found, month)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // probes never return errors

	slices.Sort(found)
	slices.Reverse(found)
	return found
}
