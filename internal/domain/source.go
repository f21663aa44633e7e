package domain

import (
	"context"
	"errors"
)

// DatasetSource fetches the raw datasets published for the activity calendar.
// Implementations return errors; degrading to empty results is the loader's job.
type DatasetSource interface {
	MonthChecker

	// Civicos fetches civicos.json.
	Civicos(ctx context.Context) (map[string]Civico, error)

	// Activities fetches <month>/actividades.json.
	Activities(ctx context.Context, month string) (MonthActivities, error)

	// Links fetches <month>/links.json.
	Links(ctx context.Context, month string) (LinkSet, error)
}

// ErrDatasetNotFound is returned by a DatasetSource when the requested file does
// not exist.
var ErrDatasetNotFound = errors.New("dataset not found")
