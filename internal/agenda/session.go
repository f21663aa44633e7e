package agenda

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/couchcryptid/burgos-civicos/internal/domain"
	"golang.org/x/sync/errgroup"
)

// ErrSuperseded is returned by ChangeMonth when a later month change finished
// first and the result was discarded.
var ErrSuperseded = errors.New("month change superseded")

// Filter field names accepted by ChangeFilter.
const (
	FieldCivico      = "civico"
	FieldFecha       = "fecha"
	FieldPublico     = "publico"
	FieldInscripcion = "inscripcion"
)

// Catalog is the data the session displays. catalog.Loader and
// catalog.Indexed satisfy it.
type Catalog interface {
	AvailableMonths(ctx context.Context) []string
	LoadCivicos(ctx context.Context) map[string]domain.Civico
	LoadActivitiesForMonth(ctx context.Context, month string) domain.MonthActivities
	LoadLinksForMonth(ctx context.Context, month string) map[string]string
}

// State is everything the session knows. Snapshot returns a copy.
type State struct {
	Months       []string
	CurrentMonth string
	Civicos      map[string]domain.Civico
	Activities   []domain.Activity
	Links        map[string]string
	Filters      domain.Filters
	Today        string
}

// Filtered applies the current filters to the month's activities.
func (s State) Filtered() []domain.Activity {
	return domain.ApplyFilters(s.Activities, s.Filters)
}

// Session drives one viewer: it loads data, keeps State and renders it
// through a View. A session serves a single caller; month changes may overlap
// and the most recently requested one wins.
type Session struct {
	catalog Catalog
	view    View
	logger  *slog.Logger

	mu         sync.Mutex
	state      State
	generation uint64
}

// NewSession creates a session with the given starting filters. today is the
// "YYYY-MM-DD" date the filters were defaulted from.
func NewSession(catalog Catalog, view View, filters domain.Filters, today string, logger *slog.Logger) *Session {
	return &Session{
		catalog: catalog,
		view:    view,
		logger:  logger,
		state: State{
			Filters: filters,
			Today:   today,
		},
	}
}

// Init loads centers and months concurrently, picks month (or the most recent
// one when month is empty or unavailable) and renders the whole page.
func (s *Session) Init(ctx context.Context, month string) error {
	var (
		civicos map[string]domain.Civico
		months  []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		civicos = s.catalog.LoadCivicos(gctx)
		return nil
	})
	g.Go(func() error {
		months = s.catalog.AvailableMonths(gctx)
		return nil
	})
	_ = g.Wait() // loaders degrade instead of failing

	if err := ctx.Err(); err != nil {
		s.view.RenderError("Error al cargar la aplicación")
		return err
	}

	s.mu.Lock()
	s.state.Civicos = civicos
	s.state.Months = months
	s.mu.Unlock()

	if len(months) == 0 {
		s.logger.Warn("no activity months available")
		s.view.RenderNoData()
		return nil
	}

	if !slices.Contains(months, month) {
		month = months[0]
	}

	s.mu.Lock()
	s.view.RenderMonths(slices.Clone(months), month)
	s.mu.Unlock()

	return s.ChangeMonth(ctx, month)
}

// ChangeMonth loads activities and links for month and re-renders the filter
// options and the list. If another ChangeMonth starts before this one
// finishes, this result is dropped and ErrSuperseded is returned.
func (s *Session) ChangeMonth(ctx context.Context, month string) error {
	if month == "" {
		return nil
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	var (
		data  domain.MonthActivities
		links map[string]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data = s.catalog.LoadActivitiesForMonth(gctx, month)
		return nil
	})
	g.Go(func() error {
		links = s.catalog.LoadLinksForMonth(gctx, month)
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug("discarding stale month load", "month", month)
		return ErrSuperseded
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.state.CurrentMonth = month
	s.state.Activities = domain.Normalize(data)
	s.state.Links = links

	s.view.RenderFilters(domain.UniqueCivicos(s.state.Activities), s.state.Civicos, s.state.Filters)
	s.renderList()
	return nil
}

// ChangeFilter sets one filter field and re-renders the list. Unknown fields
// are ignored.
func (s *Session) ChangeFilter(field, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case FieldCivico:
		s.state.Filters.Civico = value
	case FieldFecha:
		s.state.Filters.Fecha = value
	case FieldPublico:
		s.state.Filters.Publico = value
	case FieldInscripcion:
		s.state.Filters.Inscripcion = value
	default:
		s.logger.Debug("ignoring unknown filter field", "field", field)
		return
	}
	s.renderList()
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Months = slices.Clone(st.Months)
	st.Activities = slices.Clone(st.Activities)
	return st
}

// renderList must be called with mu held.
func (s *Session) renderList() {
	s.view.RenderActivities(s.state.Filtered(), s.state.Civicos, s.state.Links)
}
