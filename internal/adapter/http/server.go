package http

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/burgos-civicos/internal/agenda"
	"github.com/couchcryptid/burgos-civicos/internal/domain"
	"github.com/couchcryptid/burgos-civicos/internal/observability"
	"github.com/couchcryptid/burgos-civicos/internal/render"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const headerRequestID = "X-Request-ID"

type ctxKey struct{}

// Server renders the agenda page and calendar export, and exposes health,
// readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	catalog    agenda.Catalog
	loc        *time.Location
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /, /actividades.ics, /healthz, /readyz,
// and /metrics routes. "Today" is computed in loc.
func NewServer(addr string, catalog agenda.Catalog, ready sharedobs.ReadinessChecker, loc *time.Location, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		catalog: catalog,
		loc:     loc,
		metrics: metrics,
		logger:  logger,
	}

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /actividades.ics", s.handleICS)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer.Handler = s.withRequestID(mux)
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	logger := s.requestLogger(r)
	q := r.URL.Query()

	view := render.NewHTMLView()
	session := agenda.NewSession(s.catalog, view, filtersFromQuery(q, s.loc), domain.Today(s.loc), logger)
	if err := session.Init(r.Context(), q.Get("mes")); err != nil {
		logger.Warn("page load interrupted", "error", err)
	}

	var buf bytes.Buffer
	if _, err := view.WriteTo(&buf); err != nil {
		s.metrics.PagesRendered.WithLabelValues(render.OutcomeError).Inc()
		logger.Error("failed to render page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.metrics.PagesRendered.WithLabelValues(view.Outcome()).Inc()
	s.metrics.FilteredActivity.Observe(float64(view.Count()))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}

func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	logger := s.requestLogger(r)
	q := r.URL.Query()

	session := agenda.NewSession(s.catalog, discardView{}, filtersFromQuery(q, s.loc), domain.Today(s.loc), logger)
	if err := session.Init(r.Context(), q.Get("mes")); err != nil {
		http.Error(w, "request canceled", http.StatusServiceUnavailable)
		return
	}

	st := session.Snapshot()
	if st.CurrentMonth == "" {
		http.Error(w, domain.TextNoData, http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := render.WriteICS(&buf, st.CurrentMonth, st.Filtered(), st.Civicos, st.Links, domain.Now(s.loc)); err != nil {
		logger.Error("failed to render calendar", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=actividades_%s.ics", st.CurrentMonth))
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}

// filtersFromQuery reads the filter keys. A missing fecha key means today; an
// empty one means no date filter.
func filtersFromQuery(q url.Values, loc *time.Location) domain.Filters {
	f := agenda.DefaultFilters(loc)
	f.Civico = q.Get("civico")
	f.Publico = q.Get("publico")
	if q.Has("fecha") {
		f.Fecha = q.Get("fecha")
	}
	switch v := q.Get("inscripcion"); v {
	case "true", "false":
		f.Inscripcion = v
	}
	return f
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
		s.logger.Debug("request served",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) requestLogger(r *http.Request) *slog.Logger {
	if id, ok := r.Context().Value(ctxKey{}).(string); ok {
		return s.logger.With("request_id", id)
	}
	return s.logger
}

type discardView struct{}

func (discardView) RenderMonths([]string, string) {}
func (discardView) RenderFilters([]string, map[string]domain.Civico, domain.Filters) {}
func (discardView) RenderActivities([]domain.Activity, map[string]domain.Civico, map[string]string) {}
func (discardView) RenderNoData() {}
func (discardView) RenderError(string) {}
