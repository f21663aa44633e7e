package http_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/burgos-civicos/internal/adapter/http"
	"github.com/couchcryptid/burgos-civicos/internal/domain"
	"github.com/couchcryptid/burgos-civicos/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type stubCatalog struct {
	months []string
}

func (c stubCatalog) AvailableMonths(context.Context) []string { return c.months }

func (stubCatalog) LoadCivicos(context.Context) map[string]domain.Civico {
	return map[string]domain.Civico{
		"capiscol":      {Nombre: "Centro Cívico Capiscol", Telefono: "947 288 817"},
		"gamonal_norte": {Nombre: "Centro Cívico Gamonal Norte"},
	}
}

func (stubCatalog) LoadActivitiesForMonth(_ context.Context, month string) domain.MonthActivities {
	if month != "202503" {
		return nil
	}
	return domain.MonthActivities{
		{Civico: "gamonal_norte", Activities: []domain.Activity{
			{Nombre: "Taller de cerámica", Fecha: "03/03/2025", FechaFin: "28/03/2025", Publico: "Adultos", RequiereInscripcion: true},
		}},
		{Civico: "capiscol", Activities: []domain.Activity{
			{Nombre: "Cuentacuentos", Fecha: "12/03/2025", Publico: "Infantil"},
		}},
	}
}

func (stubCatalog) LoadLinksForMonth(context.Context, string) map[string]string {
	return map[string]string{"capiscol": "https://example.org/c.pdf"}
}

type testEnv struct {
	srv     *httpadapter.Server
	metrics *observability.Metrics
}

func newTestEnv(t *testing.T, months []string, readyErr error) testEnv {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	m := observability.NewMetricsForTesting()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httpadapter.NewServer(":0", stubCatalog{months: months}, &mockReadiness{err: readyErr}, time.UTC, m, logger)
	return testEnv{srv: srv, metrics: m}
}

func get(srv http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	assert.Equal(t, http.StatusOK, get(env.srv, "/healthz").Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	assert.Equal(t, http.StatusOK, get(env.srv, "/readyz").Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	env := newTestEnv(t, nil, fmt.Errorf("month index not loaded"))
	assert.Equal(t, http.StatusServiceUnavailable, get(env.srv, "/readyz").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	rec := get(env.srv, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestPage_DefaultsToToday(t *testing.T) {
	env := newTestEnv(t, []string{"202503"}, nil)
	rec := get(env.srv, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `value="2025-03-12"`)
	assert.Contains(t, body, "Taller de cerámica")
	assert.Contains(t, body, "Cuentacuentos")
	assert.InDelta(t, 1, testutil.ToFloat64(env.metrics.PagesRendered.WithLabelValues("ok")), 0)
}

func TestPage_ExplicitEmptyDateDisablesDateFilter(t *testing.T) {
	env := newTestEnv(t, []string{"202503"}, nil)
	body := get(env.srv, "/?fecha=&publico=INFANTIL").Body.String()

	assert.Contains(t, body, `value=""`)
	assert.Contains(t, body, "Cuentacuentos")
	assert.NotContains(t, body, "Taller de cerámica")
}

func TestPage_DateOutsideEveryActivity(t *testing.T) {
	env := newTestEnv(t, []string{"202503"}, nil)
	body := get(env.srv, "/?fecha=2025-03-30").Body.String()

	assert.Contains(t, body, domain.TextNoMatches)
}

func TestPage_FiltersByCenterAndRegistration(t *testing.T) {
	env := newTestEnv(t, []string{"202503"}, nil)
	body := get(env.srv, "/?fecha=&civico=gamonal_norte&inscripcion=true").Body.String()

	assert.Contains(t, body, "Taller de cerámica")
	assert.NotContains(t, body, "Cuentacuentos")
	assert.Contains(t, body, `<option value="gamonal_norte" selected>`)
}

func TestPage_NoData(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	rec := get(env.srv, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.TextNoData)
	assert.InDelta(t, 1, testutil.ToFloat64(env.metrics.PagesRendered.WithLabelValues("no_data")), 0)
}

func TestPage_UnknownPathIs404(t *testing.T) {
	env := newTestEnv(t, []string{"202503"}, nil)
	assert.Equal(t, http.StatusNotFound, get(env.srv, "/admin").Code)
}

func TestPage_RequestID(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := get(env.srv, "/healthz")
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestICS_Export(t *testing.T) {
	env := newTestEnv(t, []string{"202503"}, nil)
	rec := get(env.srv, "/actividades.ics?mes=202503&fecha=&civico=capiscol")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "actividades_202503.ics")

	body := rec.Body.String()
	assert.Equal(t, 1, strings.Count(body, "BEGIN:VEVENT"))
	assert.Contains(t, body, "SUMMARY:Cuentacuentos")
	assert.Contains(t, body, "URL:https://example.org/c.pdf")
}

func TestICS_NoData(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	assert.Equal(t, http.StatusNotFound, get(env.srv, "/actividades.ics").Code)
}
