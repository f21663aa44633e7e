package agenda

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/couchcryptid/burgos-civicos/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	months     []string
	civicos    map[string]domain.Civico
	activities map[string]domain.MonthActivities
	links      map[string]map[string]string

	// gates, when set for a month, block LoadActivitiesForMonth until closed.
	gates   map[string]chan struct{}
	started chan string
}

func (f *fakeCatalog) AvailableMonths(context.Context) []string { return f.months }

func (f *fakeCatalog) LoadCivicos(context.Context) map[string]domain.Civico { return f.civicos }

func (f *fakeCatalog) LoadActivitiesForMonth(_ context.Context, month string) domain.MonthActivities {
	if f.started != nil {
		f.started <- month
	}
	if gate, ok := f.gates[month]; ok {
		<-gate
	}
	return f.activities[month]
}

func (f *fakeCatalog) LoadLinksForMonth(_ context.Context, month string) map[string]string {
	if l, ok := f.links[month]; ok {
		return l
	}
	return map[string]string{}
}

type fakeView struct {
	mu         sync.Mutex
	months     []string
	current    string
	civicoIDs  []string
	filters    domain.Filters
	activities []domain.Activity
	noData     int
	errors     []string
	listCalls  int
}

func (v *fakeView) RenderMonths(months []string, current string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.months, v.current = months, current
}

func (v *fakeView) RenderFilters(ids []string, _ map[string]domain.Civico, filters domain.Filters) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.civicoIDs, v.filters = ids, filters
}

func (v *fakeView) RenderActivities(list []domain.Activity, _ map[string]domain.Civico, _ map[string]string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.activities = list
	v.listCalls++
}

func (v *fakeView) RenderNoData() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.noData++
}

func (v *fakeView) RenderError(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.errors = append(v.errors, msg)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func act(name, fecha string, inscripcion bool) domain.Activity {
	return domain.Activity{Nombre: name, Fecha: fecha, Publico: "Adultos", RequiereInscripcion: inscripcion}
}

func sampleCatalog() *fakeCatalog {
	return &fakeCatalog{
		months: []string{"202503", "202502"},
		civicos: map[string]domain.Civico{
			"capiscol": {Nombre: "Centro Cívico Capiscol"},
			"huelgas":  {Nombre: "Centro Cívico Huelgas"},
		},
		activities: map[string]domain.MonthActivities{
			"202503": {
				{Civico: "huelgas", Activities: []domain.Activity{act("Yoga", "10/03/2025", true)}},
				{Civico: "capiscol", Activities: []domain.Activity{act("Teatro", "12/03/2025", false)}},
			},
			"202502": {
				{Civico: "capiscol", Activities: []domain.Activity{act("Carnaval", "28/02/2025", false)}},
			},
		},
		links: map[string]map[string]string{
			"202503": {"capiscol": "https://example.org/c.pdf"},
		},
	}
}

func names(list []domain.Activity) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Nombre)
	}
	return out
}

func TestSession_InitSelectsMostRecentMonth(t *testing.T) {
	view := &fakeView{}
	s := NewSession(sampleCatalog(), view, domain.Filters{}, "2025-03-10", discardLogger())

	require.NoError(t, s.Init(context.Background(), ""))

	assert.Equal(t, []string{"202503", "202502"}, view.months)
	assert.Equal(t, "202503", view.current)
	assert.Equal(t, []string{"capiscol", "huelgas"}, view.civicoIDs)
	assert.Equal(t, []string{"Yoga", "Teatro"}, names(view.activities))

	st := s.Snapshot()
	assert.Equal(t, "202503", st.CurrentMonth)
	assert.Equal(t, "https://example.org/c.pdf", st.Links["capiscol"])
	assert.Equal(t, "2025-03-10", st.Today)
}

func TestSession_InitHonoursRequestedMonth(t *testing.T) {
	view := &fakeView{}
	s := NewSession(sampleCatalog(), view, domain.Filters{}, "", discardLogger())

	require.NoError(t, s.Init(context.Background(), "202502"))

	assert.Equal(t, "202502", view.current)
	assert.Equal(t, []string{"Carnaval"}, names(view.activities))
}

func TestSession_InitFallsBackWhenMonthUnavailable(t *testing.T) {
	view := &fakeView{}
	s := NewSession(sampleCatalog(), view, domain.Filters{}, "", discardLogger())

	require.NoError(t, s.Init(context.Background(), "209901"))

	assert.Equal(t, "202503", view.current)
}

func TestSession_InitNoData(t *testing.T) {
	view := &fakeView{}
	s := NewSession(&fakeCatalog{}, view, domain.Filters{}, "", discardLogger())

	require.NoError(t, s.Init(context.Background(), ""))

	assert.Equal(t, 1, view.noData)
	assert.Zero(t, view.listCalls)
	assert.Empty(t, view.months)
}

func TestSession_InitCanceled(t *testing.T) {
	view := &fakeView{}
	s := NewSession(sampleCatalog(), view, domain.Filters{}, "", discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, s.Init(ctx, ""), context.Canceled)
	assert.Equal(t, []string{"Error al cargar la aplicación"}, view.errors)
}

func TestSession_InitAppliesDateFilter(t *testing.T) {
	view := &fakeView{}
	s := NewSession(sampleCatalog(), view, domain.Filters{Fecha: "2025-03-12"}, "2025-03-12", discardLogger())

	require.NoError(t, s.Init(context.Background(), ""))

	assert.Equal(t, []string{"Teatro"}, names(view.activities))
	assert.Equal(t, "2025-03-12", view.filters.Fecha)
}

func TestSession_ChangeFilter(t *testing.T) {
	view := &fakeView{}
	s := NewSession(sampleCatalog(), view, domain.Filters{}, "", discardLogger())
	require.NoError(t, s.Init(context.Background(), ""))

	s.ChangeFilter(FieldCivico, "capiscol")
	assert.Equal(t, []string{"Teatro"}, names(view.activities))

	s.ChangeFilter(FieldCivico, "")
	s.ChangeFilter(FieldInscripcion, "true")
	assert.Equal(t, []string{"Yoga"}, names(view.activities))

	s.ChangeFilter(FieldPublico, "niños")
	assert.Empty(t, view.activities)

	calls := view.listCalls
	s.ChangeFilter("color", "rojo")
	assert.Equal(t, calls, view.listCalls, "unknown field does not re-render")
}

func TestSession_ChangeMonthKeepsFilters(t *testing.T) {
	view := &fakeView{}
	s := NewSession(sampleCatalog(), view, domain.Filters{}, "", discardLogger())
	require.NoError(t, s.Init(context.Background(), ""))

	s.ChangeFilter(FieldCivico, "capiscol")
	require.NoError(t, s.ChangeMonth(context.Background(), "202502"))

	assert.Equal(t, []string{"capiscol"}, view.civicoIDs)
	assert.Equal(t, "capiscol", view.filters.Civico)
	assert.Equal(t, []string{"Carnaval"}, names(view.activities))
	assert.Empty(t, s.Snapshot().Links)
}

func TestSession_ChangeMonthLastRequestWins(t *testing.T) {
	cat := sampleCatalog()
	cat.gates = map[string]chan struct{}{"202503": make(chan struct{})}
	cat.started = make(chan string, 2)

	view := &fakeView{}
	s := NewSession(cat, view, domain.Filters{}, "", discardLogger())

	slow := make(chan error, 1)
	go func() { slow <- s.ChangeMonth(context.Background(), "202503") }()
	require.Equal(t, "202503", <-cat.started)

	// The later request completes first.
	require.NoError(t, s.ChangeMonth(context.Background(), "202502"))
	<-cat.started
	close(cat.gates["202503"])

	select {
	case err := <-slow:
		require.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("slow month load never returned")
	}

	assert.Equal(t, "202502", s.Snapshot().CurrentMonth)
	assert.Equal(t, []string{"Carnaval"}, names(view.activities))
	assert.Equal(t, 1, view.listCalls)
}

func TestSession_ChangeMonthEmptyIsNoop(t *testing.T) {
	view := &fakeView{}
	s := NewSession(sampleCatalog(), view, domain.Filters{}, "", discardLogger())

	require.NoError(t, s.ChangeMonth(context.Background(), ""))
	assert.Zero(t, view.listCalls)
}

func TestSession_SnapshotIsACopy(t *testing.T) {
	s := NewSession(sampleCatalog(), &fakeView{}, domain.Filters{}, "", discardLogger())
	require.NoError(t, s.Init(context.Background(), ""))

	st := s.Snapshot()
	st.Activities[0].Nombre = "changed"
	st.Months[0] = "changed"

	again := s.Snapshot()
	assert.Equal(t, "Yoga", again.Activities[0].Nombre)
	assert.Equal(t, "202503", again.Months[0])
}

func TestDefaultFilters(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, 3, 31, 23, 30, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	madrid, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	assert.Equal(t, domain.Filters{Fecha: "2025-04-01"}, DefaultFilters(madrid))
	assert.Equal(t, domain.Filters{Fecha: "2025-03-31"}, DefaultFilters(time.UTC))
}
