// Package render draws the agenda as an HTML page or a terminal listing.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"

	"github.com/couchcryptid/burgos-civicos/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTmpl = template.Must(template.New("page.html.tmpl").Funcs(template.FuncMap{
	"phoneHref": phoneHref,
}).ParseFS(templateFS, "templates/page.html.tmpl"))

// Render outcomes, used as metric labels.
const (
	OutcomeOK     = "ok"
	OutcomeNoData = "no_data"
	OutcomeError  = "error"
)

type option struct {
	Value    string
	Label    string
	Selected bool
}

type page struct {
	Months      []option
	Civicos     []option
	Inscripcion []option
	Filters     domain.Filters
	Current     string
	Entries     []domain.Entry
	Message     string
}

// ExportURL is the calendar export link for the current selection.
func (p page) ExportURL() string {
	return "/actividades.ics?" + Query(p.Current, p.Filters).Encode()
}

// Query encodes a month and filter selection with the page's query keys.
// The fecha key is always present so that an empty date survives a round trip.
func Query(month string, f domain.Filters) url.Values {
	q := url.Values{}
	if month != "" {
		q.Set("mes", month)
	}
	if f.Civico != "" {
		q.Set("civico", f.Civico)
	}
	q.Set("fecha", f.Fecha)
	if f.Publico != "" {
		q.Set("publico", f.Publico)
	}
	if f.Inscripcion != "" {
		q.Set("inscripcion", f.Inscripcion)
	}
	return q
}

// HTMLView collects the rendered regions of the agenda page and writes them
// as one HTML document.
type HTMLView struct {
	page    page
	outcome string
}

// NewHTMLView returns an empty page.
func NewHTMLView() *HTMLView {
	return &HTMLView{outcome: OutcomeOK}
}

func (v *HTMLView) RenderMonths(months []string, current string) {
	v.page.Current = current
	v.page.Months = make([]option, 0, len(months))
	for _, m := range months {
		v.page.Months = append(v.page.Months, option{Value: m, Label: domain.MonthLabel(m), Selected: m == current})
	}
}

func (v *HTMLView) RenderFilters(civicoIDs []string, civicos map[string]domain.Civico, filters domain.Filters) {
	v.page.Filters = filters
	v.page.Civicos = make([]option, 0, len(civicoIDs))
	for _, id := range civicoIDs {
		label := id
		if c, ok := civicos[id]; ok && c.Nombre != "" {
			label = c.Nombre
		}
		v.page.Civicos = append(v.page.Civicos, option{Value: id, Label: label, Selected: id == filters.Civico})
	}
	v.page.Inscripcion = []option{
		{Value: "", Label: "Todas", Selected: filters.Inscripcion == ""},
		{Value: "true", Label: domain.TextRequiresRegistration, Selected: filters.Inscripcion == "true"},
		{Value: "false", Label: domain.TextNoRegistration, Selected: filters.Inscripcion == "false"},
	}
}

func (v *HTMLView) RenderActivities(list []domain.Activity, civicos map[string]domain.Civico, links map[string]string) {
	v.page.Entries = make([]domain.Entry, 0, len(list))
	v.page.Message = ""
	if len(list) == 0 {
		v.page.Message = domain.TextNoMatches
		return
	}
	for _, a := range list {
		v.page.Entries = append(v.page.Entries, domain.Present(a, civicos, links))
	}
}

func (v *HTMLView) RenderNoData() {
	v.page.Entries = nil
	v.page.Message = domain.TextNoData
	v.outcome = OutcomeNoData
}

func (v *HTMLView) RenderError(msg string) {
	v.page.Entries = nil
	v.page.Message = "Error: " + msg
	v.outcome = OutcomeError
}

// Outcome reports how the last render ended.
func (v *HTMLView) Outcome() string {
	return v.outcome
}

// Count is the number of activities on the page.
func (v *HTMLView) Count() int {
	return len(v.page.Entries)
}

// WriteTo writes the page as HTML.
func (v *HTMLView) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if err := pageTmpl.Execute(cw, v.page); err != nil {
		return cw.n, fmt.Errorf("render page: %w", err)
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func phoneHref(phone string) string {
	return strings.Join(strings.Fields(phone), "")
}
