package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/burgos-civicos/internal/domain"
	"golang.org/x/term"
)

const (
	defaultWidth = 80
	minWidth     = 40

	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiRed   = "\033[31m"
	ansiReset = "\033[0m"
)

// TextView prints the agenda as a plain terminal listing. Colour and line
// width follow the terminal when w is one.
type TextView struct {
	w     io.Writer
	width int
	color bool
}

type fder interface {
	Fd() uintptr
}

// NewTextView writes to w. If w is a terminal, its width is used for wrapping
// and output is coloured.
func NewTextView(w io.Writer) *TextView {
	v := &TextView{w: w, width: defaultWidth}
	if f, ok := w.(fder); ok && term.IsTerminal(int(f.Fd())) {
		v.color = true
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width >= minWidth {
			v.width = width
		}
	}
	return v
}

func (v *TextView) RenderMonths(months []string, current string) {
	labels := make([]string, 0, len(months))
	for _, m := range months {
		labels = append(labels, domain.MonthLabel(m))
	}
	v.printf("%s\n", v.bold("Mes: "+domain.MonthLabel(current)))
	v.printf("%s\n\n", v.dim("Disponibles: "+strings.Join(labels, ", ")))
}

func (v *TextView) RenderFilters(civicoIDs []string, civicos map[string]domain.Civico, filters domain.Filters) {
	names := make([]string, 0, len(civicoIDs))
	for _, id := range civicoIDs {
		names = append(names, civicoName(id, civicos))
	}
	v.printf("%s\n", v.wrap("Centros: "+strings.Join(names, ", "), ""))

	var active []string
	if filters.Civico != "" {
		active = append(active, "centro="+civicoName(filters.Civico, civicos))
	}
	if filters.Fecha != "" {
		active = append(active, "fecha="+filters.Fecha)
	}
	if filters.Publico != "" {
		active = append(active, "público="+filters.Publico)
	}
	if filters.Inscripcion != "" {
		active = append(active, "inscripción="+filters.Inscripcion)
	}
	if len(active) == 0 {
		active = append(active, "ninguno")
	}
	v.printf("%s\n\n", v.dim("Filtros: "+strings.Join(active, ", ")))
}

func (v *TextView) RenderActivities(list []domain.Activity, civicos map[string]domain.Civico, links map[string]string) {
	if len(list) == 0 {
		v.printf("%s\n", domain.TextNoMatches)
		return
	}

	for _, a := range list {
		e := domain.Present(a, civicos, links)
		v.printf("%s\n", v.bold(e.Activity.Nombre))
		v.printf("  %s · %s · %s\n", e.Activity.Fecha, e.CivicoName, e.Registration)
		for _, item := range e.Details {
			v.printf("%s\n", v.wrap(item.Label+": "+item.Value, "    "))
		}
		if e.PDFURL != "" {
			v.printf("    PDF: %s\n", e.PDFURL)
		}
		if e.Phone != "" {
			v.printf("    Tel: %s\n", e.Phone)
		}
		v.printf("\n")
	}
	v.printf("%s\n", v.dim(fmt.Sprintf("%d actividades", len(list))))
}

func (v *TextView) RenderNoData() {
	v.printf("%s\n", domain.TextNoData)
}

func (v *TextView) RenderError(msg string) {
	line := "Error: " + msg
	if v.color {
		line = ansiRed + line + ansiReset
	}
	v.printf("%s\n", line)
}

func (v *TextView) printf(format string, args ...any) {
	fmt.Fprintf(v.w, format, args...) //nolint:errcheck // terminal output is best-effort
}

func (v *TextView) bold(s string) string {
	if !v.color {
		return s
	}
	return ansiBold + s + ansiReset
}

func (v *TextView) dim(s string) string {
	if !v.color {
		return s
	}
	return ansiDim + s + ansiReset
}

// wrap breaks s on spaces so no line exceeds the view width. Every line
// starts with indent.
func (v *TextView) wrap(s, indent string) string {
	limit := v.width - len([]rune(indent))
	var (
		lines []string
		line  strings.Builder
	)
	for _, word := range strings.Fields(s) {
		if line.Len() > 0 && len([]rune(line.String()))+1+len([]rune(word)) > limit {
			lines = append(lines, indent+line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 || len(lines) == 0 {
		lines = append(lines, indent+line.String())
	}
	return strings.Join(lines, "\n")
}

func civicoName(id string, civicos map[string]domain.Civico) string {
	if c, ok := civicos[id]; ok && c.Nombre != "" {
		return c.Nombre
	}
	return id
}
