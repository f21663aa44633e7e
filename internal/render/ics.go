package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/couchcryptid/burgos-civicos/internal/domain"
	"github.com/google/uuid"
)

const (
	icsProductID = "-//burgos-civicos//Agenda de Centros Cívicos//ES"
	icsTimezone  = "Europe/Madrid"
	icsUIDDomain = "civicos.burgos"

	// Content lines longer than this many octets are folded.
	icsLineLimit = 75
)

var (
	icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

	uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://"+icsUIDDomain+"/actividades"))
)

// WriteICS writes the activities of month as all-day iCalendar events spanning
// fecha through fecha_fin. Activities whose dates do not parse are skipped.
// Each event UID is derived from the activity itself, so it is the same in
// every export regardless of filters or list position.
func WriteICS(w io.Writer, month string, list []domain.Activity, civicos map[string]domain.Civico, links map[string]string, stamp time.Time) error {
	bw := bufio.NewWriter(w)
	line := func(format string, args ...any) {
		bw.WriteString(foldLine(fmt.Sprintf(format, args...))) //nolint:errcheck // flushed and checked below
		bw.WriteString("\r\n")                                 //nolint:errcheck // flushed and checked below
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:%s", icsProductID)
	line("X-WR-CALNAME:%s", icsText("Centros Cívicos "+domain.MonthLabel(month)))
	line("X-WR-TIMEZONE:%s", icsTimezone)
	line("CALSCALE:GREGORIAN")
	line("METHOD:PUBLISH")

	dtstamp := stamp.UTC().Format("20060102T150405Z")
	for _, a := range list {
		start, err := domain.ParseDate(a.Fecha)
		if err != nil {
			continue
		}
		end := start
		if a.FechaFin != "" {
			if end, err = domain.ParseDate(a.FechaFin); err != nil || end.Before(start) {
				end = start
			}
		}

		e := domain.Present(a, civicos, links)
		line("BEGIN:VEVENT")
		line("UID:%s", eventUID(a))
		line("DTSTAMP:%s", dtstamp)
		line("DTSTART;VALUE=DATE:%s", start.Format("20060102"))
		line("DTEND;VALUE=DATE:%s", end.AddDate(0, 0, 1).Format("20060102"))
		line("SUMMARY:%s", icsText(a.Nombre))
		line("DESCRIPTION:%s", icsText(describe(e)))
		line("LOCATION:%s", icsText(location(e)))
		if e.PDFURL != "" {
			line("URL:%s", e.PDFURL)
		}
		line("END:VEVENT")
	}

	line("END:VCALENDAR")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}

// eventUID names an activity by the fields that identify it in the published
// data: center, title, dates, hour and place.
func eventUID(a domain.Activity) string {
	key := strings.Join([]string{a.Civico, a.Nombre, a.Fecha, a.FechaFin, a.Hora, a.Lugar}, "\x1f")
	return uuid.NewSHA1(uidNamespace, []byte(key)).String() + "@" + icsUIDDomain
}

// foldLine splits s into lines of at most icsLineLimit octets joined by CRLF
// and a space, never inside a UTF-8 sequence.
func foldLine(s string) string {
	if len(s) <= icsLineLimit {
		return s
	}

	var b strings.Builder
	limit := icsLineLimit
	for len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		b.WriteString(s[:cut])
		b.WriteString("\r\n ")
		s = s[cut:]
		limit = icsLineLimit - 1 // the leading space counts
	}
	b.WriteString(s)
	return b.String()
}

func describe(e domain.Entry) string {
	parts := make([]string, 0, len(e.Details)+1)
	for _, d := range e.Details {
		parts = append(parts, d.Label+": "+d.Value)
	}
	parts = append(parts, e.Registration)
	return strings.Join(parts, "\n")
}

func location(e domain.Entry) string {
	if e.Activity.Lugar != "" {
		return e.Activity.Lugar + ", " + e.CivicoName
	}
	return e.CivicoName
}

func icsText(s string) string {
	return icsEscaper.Replace(s)
}
