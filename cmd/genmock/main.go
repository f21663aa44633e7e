// Command genmock writes a deterministic mock dataset tree: civicos.json plus
// actividades.json and links.json for each of the last N months. The output
// can be served with DATA_BASE_URL pointing at the directory.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -months 3
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/burgos-civicos/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
)

// mockActivity mirrors the published record shape, which has no civico field.
type mockActivity struct {
	Nombre              string              `json:"nombre"`
	Descripcion         string              `json:"descripcion,omitempty"`
	Fecha               string              `json:"fecha"`
	FechaFin            *string             `json:"fecha_fin"`
	Hora                string              `json:"hora,omitempty"`
	HoraFin             string              `json:"hora_fin,omitempty"`
	Lugar               string              `json:"lugar,omitempty"`
	Publico             string              `json:"publico"`
	RequiereInscripcion bool                `json:"requiere_inscripcion"`
	EdadMinima          *int                `json:"edad_minima,omitempty"`
	EdadMaxima          *int                `json:"edad_maxima,omitempty"`
	Precio              decimal.NullDecimal `json:"precio"`
}

type template struct {
	nombre      string
	descripcion string
	publico     string
	hora        string
	horaFin     string
	days        int // 0 for single-day
	inscripcion bool
	minAge      int
	maxAge      int
	precio      string // empty for free
}

var centers = []struct {
	id       string
	nombre   string
	telefono string
}{
	{"gamonal_norte", "Centro Cívico Gamonal Norte", "947 288 820"},
	{"rio_vena", "Centro Cívico Río Vena", "947 288 830"},
	{"vista_alegre", "Centro Cívico Vista Alegre", "947 288 840"},
	{"capiscol", "Centro Cívico Capiscol", "947 288 817"},
	{"san_agustin", "Centro Cívico San Agustín", ""},
	{"huelgas", "Centro Cívico Huelgas", "947 288 860"},
	{"san_juan", "Centro Cívico San Juan", "947 288 870"},
}

var templates = []template{
	{nombre: "Cuentacuentos", publico: "Infantil", hora: "17:30", minAge: 4, maxAge: 8},
	{nombre: "Taller de cerámica", descripcion: "Iniciación al torno y modelado.", publico: "Adultos", hora: "18:00", horaFin: "20:00", days: 21, inscripcion: true, precio: "15.5"},
	{nombre: "Club de lectura", publico: "Adultos", hora: "19:00"},
	{nombre: "Robótica", publico: "Juvenil", hora: "17:00", horaFin: "18:30", days: 14, inscripcion: true, minAge: 10, maxAge: 14, precio: "20"},
	{nombre: "Gimnasia de mantenimiento", publico: "Mayores", hora: "10:00", horaFin: "11:00", days: 25, inscripcion: true},
	{nombre: "Cine en familia", publico: "Todos los públicos", hora: "18:00"},
	{nombre: "Ajedrez", publico: "Infantil y juvenil", hora: "17:30", inscripcion: true, minAge: 6},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for the dataset tree")
	months := flag.Int("months", 3, "number of months to generate, newest first")
	flag.Parse()

	if *out == "" || *months < 1 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -months >= 1")
	}

	// Fixed clock so repeated runs produce identical files.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	decimal.MarshalJSONWithoutQuotes = true

	civicos := make(map[string]domain.Civico, len(centers))
	for _, c := range centers {
		civicos[c.id] = domain.Civico{Nombre: c.nombre, Telefono: c.telefono}
	}
	if err := writeJSON(filepath.Join(*out, "civicos.json"), civicos); err != nil {
		return fmt.Errorf("writing civicos: %w", err)
	}

	total := 0
	for i, key := range domain.MonthWindow(domain.Now(time.UTC), *months) {
		acts, links := generateMonth(key, i)
		if err := writeJSON(filepath.Join(*out, key, "actividades.json"), acts); err != nil {
			return fmt.Errorf("writing %s activities: %w", key, err)
		}
		if err := writeJSON(filepath.Join(*out, key, "links.json"), links); err != nil {
			return fmt.Errorf("writing %s links: %w", key, err)
		}
		n := 0
		for _, list := range acts {
			n += len(list)
		}
		total += n
		log.Printf("%s: %d activities, %d links", key, n, len(links.Links))
	}
	log.Printf("wrote %d centers and %d activities to %s", len(centers), total, *out)
	return nil
}

// generateMonth builds one month's files. Each center gets two or three
// activities picked from the templates by position, so output is stable.
func generateMonth(key string, offset int) (map[string][]mockActivity, domain.LinkSet) {
	first, err := time.Parse("200601", key)
	if err != nil {
		panic(err)
	}
	daysInMonth := first.AddDate(0, 1, -1).Day()

	acts := make(map[string][]mockActivity, len(centers))
	var links domain.LinkSet
	for ci, c := range centers {
		count := 2 + (ci+offset)%2
		list := make([]mockActivity, 0, count)
		for k := range count {
			t := templates[(ci*3+k+offset)%len(templates)]
			day := 1 + (ci*5+k*9+offset*2)%daysInMonth
			list = append(list, buildActivity(t, first.AddDate(0, 0, day-1)))
		}
		acts[c.id] = list

		// Not every center publishes its PDF.
		if ci%3 != 2 {
			links.Links = append(links.Links, domain.Link{
				CivicoID: c.id,
				URL:      fmt.Sprintf("https://www.aytoburgos.es/civicos/%s/%s.pdf", key, c.id),
			})
		}
	}
	return acts, links
}

func buildActivity(t template, start time.Time) mockActivity {
	a := mockActivity{
		Nombre:              t.nombre,
		Descripcion:         t.descripcion,
		Fecha:               start.Format("02/01/2006"),
		Hora:                t.hora,
		HoraFin:             t.horaFin,
		Publico:             t.publico,
		RequiereInscripcion: t.inscripcion,
	}
	if t.days > 0 {
		end := start.AddDate(0, 0, t.days).Format("02/01/2006")
		a.FechaFin = &end
	}
	if t.minAge > 0 {
		a.EdadMinima = &t.minAge
	}
	if t.maxAge > 0 {
		a.EdadMaxima = &t.maxAge
	}
	if t.precio != "" {
		a.Precio = decimal.NewNullDecimal(decimal.RequireFromString(t.precio))
	}
	return a
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
