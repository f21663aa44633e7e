// Command validate checks a published dataset tree for integrity: the
// civicos.json center map, every <YYYYMM>/actividades.json, and the optional
// links.json files. It verifies required fields, date and hour formats,
// month consistency, and cross-file references.
//
// Usage:
//
//	go run ./cmd/validate -data internal/adapter/dataset/testdata/data
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/burgos-civicos/internal/domain"
)

const (
	civicosFile     = "civicos.json"
	activitiesFile  = "actividades.json"
	linksFile       = "links.json"
	strictDateParse = "02/01/2006"
)

var (
	monthDirPattern = regexp.MustCompile(`^\d{6}$`)
	hourPattern     = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// monthData is one month directory as read from disk.
type monthData struct {
	key        string
	activities domain.MonthActivities
	links      *domain.LinkSet
	loadErr    error
}

// dataset is the whole tree.
type dataset struct {
	civicos map[string]domain.Civico
	months  []monthData
}

func main() {
	dataDir := flag.String("data", "", "root directory of the published dataset")
	flag.Parse()

	if *dataDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*dataDir, os.Stdout))
}

func run(dataDir string, out io.Writer) int {
	fmt.Fprintln(out, "=== Civic Activity Dataset Validation ===")
	fmt.Fprintln(out)

	ds, err := loadDataset(dataDir)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateCivicos(ds.civicos),
		validateActivities(ds.months),
		validateMonthConsistency(ds.months),
		validateReferences(ds),
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Dataset: %d centers, %d months, %d activities\n",
		len(ds.civicos), len(ds.months), countActivities(ds.months))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadDataset(dir string) (dataset, error) {
	var ds dataset
	if err := readJSON(filepath.Join(dir, civicosFile), &ds.civicos); err != nil {
		return ds, fmt.Errorf("load %s: %w", civicosFile, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return ds, fmt.Errorf("read %s: %w", dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() || !monthDirPattern.MatchString(e.Name()) {
			continue
		}
		ds.months = append(ds.months, loadMonth(filepath.Join(dir, e.Name()), e.Name()))
	}
	sort.Slice(ds.months, func(i, j int) bool { return ds.months[i].key > ds.months[j].key })
	return ds, nil
}

func loadMonth(dir, key string) monthData {
	m := monthData{key: key}
	if err := readJSON(filepath.Join(dir, activitiesFile), &m.activities); err != nil {
		m.loadErr = err
		return m
	}

	var links domain.LinkSet
	switch err := readJSON(filepath.Join(dir, linksFile), &links); {
	case err == nil:
		m.links = &links
	case errors.Is(err, fs.ErrNotExist):
	default:
		m.loadErr = fmt.Errorf("%s: %w", linksFile, err)
	}
	return m
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func countActivities(months []monthData) int {
	n := 0
	for _, m := range months {
		for _, block := range m.activities {
			n += len(block.Activities)
		}
	}
	return n
}

// ── Phase 1: Centers ──

func validateCivicos(civicos map[string]domain.Civico) *phase {
	p := &phase{name: "Phase 1: Centers (civicos.json)"}
	if len(civicos) == 0 {
		p.errorf("no centers defined")
	}
	for id, c := range civicos {
		if strings.TrimSpace(id) == "" {
			p.errorf("center with empty id")
		}
		if strings.TrimSpace(c.Nombre) == "" {
			p.errorf("center %q: nombre is empty", id)
		}
	}
	return p
}

// ── Phase 2: Activity schema ──

func validateActivities(months []monthData) *phase {
	p := &phase{name: "Phase 2: Activity Schema (actividades.json)"}
	for _, m := range months {
		if m.loadErr != nil {
			p.errorf("%s: %v", m.key, m.loadErr)
			continue
		}
		for _, block := range m.activities {
			for i, a := range block.Activities {
				pf := func(format string, args ...any) {
					p.errorf("%s/%s[%d]: "+format, append([]any{m.key, block.Civico, i}, args...)...)
				}
				checkActivity(pf, a)
			}
		}
	}
	return p
}

func checkActivity(pf func(string, ...any), a domain.Activity) {
	if strings.TrimSpace(a.Nombre) == "" {
		pf("nombre is empty")
	}
	if strings.TrimSpace(a.Publico) == "" {
		pf("publico is empty")
	}

	start, err := time.Parse(strictDateParse, a.Fecha)
	if err != nil {
		pf("fecha %q is not DD/MM/YYYY", a.Fecha)
	}
	if a.FechaFin != "" {
		end, err := time.Parse(strictDateParse, a.FechaFin)
		switch {
		case err != nil:
			pf("fecha_fin %q is not DD/MM/YYYY", a.FechaFin)
		case !start.IsZero() && end.Before(start):
			pf("fecha_fin %s is before fecha %s", a.FechaFin, a.Fecha)
		}
	}

	if a.Hora != "" && !hourPattern.MatchString(a.Hora) {
		pf("hora %q is not HH:MM", a.Hora)
	}
	if a.HoraFin != "" && !hourPattern.MatchString(a.HoraFin) {
		pf("hora_fin %q is not HH:MM", a.HoraFin)
	}

	if a.EdadMinima != nil && a.EdadMaxima != nil && *a.EdadMaxima > 0 && *a.EdadMinima > *a.EdadMaxima {
		pf("edad_minima %d is above edad_maxima %d", *a.EdadMinima, *a.EdadMaxima)
	}
	if a.Precio.Valid && a.Precio.Decimal.IsNegative() {
		pf("precio %s is negative", a.Precio.Decimal.String())
	}
}

// ── Phase 3: Month consistency ──
// Every activity must touch the month its directory is named after.

func validateMonthConsistency(months []monthData) *phase {
	p := &phase{name: "Phase 3: Month Consistency"}
	for _, m := range months {
		if m.loadErr != nil {
			continue
		}
		if _, err := domain.FormatMonth(m.key); err != nil {
			p.errorf("%s: %v", m.key, err)
			continue
		}
		for _, block := range m.activities {
			for i, a := range block.Activities {
				if !touchesMonth(a, m.key) {
					p.errorf("%s/%s[%d]: %q (%s) falls outside the month", m.key, block.Civico, i, a.Nombre, a.Fecha)
				}
			}
		}
	}
	return p
}

// touchesMonth reports whether the activity's date range overlaps the month.
// Unparseable dates are reported in phase 2 and pass here.
func touchesMonth(a domain.Activity, key string) bool {
	start, err := time.Parse(strictDateParse, a.Fecha)
	if err != nil {
		return true
	}
	end := start
	if a.FechaFin != "" {
		if e, err := time.Parse(strictDateParse, a.FechaFin); err == nil {
			end = e
		}
	}
	first, err := time.Parse("200601", key)
	if err != nil {
		return true
	}
	last := first.AddDate(0, 1, -1)
	return !start.After(last) && !end.Before(first)
}

// ── Phase 4: References ──

func validateReferences(ds dataset) *phase {
	p := &phase{name: "Phase 4: References (centers and links)"}
	for _, m := range ds.months {
		if m.loadErr != nil {
			continue
		}
		for _, block := range m.activities {
			if _, ok := ds.civicos[block.Civico]; !ok {
				p.errorf("%s: activities for unknown center %q", m.key, block.Civico)
			}
		}
		if m.links == nil {
			continue
		}
		for i, l := range m.links.Links {
			if _, ok := ds.civicos[l.CivicoID]; !ok {
				p.errorf("%s links[%d]: unknown civico_id %q", m.key, i, l.CivicoID)
			}
			u, err := url.Parse(l.URL)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				p.errorf("%s links[%d]: url %q is not an http(s) URL", m.key, i, l.URL)
			}
		}
	}
	return p
}
