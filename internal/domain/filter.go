package domain

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Filters is the set of active filter criteria. An empty field disables its
// predicate.
type Filters struct {
	Civico      string `json:"civico"`
	Fecha       string `json:"fecha"`       // YYYY-MM-DD
	Publico     string `json:"publico"`     // case-insensitive substring
	Inscripcion string `json:"inscripcion"` // "true", "false" or ""
}

// IsZero reports whether no filter is active.
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// ApplyFilters returns the activities matching every active filter, in input
// order. The input slice is never modified. Predicates run in a fixed order:
// center, date, audience, registration.
func ApplyFilters(activities []Activity, f Filters) []Activity {
	filtered := slices.Clone(activities)
	if filtered == nil {
		filtered = []Activity{}
	}

	if f.Civico != "" {
		filtered = keep(filtered, func(a Activity) bool { return a.Civico == f.Civico })
	}

	if f.Fecha != "" {
		selected, err := ParseFilterDate(f.Fecha)
		if err != nil {
			return []Activity{}
		}
		filtered = keep(filtered, func(a Activity) bool { return InDateRange(a, selected) })
	}

	if f.Publico != "" {
		fold := cases.Fold()
		needle := fold.String(f.Publico)
		filtered = keep(filtered, func(a Activity) bool {
			return a.Publico != "" && strings.Contains(fold.String(a.Publico), needle)
		})
	}

	if f.Inscripcion != "" {
		want := f.Inscripcion == "true"
		filtered = keep(filtered, func(a Activity) bool { return a.RequiereInscripcion == want })
	}

	return filtered
}

// keep filters in place; callers own the slice.
func keep(activities []Activity, pred func(Activity) bool) []Activity {
	return slices.DeleteFunc(activities, func(a Activity) bool { return !pred(a) })
}

// UniqueCivicos returns the distinct center ids present in activities, sorted
// ascending.
func UniqueCivicos(activities []Activity) []string {
	seen := make(map[string]struct{}, len(activities))
	ids := make([]string, 0)
	for _, a := range activities {
		if _, ok := seen[a.Civico]; ok {
			continue
		}
		seen[a.Civico] = struct{}{}
		ids = append(ids, a.Civico)
	}
	slices.Sort(ids)
	return ids
}
