// Package agenda orchestrates loading and displaying a month of civic-center
// activities. A Session holds the State and pushes it to a View; the view
// decides how to draw it.
package agenda

import (
	"time"

	"github.com/couchcryptid/burgos-civicos/internal/domain"
)

// View draws the regions of the agenda. Every call replaces the region it
// draws, so calling a method twice with the same input is harmless.
type View interface {
	RenderMonths(months []string, current string)
	RenderFilters(civicoIDs []string, civicos map[string]domain.Civico, filters domain.Filters)
	RenderActivities(list []domain.Activity, civicos map[string]domain.Civico, links map[string]string)
	RenderNoData()
	RenderError(msg string)
}

// DefaultFilters returns the filters a fresh viewer starts with: only today's
// date in loc.
func DefaultFilters(loc *time.Location) domain.Filters {
	return domain.Filters{Fecha: domain.Today(loc)}
}
