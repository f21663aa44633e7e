package domain

import (
	"fmt"
	"strconv"
)

const (
	TextRequiresRegistration = "Requiere inscripción"
	TextNoRegistration       = "Sin inscripción"
	TextFree                 = "Gratuita"
	TextNoData               = "No hay datos de actividades disponibles"
	TextNoMatches            = "No hay actividades que coincidan con los filtros"
)

// DetailItem is one labelled line of an activity's expanded view.
type DetailItem struct {
	Label string
	Value string
}

// Entry is everything a view needs to show one activity.
type Entry struct {
	Activity     Activity
	CivicoName   string
	Phone        string
	PDFURL       string
	Registration string
	Details      []DetailItem
}

// Present builds the view entry for an activity. Center name falls back to the
// center id when the center is unknown.
func Present(a Activity, civicos map[string]Civico, links map[string]string) Entry {
	e := Entry{
		Activity:     a,
		CivicoName:   a.Civico,
		PDFURL:       links[a.Civico],
		Registration: TextNoRegistration,
		Details:      DetailItems(a),
	}
	if c, ok := civicos[a.Civico]; ok {
		if c.Nombre != "" {
			e.CivicoName = c.Nombre
		}
		e.Phone = c.Telefono
	}
	if a.RequiereInscripcion {
		e.Registration = TextRequiresRegistration
	}
	return e
}

// DetailItems lists the labelled details of an activity in display order.
func DetailItems(a Activity) []DetailItem {
	var items []DetailItem

	if a.Descripcion != "" {
		items = append(items, DetailItem{Label: "Descripción", Value: a.Descripcion})
	}

	if a.Hora != "" || a.HoraFin != "" {
		v := a.Hora
		if a.HoraFin != "" {
			v += " - " + a.HoraFin
		}
		items = append(items, DetailItem{Label: "Hora", Value: v})
	}

	if a.FechaFin != "" && a.FechaFin != a.Fecha {
		items = append(items, DetailItem{Label: "Hasta", Value: a.FechaFin})
	}

	items = append(items, DetailItem{Label: "Público", Value: a.Publico})

	if a.Lugar != "" {
		items = append(items, DetailItem{Label: "Lugar", Value: a.Lugar})
	}

	if age, ok := ageItem(a.EdadMinima, a.EdadMaxima); ok {
		items = append(items, age)
	}

	items = append(items, DetailItem{Label: "Precio", Value: PriceText(a)})
	return items
}

// ageItem treats a zero age like a missing one.
func ageItem(minAge, maxAge *int) (DetailItem, bool) {
	lo, hasMin := positive(minAge)
	hi, hasMax := positive(maxAge)
	switch {
	case hasMin && hasMax:
		return DetailItem{Label: "Edad", Value: fmt.Sprintf("%d - %d años", lo, hi)}, true
	case hasMin:
		return DetailItem{Label: "Edad mínima", Value: strconv.Itoa(lo) + " años"}, true
	case hasMax:
		return DetailItem{Label: "Edad máxima", Value: strconv.Itoa(hi) + " años"}, true
	default:
		return DetailItem{}, false
	}
}

func positive(v *int) (int, bool) {
	if v == nil || *v == 0 {
		return 0, false
	}
	return *v, true
}

// PriceText renders the price, or "Gratuita" when absent or not positive.
func PriceText(a Activity) string {
	if a.Precio.Valid && a.Precio.Decimal.IsPositive() {
		return a.Precio.Decimal.String() + " €"
	}
	return TextFree
}
