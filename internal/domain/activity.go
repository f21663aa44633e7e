package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Activity is a scheduled event hosted by a civic center, as published in
// <YYYYMM>/actividades.json. Civico is not part of the per-center arrays; it is
// filled in by Normalize.
type Activity struct {
	Nombre              string              `json:"nombre"`
	Descripcion         string              `json:"descripcion,omitempty"`
	Fecha               string              `json:"fecha"`               // DD/MM/YYYY
	FechaFin            string              `json:"fecha_fin,omitempty"` // DD/MM/YYYY, empty for single-day
	Hora                string              `json:"hora,omitempty"`
	HoraFin             string              `json:"hora_fin,omitempty"`
	Lugar               string              `json:"lugar,omitempty"`
	Publico             string              `json:"publico"`
	RequiereInscripcion bool                `json:"requiere_inscripcion"`
	EdadMinima          *int                `json:"edad_minima,omitempty"`
	EdadMaxima          *int                `json:"edad_maxima,omitempty"`
	Precio              decimal.NullDecimal `json:"precio"`
	Civico              string              `json:"civico"`
}

// Civico is a municipal civic center. Centers are keyed by the same id used in
// Activity.Civico.
type Civico struct {
	Nombre   string `json:"nombre"`
	Telefono string `json:"telefono,omitempty"`
}

// CenterActivities is the activity array published for one center.
type CenterActivities struct {
	Civico     string
	Activities []Activity
}

// MonthActivities is the decoded content of an actividades.json file. It keeps
// the key order of the source object so that Normalize is deterministic.
type MonthActivities []CenterActivities

// UnmarshalJSON decodes an object of center id -> activity array, preserving
// key order.
func (m *MonthActivities) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode activities: %w", err)
	}
	if tok == nil {
		*m = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decode activities: expected object, got %v", tok)
	}

	var out MonthActivities
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode activities: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("decode activities: unexpected key %v", keyTok)
		}

		var list []Activity
		if err := dec.Decode(&list); err != nil {
			return fmt.Errorf("decode activities for %q: %w", key, err)
		}
		out = append(out, CenterActivities{Civico: key, Activities: list})
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode activities: %w", err)
	}
	*m = out
	return nil
}

// Normalize flattens per-center arrays into a single list, tagging each record
// with its owning center id. Order follows the source object, then each array.
func Normalize(data MonthActivities) []Activity {
	n := 0
	for _, block := range data {
		n += len(block.Activities)
	}

	activities := make([]Activity, 0, n)
	for _, block := range data {
		for _, act := range block.Activities {
			act.Civico = block.Civico
			activities = append(activities, act)
		}
	}
	return activities
}

// Link points to the original PDF a center published for a month.
type Link struct {
	CivicoID string `json:"civico_id"`
	URL      string `json:"url"`
}

// LinkSet is the content of a <YYYYMM>/links.json file.
type LinkSet struct {
	Links []Link `json:"links"`
}

// ByCivico returns center id -> URL. Later entries win on duplicate ids.
func (s LinkSet) ByCivico() map[string]string {
	out := make(map[string]string, len(s.Links))
	for _, l := range s.Links {
		if l.CivicoID == "" || l.URL == "" {
			continue
		}
		out[l.CivicoID] = l.URL
	}
	return out
}
