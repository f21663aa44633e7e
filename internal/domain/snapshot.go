package domain

import "time"

// PublishedActivity is one activity as written to the snapshot topic. The
// activity fields are inlined next to the month it was published from and its
// position in that month.
type PublishedActivity struct {
	Mes         string    `json:"mes"`
	Posicion    int       `json:"posicion"`
	PublishedAt time.Time `json:"published_at"`
	Activity
}

// Snapshot tags each activity with its month and position, stamped at now.
func Snapshot(month string, activities []Activity, now time.Time) []PublishedActivity {
	out := make([]PublishedActivity, 0, len(activities))
	for i, a := range activities {
		out = append(out, PublishedActivity{
			Mes:         month,
			Posicion:    i,
			PublishedAt: now.UTC(),
			Activity:    a,
		})
	}
	return out
}
