package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// ActivityDateLayout is the layout of Activity.Fecha and Activity.FechaFin.
	ActivityDateLayout = "02/01/2006"
	// FilterDateLayout is the layout of Filters.Fecha.
	FilterDateLayout = "2006-01-02"
	// MonthKeyLayout is the layout of month keys such as "202503".
	MonthKeyLayout = "200601"
)

var (
	// ErrInvalidDate is returned for date strings that are not three numeric parts.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidMonth is returned for month keys that are not YYYYMM with a month in 1..12.
	ErrInvalidMonth = errors.New("invalid month")
)

var monthNames = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// ParseDate parses a "DD/MM/YYYY" string into a local calendar date at midnight.
// Numeric but out-of-range parts roll over the way time.Date normalizes them
// ("32/01/2025" is 1 February); non-numeric input returns ErrInvalidDate.
func ParseDate(s string) (time.Time, error) {
	d, m, y, err := splitNumeric(s, "/")
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.Local), nil
}

// ParseFilterDate parses the "YYYY-MM-DD" value of Filters.Fecha with the same
// rules as ParseDate.
func ParseFilterDate(s string) (time.Time, error) {
	y, m, d, err := splitNumeric(s, "-")
	if err != nil {
		return time.Time{}, fmt.Errorf("parse filter date %q: %w", s, err)
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.Local), nil
}

func splitNumeric(s, sep string) (int, int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), sep)
	if len(parts) != 3 {
		return 0, 0, 0, ErrInvalidDate
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, 0, 0, ErrInvalidDate
		}
		n[i] = v
	}
	return n[0], n[1], n[2], nil
}

// FormatMonth turns a "YYYYMM" key into a Spanish label such as "Marzo 2025".
func FormatMonth(key string) (string, error) {
	year, month, err := splitMonthKey(key)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %d", monthNames[month-1], year), nil
}

// MonthLabel is FormatMonth with the raw key as fallback, for display.
func MonthLabel(key string) string {
	label, err := FormatMonth(key)
	if err != nil {
		return key
	}
	return label
}

func splitMonthKey(key string) (int, int, error) {
	if len(key) != 6 {
		return 0, 0, fmt.Errorf("format month %q: %w", key, ErrInvalidMonth)
	}
	year, errY := strconv.Atoi(key[:4])
	month, errM := strconv.Atoi(key[4:])
	if errY != nil || errM != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("format month %q: %w", key, ErrInvalidMonth)
	}
	return year, month, nil
}

// MonthKey returns the "YYYYMM" key of the month containing t.
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// InDateRange reports whether selected falls on a day between the activity's
// start and end dates, both inclusive. A missing FechaFin means a single-day
// activity. Activities whose dates do not parse never match.
func InDateRange(a Activity, selected time.Time) bool {
	start, err := ParseDate(a.Fecha)
	if err != nil {
		return false
	}
	end := start
	if a.FechaFin != "" {
		end, err = ParseDate(a.FechaFin)
		if err != nil {
			return false
		}
	}

	day := civilDay(selected)
	return !day.Before(civilDay(start)) && !day.After(civilDay(end))
}

// civilDay drops the clock and zone so that only the calendar date is compared.
func civilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
