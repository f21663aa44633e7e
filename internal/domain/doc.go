// Package domain models the civic-center activity calendar and holds its pure
// logic: date handling, filtering, month discovery and presentation rules.
//
// # Data Source
//
// Activities are published as pre-generated JSON files, one directory per month,
// relative to a configurable base location:
//
//	civicos.json               center id -> {nombre, telefono}
//	<YYYYMM>/actividades.json  center id -> [activity, ...]
//	<YYYYMM>/links.json        {"links": [{"civico_id", "url"}, ...]}
//
// Center ids are lowercase slugs such as "gamonal_norte", "rio_vena" or
// "capiscol". The per-center arrays do not repeat the id; [Normalize] adds it.
//
// # Date Conventions
//
// Activity dates use "DD/MM/YYYY". fecha_fin is null for single-day activities
// and is assumed to be on or after fecha; upstream guarantees it, nothing here
// checks it except the validate command. The date filter uses "YYYY-MM-DD",
// the value of an HTML date input.
//
// Dates are calendar days in the local zone. [InDateRange] compares days only,
// so the time of day of the selected date is irrelevant.
//
// Malformed dates:
//
//	Numeric parts out of range roll over like time.Date ("31/02/2025" is 3 March).
//	Non-numeric input yields ErrInvalidDate, and such activities never match
//	a date filter.
//
// # Month Keys
//
// Months are identified by "YYYYMM" keys. Lexicographic order equals
// chronological order, so sorting keys sorts months. Labels use a fixed Spanish
// month table: "202503" is "Marzo 2025".
package domain
