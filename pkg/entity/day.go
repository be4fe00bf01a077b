package entity

import "time"

// DayKeyFormat is the canonical per-day bucket key (ISO date).
const DayKeyFormat = "2006-01-02"

// Midnight truncates t to the start of its calendar day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// DayWindow returns the half-open interval [midnight, midnight+24h) covering
// the calendar day of t in loc. A timestamp at exactly the upper bound
// belongs to the next day.
func DayWindow(t time.Time, loc *time.Location) (start, end time.Time) {
	start = Midnight(t, loc)
	return start, start.AddDate(0, 0, 1)
}

// InDayWindow reports whether t falls on the calendar day of day in loc.
func InDayWindow(t, day time.Time, loc *time.Location) bool {
	start, end := DayWindow(day, loc)
	return !t.Before(start) && t.Before(end)
}

// DayKey formats the calendar day of t in loc as an ISO date string.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayKeyFormat)
}
