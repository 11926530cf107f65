package booking

import (
	"time"
)

// DateOnly normalizes a timestamp to midnight UTC. Appointment and event
// dates are stored and compared at day granularity only.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsWeekend reports whether the date falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// nextDay advances a normalized date by one calendar day.
func nextDay(t time.Time) time.Time {
	return t.AddDate(0, 0, 1)
}
