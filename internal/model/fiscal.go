package model

import "time"

// DateLayout is the calendar date format used at every boundary.
const DateLayout = "2006-01-02"

// YearRange returns the half-open UTC range [year-01-01, year+1-01-01).
func YearRange(year int) (start, end time.Time) {
	start = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, end
}

// YearEnd returns December 31 of year at UTC midnight.
func YearEnd(year int) time.Time {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date as a UTC day.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
