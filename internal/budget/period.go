package budget

import "time"

// ResolvePeriod returns the effective reporting period for a month/year pair.
// An absent or invalid pair (month outside 1..12, year <= 1900) defaults to
// the calendar month containing now. The end date is start plus one month
// minus one day, so variable month lengths and leap years fall out of date
// arithmetic rather than hardcoded day counts.
func ResolvePeriod(month, year int, now time.Time) (start, end time.Time) {
	if month < 1 || month > 12 || year <= 1900 {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	}
	end = start.AddDate(0, 1, -1)
	return start, end
}

// Navigation carries the prior/next period links a report view needs,
// as explicit fields rather than ambient view state.
type Navigation struct {
	PreviousMonth int
	PreviousYear  int
	NextMonth     int
	NextYear      int
	ReturnURL     string
}

// NavigationFor derives navigation metadata from a period start date.
func NavigationFor(start time.Time, returnURL string) Navigation {
	prev := start.AddDate(0, -1, 0)
	next := start.AddDate(0, 1, 0)
	return Navigation{
		PreviousMonth: int(prev.Month()),
		PreviousYear:  prev.Year(),
		NextMonth:     int(next.Month()),
		NextYear:      next.Year(),
		ReturnURL:     returnURL,
	}
}

// daysIn returns the number of days in the given month.
// Day 0 of the next month normalizes to the last day of this one.
func daysIn(month, year int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
