// Package dates provides safe calendar-date construction and the
// window helpers the executors and summary views share.
package dates

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for dates in intent arguments
const DateLayout = "2006-01-02"

// TimeLayout is the wire format for times of day in intent arguments
const TimeLayout = "15:04"

// SafeDate constructs a date in loc, clamping day to the last valid day
// of the month. Requesting Feb 31 yields Feb 28 (or 29 in a leap year);
// day 31 in a 30-day month yields day 30. Never fails for day >= 1.
func SafeDate(year int, month time.Month, day int, loc *time.Location) time.Time {
	if last := DaysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// DaysIn returns the number of days in the given month
func DaysIn(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Parse parses a YYYY-MM-DD date in loc, clamping an out-of-range day
// the same way SafeDate does
func Parse(s string, loc *time.Location) (time.Time, error) {
	var year, month, day int
	if _, err := fmt.Sscanf(s, "%d-%d-%d", &year, &month, &day); err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, fmt.Errorf("parse date %q: out of range", s)
	}
	return SafeDate(year, time.Month(month), day, loc), nil
}

// ParseTime parses an HH:MM time of day
func ParseTime(s string) (hour, minute int, err error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return 0, 0, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// At combines a date with an HH:MM time of day
func At(date time.Time, hour, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
}

// ExclusiveEnd converts the last included day of an all-day span into
// the stored end date (one day past). Applied exactly once, at event
// creation.
func ExclusiveEnd(dateTo time.Time) time.Time {
	return dateTo.AddDate(0, 0, 1)
}

// InclusiveEnd inverts ExclusiveEnd for display: the stored exclusive
// end maps back to the last day the user meant.
func InclusiveEnd(storedEnd time.Time) time.Time {
	return storedEnd.AddDate(0, 0, -1)
}

// MonthBounds returns the half-open window [first of month, first of
// next month) covering every day of date's month inclusive
func MonthBounds(date time.Time) (start, end time.Time) {
	start = time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	return start, start.AddDate(0, 1, 0)
}

// DayBounds returns the half-open window covering date's calendar day
func DayBounds(date time.Time) (start, end time.Time) {
	start = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return start, start.AddDate(0, 0, 1)
}

// WeekBounds returns the half-open window for date's week, Monday
// through Sunday
func WeekBounds(date time.Time) (start, end time.Time) {
	day, _ := DayBounds(date)
	offset := int(day.Weekday()-time.Monday+7) % 7
	start = day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}
