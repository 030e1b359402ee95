package dateutil

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date layout used for every stored and displayed date key
const DateLayout = "2006-01-02"

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// Today returns today's date (start of day)
func Today() time.Time {
	return StartOfDay(time.Now())
}

// FormatDate formats a date as YYYY-MM-DD
func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string at midnight in loc.
// A nil loc means time.Local.
func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, dateStr, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid calendar date %q: %w", dateStr, err)
	}
	return t, nil
}

// IsDate reports whether s is a valid YYYY-MM-DD calendar date
func IsDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// AddDays returns the start of the day n calendar days after date.
// Uses AddDate so DST transitions do not shift the result off midnight.
func AddDays(date time.Time, n int) time.Time {
	return StartOfDay(date).AddDate(0, 0, n)
}
