package calendar

import (
	"errors"
	"fmt"
	"time"
)

// ErrMonthOutOfRange is returned for month indexes outside 0..11
var ErrMonthOutOfRange = errors.New("month index out of range")

// Week is one calendar row, Sunday first. A zero cell is a blank.
type Week [7]int

// MonthMatrix lays out a month as Sunday-first weeks.
// monthIndex is zero-based (0 = January). The first row is padded with blanks up to
// the starting weekday and the last row after the final day.
func MonthMatrix(year, monthIndex int) ([]Week, error) {
	if err := checkMonth(monthIndex); err != nil {
		return nil, err
	}

	first := time.Date(year, time.Month(monthIndex+1), 1, 12, 0, 0, 0, time.UTC)
	startWeekday := int(first.Weekday())
	days := daysIn(year, monthIndex)

	weeks := make([]Week, 0, 6)
	for day := 1 - startWeekday; day <= days; {
		var week Week
		for i := range week {
			if day >= 1 && day <= days {
				week[i] = day
			}
			day++
		}
		weeks = append(weeks, week)
	}

	return weeks, nil
}

// DaysInMonth returns the number of days in the zero-based month, leap years included
func DaysInMonth(year, monthIndex int) (int, error) {
	if err := checkMonth(monthIndex); err != nil {
		return 0, err
	}
	return daysIn(year, monthIndex), nil
}

// DateString formats a zero-based month and day-of-month as YYYY-MM-DD
func DateString(year, monthIndex, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, monthIndex+1, day)
}

// NextMonth returns the following month index, wrapping December to January
func NextMonth(monthIndex int) int {
	if monthIndex >= 11 {
		return 0
	}
	return monthIndex + 1
}

// PrevMonth returns the preceding month index, wrapping January to December
func PrevMonth(monthIndex int) int {
	if monthIndex <= 0 {
		return 11
	}
	return monthIndex - 1
}

// MonthName returns the English name of a zero-based month
func MonthName(monthIndex int) string {
	if checkMonth(monthIndex) != nil {
		return ""
	}
	return time.Month(monthIndex + 1).String()
}

func checkMonth(monthIndex int) error {
	if monthIndex < 0 || monthIndex > 11 {
		return fmt.Errorf("%w: %d", ErrMonthOutOfRange, monthIndex)
	}
	return nil
}

// daysIn relies on time.Date normalizing day 0 of the next month to the last day of this one
func daysIn(year, monthIndex int) int {
	return time.Date(year, time.Month(monthIndex+2), 0, 12, 0, 0, 0, time.UTC).Day()
}
