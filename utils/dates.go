package utils

import (
	"fmt"
	"time"
)

// ISODateLayout is the wire format for all check-in/check-out dates.
const ISODateLayout = "2006-01-02"

// ParseISODate parses a YYYY-MM-DD string into a UTC calendar date.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(ISODateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// Nights returns the number of nights between two calendar dates.
func Nights(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

// Truncate drops any time-of-day component, keeping the calendar date.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RangesOverlap reports whether two half-open date ranges [start1, end1)
// and [start2, end2) intersect. Adjacent ranges do not overlap, so a
// checkout day may coincide with another booking's check-in.
func RangesOverlap(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && start2.Before(end1)
}
