package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date in the hotel's local calendar, serialized as
// YYYY-MM-DD. It deliberately carries no time-of-day or timezone so a
// check-in date can never shift across a timezone conversion. Because the
// format is fixed-width ISO, ordering is plain string comparison.
type Date string

// ParseDate validates s against DateLayout and returns it as a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	// Round-trip guards against partial layouts like 2025-1-2.
	if t.Format(DateLayout) != s {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date(s), nil
}

// Today returns the current calendar date in UTC.
func Today() Date {
	return Date(time.Now().UTC().Format(DateLayout))
}

func (d Date) String() string { return string(d) }

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d == "" }

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool { return d < other }

// AddDays returns the date n days after d. It assumes d is valid.
func (d Date) AddDays(n int) Date {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return d
	}
	return Date(t.AddDate(0, 0, n).Format(DateLayout))
}

// Time returns the date as midnight UTC, for range queries that need a
// time.Time boundary.
func (d Date) Time() time.Time {
	t, _ := time.Parse(DateLayout, string(d))
	return t
}

// RangesOverlap reports whether the half-open ranges [a1,b1) and [a2,b2)
// intersect: a1 < b2 && a2 < b1. A stay ending on the day another begins
// does not overlap, matching hotel night counting.
func RangesOverlap(a1, b1, a2, b2 Date) bool {
	return a1 < b2 && a2 < b1
}
