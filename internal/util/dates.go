package util

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("invalid date format (use YYYY-MM-DD or RFC3339)")

// parseDate accepts RFC3339 or YYYY-MM-DD. Blank input is "not set".
func parseDate(s *string) (t time.Time, set bool, dateOnly bool, err error) {
	if s == nil {
		return time.Time{}, false, false, nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return time.Time{}, false, false, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true, false, nil
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, true, true, nil
	}
	return time.Time{}, false, false, ErrInvalidDate
}

// ParseDateRange turns optional start/end filters into [start, endExclusive).
// A date-only end covers that whole day. Reversed bounds are swapped.
func ParseDateRange(startStr, endStr *string) (start time.Time, hasStart bool, endExclusive time.Time, hasEnd bool, err error) {
	start, hasStart, _, err = parseDate(startStr)
	if err != nil {
		return time.Time{}, false, time.Time{}, false, err
	}
	end, hasEnd, endDateOnly, err := parseDate(endStr)
	if err != nil {
		return time.Time{}, false, time.Time{}, false, err
	}

	if hasStart && hasEnd && end.Before(start) {
		start, end = end, start
	}

	if hasEnd {
		endExclusive = end
		if endDateOnly {
			endExclusive = end.AddDate(0, 0, 1)
		}
	}
	return start, hasStart, endExclusive, hasEnd, nil
}
