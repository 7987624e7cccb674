// Package timeutil handles the ISO-8601 datetime strings stored and
// exchanged by the backend. Server-assigned values are UTC at second
// precision with an explicit numeric offset.
package timeutil

import (
	"time"
)

// canonicalLayout renders UTC as "+00:00" rather than "Z", matching the
// format of existing database files.
const canonicalLayout = "2006-01-02T15:04:05-07:00"

// acceptedLayouts are tried in order when parsing caller-supplied values.
// RFC 3339 covers offsets and optional fractional seconds; the bare
// layouts accept values without a zone designator.
var acceptedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// NowString returns the current UTC time, second precision, as a string.
func NowString() string {
	return time.Now().UTC().Truncate(time.Second).Format(canonicalLayout)
}

// Parse parses an ISO-8601 datetime string.
func Parse(value string) (time.Time, error) {
	var firstErr error
	for _, layout := range acceptedLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// Valid reports whether value parses as an ISO-8601 datetime.
func Valid(value string) bool {
	_, err := Parse(value)
	return err == nil
}

// IsFuture reports whether value is strictly after the current UTC time.
func IsFuture(value string) (bool, error) {
	t, err := Parse(value)
	if err != nil {
		return false, err
	}
	return t.After(time.Now().UTC()), nil
}

// Expiry returns the datetime string for an instant d from now, UTC.
func Expiry(d time.Duration) string {
	return time.Now().UTC().Add(d).Truncate(time.Second).Format(canonicalLayout)
}
