// Package biztime keeps wall-clock handling in one place. Every timestamp
// written to the store or the identity cache is UTC with microsecond
// precision so that values survive a database or JSON round trip unchanged.
package biztime

import "time"

// Clock returns the current time.
type Clock func() time.Time

// Now returns the current time normalised for storage.
func Now() time.Time {
	return Normalize(time.Now())
}

// Normalize converts t to UTC, drops the monotonic reading and truncates
// to microseconds.
func Normalize(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC().Round(0).Truncate(time.Microsecond)
}

// NormalizePtr is Normalize for nullable columns.
func NormalizePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	n := Normalize(*t)
	return &n
}
