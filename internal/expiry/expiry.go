// Package expiry computes the value of the Expires field.
package expiry

import (
	"fmt"
	"time"
)

// Layout is the timestamp format written into Expires fields.
// RFC 9116 requires an RFC 3339 date-time; we always render UTC with a "Z".
const Layout = time.RFC3339

// Resolve returns the expiration for a document prepared at now.
//
// The candidate is now plus maxAgeDays calendar days in UTC, truncated to
// the second. When keyExpiry is set and the candidate is not before it, the
// key expiry wins: a document must never outlive the key that signs it.
func Resolve(now time.Time, maxAgeDays int, keyExpiry *time.Time) time.Time {
	candidate := now.UTC().AddDate(0, 0, maxAgeDays).Truncate(time.Second)
	if keyExpiry == nil {
		return candidate
	}

	bound := keyExpiry.UTC().Truncate(time.Second)
	if !candidate.Before(bound) {
		return bound
	}
	return candidate
}

// Format renders t the way it appears in an Expires field.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse reads an Expires value.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid Expires value %q: %w", s, err)
	}
	return t.UTC(), nil
}

// BoundedByKey reports whether Resolve picked the key expiry.
func BoundedByKey(now time.Time, maxAgeDays int, keyExpiry *time.Time) bool {
	if keyExpiry == nil {
		return false
	}
	return Resolve(now, maxAgeDays, keyExpiry).Equal(keyExpiry.UTC().Truncate(time.Second))
}
