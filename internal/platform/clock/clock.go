// Package clock provides an injectable source of "now" so liveness and
// segmentation logic stay deterministic under test
package clock

import "time"

// Clock yields the current time
type Clock interface {
	Now() time.Time
}

// System reads the ambient wall clock
type System struct{}

// Now implements Clock
func (System) Now() time.Time { return time.Now() }

// Fixed is a Clock pinned to one instant
type Fixed struct{ T time.Time }

// Now implements Clock
func (f Fixed) Now() time.Time { return f.T }

// At returns a Fixed clock pinned to t
func At(t time.Time) Fixed { return Fixed{T: t} }

// AtUnix returns a Fixed clock pinned to fractional epoch seconds
func AtUnix(secs float64) Fixed {
	s := int64(secs)
	ns := int64((secs - float64(s)) * 1e9)
	return Fixed{T: time.Unix(s, ns).UTC()}
}

// Unix converts a time to fractional epoch seconds
func Unix(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// Ptr returns a pointer to t or nil if t is zero
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
