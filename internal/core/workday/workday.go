// Package workday partitions one identity's detection timestamps for a single
// day into office, break and idle intervals under fixed gap-classification
// rules. Everything here is a pure function of its inputs; "now" is injected
package workday

import (
	"math"
	"sort"
)

// SegmentKind classifies a slice of an identity-day
type SegmentKind string

const (
	KindOffice    SegmentKind = "office"
	KindBreak     SegmentKind = "break"
	KindIdle      SegmentKind = "idle"
	KindViolation SegmentKind = "violation"
)

// Status is the liveness verdict for an identity-day
type Status string

const (
	StatusPresent    Status = "present"
	StatusLeft       Status = "left"
	StatusNotPresent Status = "not_present"
)

// Segment is a maximal classified interval. Segments of one kind never
// overlap; idle segments overlay office time rather than cutting into it
type Segment struct {
	Kind         SegmentKind `json:"kind"`
	Start        float64     `json:"start"`
	End          float64     `json:"end"`
	DurationSecs float64     `json:"duration_seconds"`
}

// Window is the day being summarized, as a half-open epoch-seconds interval
type Window struct {
	Start float64
	End   float64
}

// Covers reports whether ts falls inside the window
func (w Window) Covers(ts float64) bool { return ts >= w.Start && ts < w.End }

// Config holds the gap-classification boundaries. All of them are policy,
// not invariants, and are exposed as tunables
type Config struct {
	// BreakMinSecs..BreakMaxSecs is the band a gap must fall in to count
	// as a break
	BreakMinSecs float64
	BreakMaxSecs float64

	// IdleMinSecs..BreakMinSecs is the idle band, reported as a
	// diagnostic overlay on office time
	IdleMinSecs float64

	// ArrivalGraceSecs suppresses break classification for gaps that open
	// within this long of arrival (spurious immediate-departure noise in
	// the raw stream)
	ArrivalGraceSecs float64

	// LivenessSecs is the maximum staleness of the last detection before
	// the person is considered departed rather than still present
	LivenessSecs float64

	// ViolationSecs is the fixed duration charged per violation event
	ViolationSecs float64
}

// DefaultConfig returns the production boundaries
func DefaultConfig() Config {
	return Config{
		BreakMinSecs:     300,
		BreakMaxSecs:     10800,
		IdleMinSecs:      120,
		ArrivalGraceSecs: 300,
		LivenessSecs:     1800,
		ViolationSecs:    60,
	}
}

// Summary is the segmentation outcome for one identity-day
type Summary struct {
	Status     Status    `json:"status"`
	Arrival    float64   `json:"arrival"`
	Departure  *float64  `json:"departure"` // nil while still present
	TotalSecs  float64   `json:"total_seconds"`
	OfficeSecs float64   `json:"office_seconds"`
	BreakSecs  float64   `json:"break_seconds"`
	BreakCount int       `json:"break_count"`
	IdleSecs   float64   `json:"idle_seconds"`
	Segments   []Segment `json:"segments"`
}

// sanitize sorts, deduplicates and drops non-finite or negative stamps.
// Callers are not trusted to pre-sort
func sanitize(stamps []float64) []float64 {
	out := make([]float64, 0, len(stamps))
	for _, ts := range stamps {
		if math.IsNaN(ts) || math.IsInf(ts, 0) || ts < 0 {
			continue
		}
		out = append(out, ts)
	}
	sort.Float64s(out)
	dedup := out[:0]
	for i, ts := range out {
		if i == 0 || ts != out[i-1] {
			dedup = append(dedup, ts)
		}
	}
	return dedup
}

// Summarize computes the Summary for one identity's stamps within day,
// evaluating liveness against the injected now
func (c Config) Summarize(stamps []float64, day Window, now float64) Summary {
	ts := sanitize(stamps)
	if len(ts) == 0 {
		return Summary{Status: StatusNotPresent}
	}

	arrival := ts[0]
	last := ts[len(ts)-1]

	still := day.Covers(now) && now-last < c.LivenessSecs
	end := last
	s := Summary{Status: StatusLeft, Arrival: arrival}
	if still {
		s.Status = StatusPresent
		end = math.Max(now, last)
	} else {
		dep := last
		s.Departure = &dep
	}

	var (
		segments []Segment
		excluded float64
		runStart = arrival
	)
	flushOffice := func(to float64) {
		if to > runStart {
			segments = append(segments, Segment{Kind: KindOffice, Start: runStart, End: to, DurationSecs: to - runStart})
		}
	}
	for i := 0; i+1 < len(ts); i++ {
		gap := ts[i+1] - ts[i]
		switch {
		case gap > c.BreakMaxSecs:
			// data gap, not a break: drop it from all accounting
			flushOffice(ts[i])
			runStart = ts[i+1]
			excluded += gap
		case gap >= c.BreakMinSecs && ts[i]-arrival >= c.ArrivalGraceSecs:
			flushOffice(ts[i])
			runStart = ts[i+1]
			segments = append(segments, Segment{Kind: KindBreak, Start: ts[i], End: ts[i+1], DurationSecs: gap})
			s.BreakSecs += gap
			s.BreakCount++
		case gap >= c.IdleMinSecs && gap < c.BreakMinSecs:
			segments = append(segments, Segment{Kind: KindIdle, Start: ts[i], End: ts[i+1], DurationSecs: gap})
			s.IdleSecs += gap
		}
	}
	flushOffice(end)

	s.TotalSecs = end - arrival - excluded
	s.OfficeSecs = s.TotalSecs - s.BreakSecs

	sort.SliceStable(segments, func(i, j int) bool { return segments[i].Start < segments[j].Start })
	s.Segments = segments
	return s
}

// ViolationSegment builds the fixed-duration segment charged for one
// violation event. Violation time is accounted independently and never cuts
// into office or break time
func (c Config) ViolationSegment(ts float64) Segment {
	return Segment{Kind: KindViolation, Start: ts, End: ts + c.ViolationSecs, DurationSecs: c.ViolationSecs}
}
