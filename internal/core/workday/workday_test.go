package workday

import (
	"math"
	"reflect"
	"testing"
)

// a day window comfortably around the small epoch stamps used below
var day = Window{Start: 0, End: 86400}

// farNow keeps liveness out of the picture for closed-day cases
const farNow = 80000.0

func TestSummarizeNoiseFilterScenario(t *testing.T) {
	c := DefaultConfig()

	// gaps [10, 10, 380, 20]: the 380s gap qualifies by duration but opens
	// 20s after arrival, inside the grace period
	s := c.Summarize([]float64{1000, 1010, 1020, 1400, 1420}, day, farNow)

	if s.BreakCount != 0 || s.BreakSecs != 0 {
		t.Fatalf("break = (%d, %v), want none", s.BreakCount, s.BreakSecs)
	}
	if s.TotalSecs != 420 || s.OfficeSecs != 420 {
		t.Fatalf("total/office = %v/%v, want 420/420", s.TotalSecs, s.OfficeSecs)
	}
	if s.Status != StatusLeft || s.Departure == nil || *s.Departure != 1420 {
		t.Fatalf("unexpected liveness outcome: %+v", s)
	}
}

func TestSummarizeBreakBoundaries(t *testing.T) {
	c := DefaultConfig()
	// arrival run long enough that the grace filter never interferes
	lead := []float64{1000, 1100, 1200, 1300, 1400}

	cases := []struct {
		name     string
		gap      float64
		breaks   int
		idleSecs float64
		excluded bool
	}{
		{"exactly 300s is a break", 300, 1, 0, false},
		{"299s is idle, not a break", 299, 0, 299, false},
		{"exactly 10800s is a break", 10800, 1, 0, false},
		{"10801s is excluded entirely", 10801, 0, 0, true},
		{"119s is plain presence", 119, 0, 0, false},
		{"exactly 120s is idle", 120, 0, 120, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stamps := append(append([]float64{}, lead...), 1400+tc.gap, 1400+tc.gap+100)
			s := c.Summarize(stamps, day, farNow)

			if s.BreakCount != tc.breaks {
				t.Fatalf("break count = %d, want %d", s.BreakCount, tc.breaks)
			}
			if s.IdleSecs != tc.idleSecs {
				t.Fatalf("idle = %v, want %v", s.IdleSecs, tc.idleSecs)
			}
			wantTotal := stamps[len(stamps)-1] - stamps[0]
			if tc.excluded {
				wantTotal -= tc.gap
			}
			if math.Abs(s.TotalSecs-wantTotal) > 1e-9 {
				t.Fatalf("total = %v, want %v", s.TotalSecs, wantTotal)
			}
		})
	}
}

func TestSummarizeGraceBoundary(t *testing.T) {
	c := DefaultConfig()

	// gap opens exactly at arrival+300: eligible
	s := c.Summarize([]float64{1000, 1300, 1700, 1800}, day, farNow)
	if s.BreakCount != 1 || s.BreakSecs != 400 {
		t.Fatalf("gap at arrival+grace should be a break, got %+v", s)
	}

	// gap opens at arrival+299: suppressed
	s = c.Summarize([]float64{1000, 1299, 1699, 1800}, day, farNow)
	if s.BreakCount != 0 {
		t.Fatalf("gap inside grace should be suppressed, got %+v", s)
	}
}

func TestSummarizeOfficePlusBreakEqualsTotal(t *testing.T) {
	c := DefaultConfig()

	stamps := []float64{
		28800, 28900, 29000, 30000, 30100,
		31000, 31900, // two 900s breaks once past the grace period
		32000, 32100, 45000, // 12900s data gap, excluded
		45100, 46000, 46400,
	}
	s := c.Summarize(stamps, day, farNow)

	if math.Abs(s.OfficeSecs+s.BreakSecs-s.TotalSecs) > 1e-6 {
		t.Fatalf("office+break != total: %v + %v != %v", s.OfficeSecs, s.BreakSecs, s.TotalSecs)
	}
	if s.BreakCount == 0 {
		t.Fatal("expected at least one break in this shape")
	}
}

func TestSummarizeSegmentsOrderedAndDisjointPerKind(t *testing.T) {
	c := DefaultConfig()
	stamps := []float64{1000, 1400, 1600, 2200, 2400, 2600, 3300, 3400}
	s := c.Summarize(stamps, day, farNow)

	last := map[SegmentKind]float64{}
	prevStart := math.Inf(-1)
	for _, seg := range s.Segments {
		if seg.Start < prevStart {
			t.Fatalf("segments not ordered by start: %+v", s.Segments)
		}
		prevStart = seg.Start
		if seg.Start < last[seg.Kind] {
			t.Fatalf("%s segments overlap: %+v", seg.Kind, s.Segments)
		}
		last[seg.Kind] = seg.End
		if math.Abs(seg.DurationSecs-(seg.End-seg.Start)) > 1e-9 {
			t.Fatalf("duration mismatch: %+v", seg)
		}
	}
}

func TestSummarizeStillPresent(t *testing.T) {
	c := DefaultConfig()
	now := 50000.0

	s := c.Summarize([]float64{48000, 48500, 49000}, day, now)
	if s.Status != StatusPresent || s.Departure != nil {
		t.Fatalf("want still present, got %+v", s)
	}
	// open day accrues up to now
	if s.TotalSecs != now-48000 {
		t.Fatalf("total = %v, want %v", s.TotalSecs, now-48000)
	}

	// stale last detection means departed even though the day is open
	s = c.Summarize([]float64{40000, 41000}, day, now)
	if s.Status != StatusLeft || s.Departure == nil || *s.Departure != 41000 {
		t.Fatalf("want departed, got %+v", s)
	}

	// a closed day can never be still-present
	s = c.Summarize([]float64{48000, 49000}, Window{Start: 0, End: 49500}, now)
	if s.Status != StatusLeft {
		t.Fatalf("closed day must resolve to left, got %+v", s)
	}
}

func TestSummarizeDegenerateInputs(t *testing.T) {
	c := DefaultConfig()

	s := c.Summarize(nil, day, farNow)
	if s.Status != StatusNotPresent || s.TotalSecs != 0 || len(s.Segments) != 0 {
		t.Fatalf("empty input should be not_present/zero, got %+v", s)
	}

	s = c.Summarize([]float64{5000}, day, farNow)
	if s.TotalSecs != 0 || s.BreakCount != 0 {
		t.Fatalf("single stamp should be zero-width, got %+v", s)
	}
	if s.Departure == nil || *s.Departure != 5000 || s.Arrival != 5000 {
		t.Fatalf("single stamp arrival/departure mismatch: %+v", s)
	}

	// junk stamps are dropped, order is not trusted, duplicates collapse
	s = c.Summarize([]float64{math.NaN(), -5, 2000, 1000, 2000, math.Inf(1)}, day, farNow)
	if s.Arrival != 1000 || s.Departure == nil || *s.Departure != 2000 {
		t.Fatalf("sanitize failed: %+v", s)
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	c := DefaultConfig()
	stamps := []float64{1000, 1500, 2000, 2600, 9000, 9400}
	now := 9500.0

	a := c.Summarize(stamps, day, now)
	b := c.Summarize(stamps, day, now)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same inputs, fixed clock, different outputs:\n%+v\n%+v", a, b)
	}
}

func TestViolationSegment(t *testing.T) {
	c := DefaultConfig()
	seg := c.ViolationSegment(7000)
	if seg.Kind != KindViolation || seg.Start != 7000 || seg.End != 7060 || seg.DurationSecs != 60 {
		t.Fatalf("unexpected violation segment: %+v", seg)
	}
}
