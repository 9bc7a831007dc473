package service

import (
	"context"
	"math"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"deskwatch/internal/core/attribution"
	"deskwatch/internal/core/workday"
	"deskwatch/internal/platform/clock"
	perr "deskwatch/internal/platform/errors"
	attrdom "deskwatch/internal/services/attribution/domain"
	eventsdom "deskwatch/internal/services/events/domain"
	"deskwatch/internal/services/reporting/domain"
)

var dayStart = clock.Unix(time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC))

// fakeFetcher is safe for the concurrent bulk path
type fakeFetcher struct {
	mu         sync.Mutex
	violations []eventsdom.DetectionEvent
	stamps     map[string][]float64
	stampErr   map[string]error
	identities []string

	inFlight    int64
	maxInFlight int64
	delay       time.Duration
}

func (f *fakeFetcher) FetchEvents(ctx context.Context, q eventsdom.Query) ([]eventsdom.DetectionEvent, error) {
	return f.violations, nil
}

func (f *fakeFetcher) PersonTimestamps(ctx context.Context, id string, since, until float64) ([]float64, error) {
	cur := atomic.AddInt64(&f.inFlight, 1)
	defer atomic.AddInt64(&f.inFlight, -1)
	for {
		prev := atomic.LoadInt64(&f.maxInFlight)
		if cur <= prev || atomic.CompareAndSwapInt64(&f.maxInFlight, prev, cur) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.stampErr[id]; err != nil {
		return nil, err
	}
	return f.stamps[id], nil
}

func (f *fakeFetcher) DistinctIdentities(ctx context.Context, since, until float64) ([]string, error) {
	return f.identities, nil
}

// fakeResolver attributes by a canned source_id map
type fakeResolver struct {
	byID map[string]attrdom.Result
}

func (f *fakeResolver) AttributeViolation(ctx context.Context, ev eventsdom.DetectionEvent) (attrdom.Result, error) {
	if r, ok := f.byID[ev.SourceID]; ok {
		return r, nil
	}
	return attrdom.Result{Identity: attribution.Unknown, Method: attribution.MethodUnresolved}, nil
}

func violationAt(ts float64, id string) eventsdom.DetectionEvent {
	return eventsdom.DetectionEvent{Timestamp: ts, Label: eventsdom.LabelPhoneViolation, SourceID: id}
}

func newFacade(f *fakeFetcher, r *fakeResolver, clk clock.Clock) *Service {
	return New(f, r, clk, Config{Workers: 4, Workday: workday.DefaultConfig(), Loc: time.UTC})
}

func TestSummarizeDay(t *testing.T) {
	f := &fakeFetcher{
		stamps: map[string][]float64{
			"Khalid Ahmed": {dayStart + 32000, dayStart + 32400, dayStart + 33000, dayStart + 34000, dayStart + 34400},
		},
		violations: []eventsdom.DetectionEvent{
			violationAt(dayStart+32500, "v1"),
			violationAt(dayStart+33500, "v2"),
			violationAt(dayStart+34000, "v3"),
		},
	}
	r := &fakeResolver{byID: map[string]attrdom.Result{
		"v1": {Identity: "Khalid Ahmed", Confidence: 0.9, Method: attribution.MethodZoneOnly},
		"v2": {Identity: "khalid  ahmed", Confidence: 0.95, Method: attribution.MethodZoneMatchFaceConfirmed},
		"v3": {Identity: "Ali Raza", Confidence: 0.9, Method: attribution.MethodZoneOnly},
	}}
	svc := newFacade(f, r, clock.AtUnix(dayStart+80000))

	sum, err := svc.SummarizeDay(context.Background(), "Khalid Ahmed", "2026-08-20")
	if err != nil {
		t.Fatalf("SummarizeDay: %v", err)
	}

	if sum.ViolationCount != 2 || sum.ViolationSeconds != 120 {
		t.Fatalf("violations = (%d, %v), want (2, 120)", sum.ViolationCount, sum.ViolationSeconds)
	}
	if math.Abs(sum.OfficeSeconds+sum.BreakSeconds-sum.TotalSeconds) > 1e-6 {
		t.Fatalf("office+break != total: %+v", sum)
	}
	if sum.Status != string(workday.StatusLeft) {
		t.Fatalf("status = %q, want left", sum.Status)
	}
	var violSegs int
	for _, seg := range sum.Segments {
		if seg.Kind == workday.KindViolation {
			violSegs++
		}
	}
	if violSegs != 2 {
		t.Fatalf("violation segments = %d, want 2", violSegs)
	}
}

func TestSummarizeDayIdempotentWithFixedClock(t *testing.T) {
	f := &fakeFetcher{
		stamps:     map[string][]float64{"Ali Raza": {dayStart + 1000, dayStart + 1500, dayStart + 3000}},
		violations: []eventsdom.DetectionEvent{violationAt(dayStart+1200, "v1")},
	}
	r := &fakeResolver{byID: map[string]attrdom.Result{"v1": {Identity: "Ali Raza"}}}
	svc := newFacade(f, r, clock.AtUnix(dayStart+4000))

	a, err := svc.SummarizeDay(context.Background(), "Ali Raza", "2026-08-20")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	b, err := svc.SummarizeDay(context.Background(), "Ali Raza", "2026-08-20")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("not idempotent:\n%+v\n%+v", a, b)
	}
}

func TestSummarizeDayBadDate(t *testing.T) {
	svc := newFacade(&fakeFetcher{}, &fakeResolver{}, clock.AtUnix(dayStart))
	if _, err := svc.SummarizeDay(context.Background(), "X", "20-08-2026"); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want invalid-argument for bad date, got %v", err)
	}
}

func TestSummarizeAllOrderedAndPartial(t *testing.T) {
	f := &fakeFetcher{
		identities: []string{"Khalid Ahmed", "Ali Raza", "Hira Memon"},
		stamps: map[string][]float64{
			"Ali Raza":     {dayStart + 1000, dayStart + 2000},
			"Khalid Ahmed": {dayStart + 1100, dayStart + 2100},
		},
		stampErr: map[string]error{"Hira Memon": perr.Unavailablef("store down")},
	}
	svc := newFacade(f, &fakeResolver{}, clock.AtUnix(dayStart+80000))

	results, err := svc.SummarizeAll(context.Background(), "2026-08-20", domain.BulkOptions{})
	if err != nil {
		t.Fatalf("SummarizeAll: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("want 3 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].Identity > results[i].Identity {
			t.Fatalf("results not ordered by identity: %+v", results)
		}
	}
	var failed, ok int
	for _, r := range results {
		if r.Err != nil {
			failed++
			if r.Identity != "Hira Memon" || r.Summary != nil {
				t.Fatalf("unexpected failed result: %+v", r)
			}
		} else {
			ok++
			if r.Summary == nil {
				t.Fatalf("missing summary for %s", r.Identity)
			}
		}
	}
	if failed != 1 || ok != 2 {
		t.Fatalf("failed/ok = %d/%d, want 1/2", failed, ok)
	}
}

func TestSummarizeAllStrictFailsBatch(t *testing.T) {
	f := &fakeFetcher{
		identities: []string{"Ali Raza", "Hira Memon"},
		stamps:     map[string][]float64{"Ali Raza": {dayStart + 1000}},
		stampErr:   map[string]error{"Hira Memon": perr.Unavailablef("store down")},
	}
	svc := newFacade(f, &fakeResolver{}, clock.AtUnix(dayStart+80000))

	if _, err := svc.SummarizeAll(context.Background(), "2026-08-20", domain.BulkOptions{Strict: true}); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("strict run should surface the failure, got %v", err)
	}
}

func TestSummarizeAllBoundsWorkers(t *testing.T) {
	ids := make([]string, 12)
	stamps := map[string][]float64{}
	for i := range ids {
		ids[i] = "Employee " + string(rune('A'+i))
		stamps[ids[i]] = []float64{dayStart + 1000}
	}
	f := &fakeFetcher{identities: ids, stamps: stamps, delay: 10 * time.Millisecond}
	svc := newFacade(f, &fakeResolver{}, clock.AtUnix(dayStart+80000))

	if _, err := svc.SummarizeAll(context.Background(), "2026-08-20", domain.BulkOptions{Workers: 2}); err != nil {
		t.Fatalf("SummarizeAll: %v", err)
	}
	if got := atomic.LoadInt64(&f.maxInFlight); got > 2 {
		t.Fatalf("worker bound violated: %d in flight", got)
	}
}

func TestViolationTrend(t *testing.T) {
	f := &fakeFetcher{violations: []eventsdom.DetectionEvent{
		violationAt(7200+10, "a"),
		violationAt(7200+20, "b"),
		violationAt(10800+5, "c"),
	}}
	r := &fakeResolver{byID: map[string]attrdom.Result{
		"a": {Identity: "Ali Raza"},
		"b": {Identity: "Khalid Ahmed"},
		"c": {Identity: "Ali Raza"},
	}}
	svc := newFacade(f, r, clock.AtUnix(20000))

	buckets, err := svc.ViolationTrend(context.Background(), 0, 20000)
	if err != nil {
		t.Fatalf("ViolationTrend: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("want 2 buckets, got %+v", buckets)
	}
	if buckets[0].HourStart != 7200 || buckets[0].Total != 2 || buckets[0].ByIdentity["Ali Raza"] != 1 {
		t.Fatalf("unexpected first bucket: %+v", buckets[0])
	}
	if buckets[1].HourStart != 10800 || buckets[1].Total != 1 {
		t.Fatalf("unexpected second bucket: %+v", buckets[1])
	}
}
