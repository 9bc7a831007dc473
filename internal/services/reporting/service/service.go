// Package service implements the reporting facade: per-violation
// attribution, per-identity day summaries, and the bounded-concurrency bulk
// path. Everything re-queries the event store on each call; callers own any
// caching
package service

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"deskwatch/internal/core/identity"
	"deskwatch/internal/core/workday"
	"deskwatch/internal/platform/clock"
	perr "deskwatch/internal/platform/errors"
	"deskwatch/internal/platform/logger"
	attrdom "deskwatch/internal/services/attribution/domain"
	eventsdom "deskwatch/internal/services/events/domain"
	"deskwatch/internal/services/reporting/domain"
)

// Config for the reporting service
type Config struct {
	// Workers bounds in-flight per-identity fetches in bulk runs;
	// defaults to 4 if <= 0
	Workers int

	// Strict is the default all-or-nothing flag for bulk runs
	Strict bool

	// Workday carries the segmentation boundaries
	Workday workday.Config

	// Loc is the timezone day windows are computed in; defaults to UTC
	Loc *time.Location
}

// Service implements domain.FacadePort
type Service struct {
	Fetcher  eventsdom.FetcherPort
	Resolver attrdom.ResolverPort
	Clock    clock.Clock
	Cfg      Config
	Log      *logger.Logger
}

// New constructs a new reporting service
func New(fetcher eventsdom.FetcherPort, resolver attrdom.ResolverPort, clk clock.Clock, cfg Config) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Loc == nil {
		cfg.Loc = time.UTC
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{Fetcher: fetcher, Resolver: resolver, Clock: clk, Cfg: cfg, Log: logger.Named("reporting")}
}

// dayWindow resolves a YYYY-MM-DD date to its epoch-second interval
func (s *Service) dayWindow(date string) (workday.Window, error) {
	t, err := time.ParseInLocation("2006-01-02", date, s.Cfg.Loc)
	if err != nil {
		return workday.Window{}, perr.InvalidArgf("reporting: bad date %q (want YYYY-MM-DD)", date)
	}
	start := t
	end := t.AddDate(0, 0, 1)
	return workday.Window{Start: clock.Unix(start), End: clock.Unix(end)}, nil
}

// AttributeViolation implements domain.FacadePort
func (s *Service) AttributeViolation(ctx context.Context, ev eventsdom.DetectionEvent) (attrdom.Result, error) {
	return s.Resolver.AttributeViolation(ctx, ev)
}

// attributed pairs a violation event with its resolved identity
type attributed struct {
	ev  eventsdom.DetectionEvent
	res attrdom.Result
}

// attributeWindow fetches every violation in the window and resolves each
func (s *Service) attributeWindow(ctx context.Context, since, until float64) ([]attributed, error) {
	evs, err := s.Fetcher.FetchEvents(ctx, eventsdom.Query{
		Label: eventsdom.LabelPhoneViolation,
		Since: since,
		Until: until,
	})
	if err != nil {
		return nil, err
	}
	out := make([]attributed, 0, len(evs))
	for _, ev := range evs {
		res, err := s.Resolver.AttributeViolation(ctx, ev)
		if err != nil {
			return nil, err
		}
		out = append(out, attributed{ev: ev, res: res})
	}
	return out, nil
}

// buildSummary assembles one identity's DailySummary from its detection
// stamps and the day's attributed violations
func (s *Service) buildSummary(id, date string, win workday.Window, now float64, stamps []float64, day []attributed) domain.DailySummary {
	ws := s.Cfg.Workday.Summarize(stamps, win, now)

	out := domain.DailySummary{
		Identity:      id,
		Date:          date,
		Status:        string(ws.Status),
		Arrival:       ws.Arrival,
		Departure:     ws.Departure,
		TotalSeconds:  ws.TotalSecs,
		OfficeSeconds: ws.OfficeSecs,
		BreakSeconds:  ws.BreakSecs,
		BreakCount:    ws.BreakCount,
		IdleSeconds:   ws.IdleSecs,
		Segments:      ws.Segments,
	}
	for _, a := range day {
		if !identity.Equal(a.res.Identity, id) {
			continue
		}
		out.ViolationCount++
		out.Segments = append(out.Segments, s.Cfg.Workday.ViolationSegment(a.ev.Timestamp))
	}
	out.ViolationSeconds = float64(out.ViolationCount) * s.Cfg.Workday.ViolationSecs
	sort.SliceStable(out.Segments, func(i, j int) bool { return out.Segments[i].Start < out.Segments[j].Start })
	return out
}

// SummarizeDay implements domain.FacadePort
func (s *Service) SummarizeDay(ctx context.Context, id, date string) (domain.DailySummary, error) {
	win, err := s.dayWindow(date)
	if err != nil {
		return domain.DailySummary{}, err
	}

	stamps, err := s.Fetcher.PersonTimestamps(ctx, id, win.Start, win.End)
	if err != nil {
		return domain.DailySummary{}, perr.WithOp(err, "summarize_day")
	}
	day, err := s.attributeWindow(ctx, win.Start, win.End)
	if err != nil {
		return domain.DailySummary{}, perr.WithOp(err, "summarize_day")
	}

	now := clock.Unix(s.Clock.Now())
	return s.buildSummary(id, date, win, now, stamps, day), nil
}

// SummarizeAll implements domain.FacadePort. Violations are fetched and
// attributed once; the per-identity timestamp fetches run on a bounded
// worker pool
func (s *Service) SummarizeAll(ctx context.Context, date string, opts domain.BulkOptions) ([]domain.DayResult, error) {
	win, err := s.dayWindow(date)
	if err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = s.Cfg.Workers
	}

	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID, "")
	log := logger.C(ctx)

	ids, err := s.Fetcher.DistinctIdentities(ctx, win.Start, win.End)
	if err != nil {
		return nil, perr.WithOp(err, "summarize_all")
	}
	day, err := s.attributeWindow(ctx, win.Start, win.End)
	if err != nil {
		return nil, perr.WithOp(err, "summarize_all")
	}
	now := clock.Unix(s.Clock.Now())

	cctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]domain.DayResult, len(ids))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, id := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, id string) {
			defer func() { <-sem; wg.Done() }()
			if cctx.Err() != nil {
				results[i] = domain.DayResult{Identity: id, Err: cctx.Err(), ErrMsg: cctx.Err().Error()}
				return
			}
			stamps, err := s.Fetcher.PersonTimestamps(logger.WithRun(cctx, runID, id), id, win.Start, win.End)
			if err != nil {
				results[i] = domain.DayResult{Identity: id, Err: err, ErrMsg: err.Error()}
				if opts.Strict {
					cancel()
				}
				return
			}
			sum := s.buildSummary(id, date, win, now, stamps, day)
			results[i] = domain.DayResult{Identity: id, Summary: &sum}
		}(i, id)
	}
	wg.Wait()

	if opts.Strict {
		for _, r := range results {
			if r.Err != nil {
				return nil, perr.WithOp(r.Err, "summarize_all")
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Identity < results[j].Identity })
	log.Info().Str("date", date).Int("identities", len(ids)).Int("workers", workers).Msg("bulk summary complete")
	return results, nil
}

// ViolationTrend implements domain.FacadePort
func (s *Service) ViolationTrend(ctx context.Context, since, until float64) ([]domain.TrendBucket, error) {
	day, err := s.attributeWindow(ctx, since, until)
	if err != nil {
		return nil, perr.WithOp(err, "violation_trend")
	}

	byHour := map[float64]*domain.TrendBucket{}
	for _, a := range day {
		hour := math.Floor(a.ev.Timestamp/3600) * 3600
		b := byHour[hour]
		if b == nil {
			b = &domain.TrendBucket{HourStart: hour, ByIdentity: map[string]int{}}
			byHour[hour] = b
		}
		b.Total++
		b.ByIdentity[a.res.Identity]++
	}

	out := make([]domain.TrendBucket, 0, len(byHour))
	for _, b := range byHour {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HourStart < out[j].HourStart })
	return out, nil
}
