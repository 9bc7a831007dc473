// Package service implements the identity resolver over the event store
package service

import (
	"context"

	"deskwatch/internal/core/attribution"
	"deskwatch/internal/core/seating"
	perr "deskwatch/internal/platform/errors"
	"deskwatch/internal/platform/logger"
	"deskwatch/internal/services/attribution/domain"
	eventsdom "deskwatch/internal/services/events/domain"
)

// Service implements domain.ResolverPort
type Service struct {
	Fetcher eventsdom.FetcherPort
	Table   *seating.Table
	Policy  attribution.Policy
	Log     *logger.Logger
}

// New constructs a new attribution service
func New(fetcher eventsdom.FetcherPort, table *seating.Table, policy attribution.Policy) *Service {
	return &Service{Fetcher: fetcher, Table: table, Policy: policy, Log: logger.Named("attribution")}
}

// AttributeViolation implements domain.ResolverPort. Store failures
// propagate; missing zone or face data is not an error
func (s *Service) AttributeViolation(ctx context.Context, ev eventsdom.DetectionEvent) (domain.Result, error) {
	if ev.Label != eventsdom.LabelPhoneViolation {
		return domain.Result{}, perr.InvalidArgf("attribution: event %s has label %q, want %q", ev.SourceID, ev.Label, eventsdom.LabelPhoneViolation)
	}

	var zoneIdentity string
	if zone, ok := s.Policy.DeskZone(ev.Zones); ok {
		zoneIdentity, _ = s.Table.Lookup(zone)
	}

	face, err := s.verifyingFace(ctx, ev.Timestamp)
	if err != nil {
		return domain.Result{}, err
	}

	res := s.Policy.Combine(zoneIdentity, face)
	s.Log.Debug().
		Str("source_id", ev.SourceID).
		Str("identity", res.Identity).
		Str("method", string(res.Method)).
		Float64("confidence", res.Confidence).
		Msg("attributed violation")
	return res, nil
}

// verifyingFace collects recognized person sightings on any camera around ts
// and picks the best candidate per policy
func (s *Service) verifyingFace(ctx context.Context, ts float64) (*attribution.FaceSighting, error) {
	evs, err := s.Fetcher.FetchEvents(ctx, eventsdom.Query{
		Label: eventsdom.LabelPerson,
		Since: ts - s.Policy.WindowSecs,
		Until: ts + s.Policy.WindowSecs + 1,
	})
	if err != nil {
		return nil, err
	}

	sightings := make([]attribution.FaceSighting, 0, len(evs))
	for _, ev := range evs {
		if ev.Recognized == nil || ev.Recognized.Name == "" {
			continue
		}
		sightings = append(sightings, attribution.FaceSighting{
			Identity:   ev.Recognized.Name,
			Confidence: ev.Recognized.Confidence,
			Timestamp:  ev.Timestamp,
		})
	}
	return s.Policy.PickFace(sightings, ts), nil
}
