// Package attribution decides who is responsible for a violation sighting.
// It combines the desk-zone occupant with the nearest face recognition inside
// a verification window. Pure functions of their inputs; the event fetching
// lives in the services layer
package attribution

import (
	"math"
	"strings"

	"deskwatch/internal/core/identity"
)

// Method says how an attribution was reached
type Method string

const (
	MethodZoneMatchFaceConfirmed Method = "zone_match_face_confirmed"
	MethodZoneOnly               Method = "zone_only"
	MethodFaceOnly               Method = "face_only"
	MethodUnresolved             Method = "unresolved"
)

// Unknown is the terminal identity for unresolved attributions. Not an error
const Unknown = "Unknown"

// Policy carries the tunable constants of the combination rules.
// The constants are configuration, not invariants
type Policy struct {
	// WindowSecs is the half-width of the face verification window around
	// the violation timestamp
	WindowSecs float64

	// ZoneConfidence is the fixed confidence when only the desk zone speaks
	ZoneConfidence float64

	// DisagreePenalty scales face confidence when zone and face disagree
	DisagreePenalty float64

	// ZonePrefix marks desk zones among arbitrary zone tags
	ZonePrefix string
}

// DefaultPolicy returns the production constants
func DefaultPolicy() Policy {
	return Policy{
		WindowSecs:      300,
		ZoneConfidence:  0.9,
		DisagreePenalty: 0.8,
		ZonePrefix:      "desk_",
	}
}

// FaceSighting is one recognized person detection near a violation
type FaceSighting struct {
	Identity   string
	Confidence float64
	Timestamp  float64
}

// Result is the attribution outcome for one violation event
type Result struct {
	Identity   string  `json:"identity"`
	Confidence float64 `json:"confidence"`
	Method     Method  `json:"method"`
}

// unresolved is the zero outcome
func unresolved() Result {
	return Result{Identity: Unknown, Confidence: 0, Method: MethodUnresolved}
}

// DeskZone picks the desk zone from an event's zone list. When several desk
// zones are present the first in event order wins; the upstream ordering is
// positional, not best-match, and is preserved for compatibility
func (p Policy) DeskZone(zones []string) (string, bool) {
	for _, z := range zones {
		if strings.HasPrefix(z, p.ZonePrefix) {
			return z, true
		}
	}
	return "", false
}

// PickFace selects the face sighting that verifies a violation at ts:
// candidates within ±WindowSecs, smallest |delta t| first, ties broken by
// higher confidence. Returns nil when no candidate is in the window
func (p Policy) PickFace(sightings []FaceSighting, ts float64) *FaceSighting {
	var best *FaceSighting
	var bestDelta float64
	for i := range sightings {
		s := &sightings[i]
		if s.Identity == "" {
			continue
		}
		d := math.Abs(s.Timestamp - ts)
		if d > p.WindowSecs {
			continue
		}
		if best == nil || d < bestDelta || (d == bestDelta && s.Confidence > best.Confidence) {
			best, bestDelta = s, d
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}

// Combine applies the priority table to the zone occupant (empty when the
// desk is vacant or unmapped) and the verifying face sighting (nil when none)
func (p Policy) Combine(zoneIdentity string, face *FaceSighting) Result {
	switch {
	case zoneIdentity != "" && face != nil:
		if identity.Equal(zoneIdentity, face.Identity) {
			// chart spelling wins so summaries group under one name
			return Result{Identity: zoneIdentity, Confidence: face.Confidence, Method: MethodZoneMatchFaceConfirmed}
		}
		return Result{Identity: face.Identity, Confidence: face.Confidence * p.DisagreePenalty, Method: MethodFaceOnly}
	case zoneIdentity != "":
		return Result{Identity: zoneIdentity, Confidence: p.ZoneConfidence, Method: MethodZoneOnly}
	case face != nil:
		return Result{Identity: face.Identity, Confidence: face.Confidence, Method: MethodFaceOnly}
	default:
		return unresolved()
	}
}
