// Package domain defines the attribution service contract
package domain

import (
	"context"

	"deskwatch/internal/core/attribution"
	eventsdom "deskwatch/internal/services/events/domain"
)

// Result re-exports the core attribution outcome
type Result = attribution.Result

// ResolverPort attributes a single violation event to an identity
type ResolverPort interface {
	// AttributeViolation resolves who is responsible for ev. Absence of
	// zone or face data degrades to the unresolved method, never an error
	AttributeViolation(ctx context.Context, ev eventsdom.DetectionEvent) (Result, error)
}

// Ports are dependencies injected into the attribution module
type Ports struct {
	Fetcher eventsdom.FetcherPort // required
}
