package domain

import (
	"context"

	attrdom "deskwatch/internal/services/attribution/domain"
	eventsdom "deskwatch/internal/services/events/domain"
)

// FacadePort is the single entry point consumed by callers
type FacadePort interface {
	// AttributeViolation resolves responsibility for one violation event
	AttributeViolation(ctx context.Context, ev eventsdom.DetectionEvent) (attrdom.Result, error)

	// SummarizeDay reports one identity's day. Pure given a fixed clock
	SummarizeDay(ctx context.Context, identity, date string) (DailySummary, error)

	// SummarizeAll reports every identity observed on date, ordered by
	// identity. Non-strict runs carry per-identity failures in DayResult
	SummarizeAll(ctx context.Context, date string, opts BulkOptions) ([]DayResult, error)

	// ViolationTrend buckets attributed violations per hour over
	// [since, until)
	ViolationTrend(ctx context.Context, since, until float64) ([]TrendBucket, error)
}

// Ports are dependencies injected into the reporting module
type Ports struct {
	Fetcher  eventsdom.FetcherPort // required
	Resolver attrdom.ResolverPort  // required
}
