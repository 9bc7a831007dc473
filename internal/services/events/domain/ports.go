package domain

import "context"

// FetcherPort is the read surface the analytics services consume.
// Events come back ordered by timestamp ascending with no duplicate
// SourceID within one call
type FetcherPort interface {
	FetchEvents(ctx context.Context, q Query) ([]DetectionEvent, error)

	// PersonTimestamps returns the recognized person-detection timestamps
	// for one identity inside [since, until), ascending
	PersonTimestamps(ctx context.Context, identity string, since, until float64) ([]float64, error)

	// DistinctIdentities lists every recognized identity observed inside
	// [since, until), sorted
	DistinctIdentities(ctx context.Context, since, until float64) ([]string, error)
}

// MirrorPort copies raw timeline rows into the long-range columnar mirror
type MirrorPort interface {
	// SyncWindow mirrors [since, until) and reports rows written
	SyncWindow(ctx context.Context, since, until float64) (int, error)
}
