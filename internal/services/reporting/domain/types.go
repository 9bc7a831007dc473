// Package domain defines core types and interfaces for reporting
package domain

import (
	"deskwatch/internal/core/workday"
)

// DaySegment re-exports the segmenter's interval type
type DaySegment = workday.Segment

// DailySummary is the per-identity-day report
type DailySummary struct {
	Identity         string       `json:"identity"`
	Date             string       `json:"date"` // YYYY-MM-DD in the report timezone
	Status           string       `json:"status"`
	Arrival          float64      `json:"arrival"`
	Departure        *float64     `json:"departure"` // nil while still present
	TotalSeconds     float64      `json:"total_seconds"`
	OfficeSeconds    float64      `json:"office_seconds"`
	BreakSeconds     float64      `json:"break_seconds"`
	BreakCount       int          `json:"break_count"`
	IdleSeconds      float64      `json:"idle_seconds"`
	ViolationCount   int          `json:"violation_count"`
	ViolationSeconds float64      `json:"violation_seconds"`
	Segments         []DaySegment `json:"segments"`
}

// DayResult is one identity's outcome in a bulk run. Err carries the
// per-identity failure unless the run was strict
type DayResult struct {
	Identity string        `json:"identity"`
	Summary  *DailySummary `json:"summary,omitempty"`
	Err      error         `json:"-"`
	ErrMsg   string        `json:"error,omitempty"`
}

// BulkOptions tunes a SummarizeAll run
type BulkOptions struct {
	// Workers bounds in-flight per-identity fetches; <= 0 uses the
	// configured default
	Workers int

	// Strict makes any per-identity failure cancel and fail the batch
	Strict bool
}

// TrendBucket is one hour of attributed violation volume
type TrendBucket struct {
	HourStart  float64        `json:"hour_start"` // epoch seconds, hour-aligned
	Total      int            `json:"total"`
	ByIdentity map[string]int `json:"by_identity,omitempty"`
}
