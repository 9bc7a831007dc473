// Package repo provides repository implementations for the events service
package repo

import (
	"context"
	"fmt"
	"strings"

	"deskwatch/internal/modkit/repokit"
	pstrings "deskwatch/internal/platform/strings"
	"deskwatch/internal/services/events/domain"
)

// FetchResult carries decoded events plus the rows that failed decoding.
// Malformed rows are skipped, never fatal to the query
type FetchResult struct {
	Events  []domain.DetectionEvent
	Skipped []error
}

// Storage defines the events repository
type Storage interface {
	FetchEvents(ctx context.Context, q domain.Query, hardLimit int) (FetchResult, error)
	PersonTimestamps(ctx context.Context, identity string, since, until float64) ([]float64, error)
	DistinctIdentities(ctx context.Context, since, until float64) ([]string, error)
}

type binder struct{}

// NewPG constructs a repo binder for the Postgres timeline
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

type pg struct{ q repokit.Queryer }

// FetchEvents reads raw timeline rows and decodes them.
// Ordered by (timestamp, source_id); DISTINCT ON drops duplicate source ids
func (s *pg) FetchEvents(ctx context.Context, q domain.Query, hardLimit int) (FetchResult, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	sb.WriteString(`
		SELECT DISTINCT ON (p.source_id)
			p.timestamp,
			p.camera,
			p.source_id,
			COALESCE(p.data->>'label', '') AS label,
			COALESCE(p.data->'zones', '[]'::jsonb) AS zones,
			p.data->'sub_label' AS sub_label
		FROM timeline p
		WHERE p.timestamp >= ` + arg(q.Since) + ` AND p.timestamp < ` + arg(q.Until) + `
	`)
	if q.Label != "" {
		sb.WriteString("  AND p.data->>'label' = " + arg(domain.WireLabel(q.Label)) + "\n")
	} else {
		sb.WriteString("  AND p.data->>'label' IN ('person', 'cell phone')\n")
	}
	if cam := pstrings.SQLNull(q.Camera); cam != nil {
		sb.WriteString("  AND p.camera = " + arg(cam) + "\n")
	}
	sb.WriteString("ORDER BY p.source_id, p.timestamp\nLIMIT " + arg(hardLimit))

	rows, err := s.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return FetchResult{}, err
	}
	defer rows.Close()

	var out FetchResult
	for rows.Next() {
		var w domain.WireRecord
		if err := rows.Scan(&w.Timestamp, &w.Camera, &w.SourceID, &w.Label, &w.Zones, &w.SubLabel); err != nil {
			return FetchResult{}, err
		}
		ev, err := domain.FromWire(w)
		if err != nil {
			out.Skipped = append(out.Skipped, err)
			continue
		}
		out.Events = append(out.Events, ev)
	}
	if err := rows.Err(); err != nil {
		return FetchResult{}, err
	}
	sortEvents(out.Events)
	return out, nil
}

// PersonTimestamps implements Storage. Identity matching is exact on the
// recognizer's sub_label spelling, as the NVR stores it
func (s *pg) PersonTimestamps(ctx context.Context, identity string, since, until float64) ([]float64, error) {
	const sql = `
		SELECT p.timestamp
		FROM timeline p
		WHERE p.data->>'label' = 'person'
			AND p.data->'sub_label'->>0 = $1
			AND p.timestamp >= $2 AND p.timestamp < $3
		ORDER BY p.timestamp`

	rows, err := s.q.Query(ctx, sql, identity, since, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var ts float64
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

// DistinctIdentities implements Storage
func (s *pg) DistinctIdentities(ctx context.Context, since, until float64) ([]string, error) {
	const sql = `
		SELECT DISTINCT p.data->'sub_label'->>0 AS name
		FROM timeline p
		WHERE p.data->>'label' = 'person'
			AND p.data->'sub_label'->>0 IS NOT NULL
			AND p.timestamp >= $1 AND p.timestamp < $2
		ORDER BY name`

	rows, err := s.q.Query(ctx, sql, since, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if name != "" {
			out = append(out, name)
		}
	}
	return out, rows.Err()
}
