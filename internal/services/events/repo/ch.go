package repo

import (
	"context"
	"sort"

	"deskwatch/internal/platform/store"
	pstrings "deskwatch/internal/platform/strings"
	"deskwatch/internal/services/events/domain"
)

// chMirrorTable is the flattened long-range mirror of the NVR timeline.
// One row per event; sub_label split into name/confidence columns
const chMirrorTable = "timeline_flat"

// MirrorStorage is the write side of the columnar mirror
type MirrorStorage interface {
	InsertBatch(ctx context.Context, evs []domain.DetectionEvent) (int, error)
}

// NewCH constructs a repo over the ClickHouse mirror. It serves the same
// Storage surface as the Postgres timeline plus batch inserts for syncing
func NewCH(c store.Clickhouse) *CH { return &CH{c: c} }

// CH reads and writes timeline_flat
type CH struct{ c store.Clickhouse }

var (
	_ Storage       = (*CH)(nil)
	_ MirrorStorage = (*CH)(nil)
)

// FetchEvents implements Storage over the mirror
func (s *CH) FetchEvents(ctx context.Context, q domain.Query, hardLimit int) (FetchResult, error) {
	sql := `
		SELECT ts, camera, source_id, label, zones, sub_label_name, sub_label_conf
		FROM ` + chMirrorTable + `
		WHERE ts >= ? AND ts < ?`
	args := []any{q.Since, q.Until}
	if q.Label != "" {
		sql += " AND label = ?"
		args = append(args, string(q.Label))
	}
	if cam := pstrings.SQLNull(q.Camera); cam != nil {
		sql += " AND camera = ?"
		args = append(args, cam)
	}
	sql += " ORDER BY ts, source_id LIMIT ?"
	args = append(args, hardLimit)

	rows, err := s.c.Query(ctx, sql, args...)
	if err != nil {
		return FetchResult{}, err
	}
	defer rows.Close()

	var out FetchResult
	seen := map[string]struct{}{}
	for rows.Next() {
		var (
			ev    domain.DetectionEvent
			label string
			name  string
			conf  float64
		)
		if err := rows.Scan(&ev.Timestamp, &ev.Camera, &ev.SourceID, &label, &ev.Zones, &name, &conf); err != nil {
			return FetchResult{}, err
		}
		ev.Label = domain.Label(label)
		if name != "" {
			ev.Recognized = &domain.RecognizedIdentity{Name: name, Confidence: conf}
		}
		if _, dup := seen[ev.SourceID]; dup {
			continue
		}
		seen[ev.SourceID] = struct{}{}
		out.Events = append(out.Events, ev)
	}
	if err := rows.Err(); err != nil {
		return FetchResult{}, err
	}
	return out, nil
}

// PersonTimestamps implements Storage over the mirror
func (s *CH) PersonTimestamps(ctx context.Context, identity string, since, until float64) ([]float64, error) {
	sql := `
		SELECT ts FROM ` + chMirrorTable + `
		WHERE label = ? AND sub_label_name = ? AND ts >= ? AND ts < ?
		ORDER BY ts`
	rows, err := s.c.Query(ctx, sql, string(domain.LabelPerson), identity, since, until)
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

// DistinctIdentities implements Storage over the mirror
func (s *CH) DistinctIdentities(ctx context.Context, since, until float64) ([]string, error) {
	sql := `
		SELECT DISTINCT sub_label_name FROM ` + chMirrorTable + `
		WHERE label = ? AND sub_label_name != '' AND ts >= ? AND ts < ?
		ORDER BY sub_label_name`
	rows, err := s.c.Query(ctx, sql, string(domain.LabelPerson), since, until)
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
		out = append(out, name)
	}
	return out, rows.Err()
}

// InsertBatch implements MirrorStorage
func (s *CH) InsertBatch(ctx context.Context, evs []domain.DetectionEvent) (int, error) {
	if len(evs) == 0 {
		return 0, nil
	}
	rows := make([][]any, 0, len(evs))
	for _, ev := range evs {
		name, conf := "", 0.0
		if ev.Recognized != nil {
			name, conf = ev.Recognized.Name, ev.Recognized.Confidence
		}
		zones := ev.Zones
		if zones == nil {
			zones = []string{}
		}
		rows = append(rows, []any{ev.Timestamp, ev.Camera, ev.SourceID, string(ev.Label), zones, name, conf})
	}
	if err := s.c.Insert(ctx, chMirrorTable+" (ts, camera, source_id, label, zones, sub_label_name, sub_label_conf)", rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// sortEvents restores ascending (timestamp, source_id) order after queries
// whose SQL ordering served a different purpose
func sortEvents(evs []domain.DetectionEvent) {
	sort.SliceStable(evs, func(i, j int) bool {
		if evs[i].Timestamp != evs[j].Timestamp {
			return evs[i].Timestamp < evs[j].Timestamp
		}
		return evs[i].SourceID < evs[j].SourceID
	})
}
