package service

import (
	"context"

	"deskwatch/internal/modkit/repokit"
	perr "deskwatch/internal/platform/errors"
	"deskwatch/internal/platform/logger"
	"deskwatch/internal/services/events/domain"
	"deskwatch/internal/services/events/repo"
)

// Mirror copies raw timeline rows from Postgres into the ClickHouse
// long-range mirror. It implements domain.MirrorPort
type Mirror struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
	Sink   repo.MirrorStorage
	Cfg    Config
	Log    *logger.Logger
}

// NewMirror constructs the mirror syncer
func NewMirror(db repokit.TxRunner, b repokit.Binder[repo.Storage], sink repo.MirrorStorage, cfg Config) *Mirror {
	return &Mirror{DB: db, Binder: b, Sink: sink, Cfg: normalize(cfg), Log: logger.Named("events.mirror")}
}

// SyncWindow mirrors [since, until) and reports rows written. Malformed
// source rows are skipped and logged, same as on the read path
func (m *Mirror) SyncWindow(ctx context.Context, since, until float64) (int, error) {
	if m.Sink == nil {
		return 0, perr.Configf("events: mirror sink not configured")
	}

	var res repo.FetchResult
	err := m.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		res, err = m.Binder.Bind(q).FetchEvents(ctx, domain.Query{Since: since, Until: until}, m.Cfg.HardLimit)
		return err
	})
	if err != nil {
		return 0, perr.WithOp(err, "mirror_read")
	}
	for _, serr := range res.Skipped {
		m.Log.Warn().Err(serr).Msg("skipping malformed event")
	}
	if len(res.Events) == 0 {
		return 0, nil
	}

	n, err := m.Sink.InsertBatch(ctx, res.Events)
	if err != nil {
		return 0, perr.WithOp(err, "mirror_write")
	}
	m.Log.Info().Int("rows", n).Float64("since", since).Float64("until", until).Msg("mirrored window")
	return n, nil
}
