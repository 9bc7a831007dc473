// deskwatch-mirror copies a window of the Postgres timeline into the
// ClickHouse long-range mirror
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"deskwatch/internal/core/version"
	"deskwatch/internal/modkit"
	"deskwatch/internal/modkit/repokit"
	"deskwatch/internal/modkit/module"
	"deskwatch/internal/platform/clock"
	"deskwatch/internal/platform/config"
	"deskwatch/internal/platform/logger"
	"deskwatch/internal/platform/store"

	eventsmod "deskwatch/internal/services/events/module"
)

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	l := logger.Get()

	bi := version.Info("deskwatch-mirror")
	l.Info().Str("version", bi.Version).Str("commit", bi.Commit).Msg("starting deskwatch-mirror")

	st, err := store.Open(context.Background(), store.Config{
		AppName: "mirror",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled: true,
			URL:     chCfg.MustString("DBURL"),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	repokit.MustGuard(context.Background(), st)

	var (
		startStr = flag.String("start", "", "inclusive hour, e.g. 2026-08-01T00")
		endStr   = flag.String("end", "", "exclusive hour, e.g. 2026-08-01T03")
		page     = flag.Duration("page", time.Hour, "window size per sync batch")
	)
	flag.Parse()

	if *startStr == "" || *endStr == "" {
		log.Fatal("start/end are required (hour resolution)")
	}
	start, err := time.Parse("2006-01-02T15", *startStr)
	if err != nil {
		log.Fatalf("bad -start: %v", err)
	}
	end, err := time.Parse("2006-01-02T15", *endStr)
	if err != nil {
		log.Fatalf("bad -end: %v", err)
	}
	if !start.Before(end) {
		log.Fatal("start must be < end")
	}

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
		Log: *l,
	}

	em := eventsmod.New(deps)
	module.Register(em.Name(), em.Ports())

	mirror := module.MustPortsOf[eventsmod.Ports](em).Mirror
	if mirror == nil {
		l.Fatal().Msg("mirror requires a ClickHouse store")
	}

	ctx := context.Background()
	total := 0
	for cur := start.UTC(); cur.Before(end.UTC()); cur = cur.Add(*page) {
		hi := cur.Add(*page)
		if hi.After(end.UTC()) {
			hi = end.UTC()
		}
		n, err := mirror.SyncWindow(ctx, clock.Unix(cur), clock.Unix(hi))
		if err != nil {
			l.Fatal().Err(err).Time("window_start", cur).Msg("mirror sync failed")
		}
		total += n
	}
	l.Info().Int("rows", total).Msg("mirror sync complete")
}
