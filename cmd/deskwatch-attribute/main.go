// deskwatch-attribute resolves responsibility for recent phone violations
// and prints the attributions as JSON on stdout
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"deskwatch/internal/core/version"
	"deskwatch/internal/modkit"
	"deskwatch/internal/modkit/repokit"
	"deskwatch/internal/modkit/module"
	"deskwatch/internal/platform/clock"
	"deskwatch/internal/platform/config"
	"deskwatch/internal/platform/logger"
	"deskwatch/internal/platform/store"

	attrdom "deskwatch/internal/services/attribution/domain"
	attrmod "deskwatch/internal/services/attribution/module"
	eventsdom "deskwatch/internal/services/events/domain"
	eventsmod "deskwatch/internal/services/events/module"
)

type attributedEvent struct {
	Event       eventsdom.DetectionEvent `json:"event"`
	Attribution attrdom.Result           `json:"attribution"`
}

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	l := logger.Get()

	bi := version.Info("deskwatch-attribute")
	l.Info().Str("version", bi.Version).Str("commit", bi.Commit).Msg("starting deskwatch-attribute")

	chURL := chCfg.MayString("DBURL", "")
	st, err := store.Open(context.Background(), store.Config{
		AppName: "attribute",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled: chURL != "",
			URL:     chURL,
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
		hours  = flag.Float64("hours", 1, "look back this many hours")
		camera = flag.String("camera", "", "optional camera filter")
	)
	flag.Parse()

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
		Log: *l,
	}

	em := eventsmod.New(deps)
	fetcher := module.MustPortsOf[eventsmod.Ports](em).Fetcher
	am := attrmod.New(deps, modkit.WithPorts(attrdom.Ports{Fetcher: fetcher}))

	module.Register(em.Name(), em.Ports())
	module.Register(am.Name(), am.Ports())

	resolver := module.MustPortsOf[attrmod.Ports](am).Resolver

	ctx := context.Background()
	now := clock.Unix(clock.System{}.Now())

	evs, err := fetcher.FetchEvents(ctx, eventsdom.Query{
		Camera: *camera,
		Label:  eventsdom.LabelPhoneViolation,
		Since:  now - *hours*3600,
		Until:  now,
	})
	if err != nil {
		l.Fatal().Err(err).Msg("fetch violations failed")
	}

	out := make([]attributedEvent, 0, len(evs))
	for _, ev := range evs {
		res, err := resolver.AttributeViolation(ctx, ev)
		if err != nil {
			l.Fatal().Err(err).Str("source_id", ev.SourceID).Msg("attribution failed")
		}
		out = append(out, attributedEvent{Event: ev, Attribution: res})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		l.Fatal().Err(err).Msg("encode failed")
	}
}
