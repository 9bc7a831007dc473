// deskwatch-report prints daily summaries for one identity or the whole
// floor as JSON on stdout
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strconv"

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
	eventsmod "deskwatch/internal/services/events/module"
	repdom "deskwatch/internal/services/reporting/domain"
	repmod "deskwatch/internal/services/reporting/module"
)

func mustSetEnv(k, v string) {
	if v != "" {
		_ = os.Setenv(k, v)
	}
}

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	l := logger.Get()

	bi := version.Info("deskwatch-report")
	l.Info().Str("version", bi.Version).Str("commit", bi.Commit).Msg("starting deskwatch-report")

	chURL := chCfg.MayString("DBURL", "")
	st, err := store.Open(context.Background(), store.Config{
		AppName: "report",
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
		date       = flag.String("date", "", "report date, YYYY-MM-DD (required)")
		identityF  = flag.String("identity", "", "single identity; empty = everyone")
		workers    = flag.Int("workers", 0, "bulk concurrency (0 = configured default)")
		strict     = flag.Bool("strict", false, "fail the whole bulk run on any identity error")
		trendHours = flag.Int("trend-hours", 0, "also print the hourly violation trend for the last N hours")
	)
	flag.Parse()

	if *date == "" {
		log.Fatal("-date is required (YYYY-MM-DD)")
	}
	mustSetEnv("CORE_REPORT_STRICT", map[bool]string{true: "1", false: "0"}[*strict])
	if *workers > 0 {
		mustSetEnv("CORE_REPORT_WORKERS", strconv.Itoa(*workers))
	}

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
		Log: *l,
	}

	em := eventsmod.New(deps)
	fetcher := module.MustPortsOf[eventsmod.Ports](em).Fetcher

	am := attrmod.New(deps, modkit.WithPorts(attrdom.Ports{Fetcher: fetcher}))
	rm := repmod.New(deps, modkit.WithPorts(repdom.Ports{
		Fetcher:  fetcher,
		Resolver: module.MustPortsOf[attrmod.Ports](am).Resolver,
	}))

	module.Register(em.Name(), em.Ports())
	module.Register(am.Name(), am.Ports())
	module.Register(rm.Name(), rm.Ports())

	facade := module.MustPortsOf[repmod.Ports](rm).Facade
	ctx := context.Background()
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if *identityF != "" {
		sum, err := facade.SummarizeDay(ctx, *identityF, *date)
		if err != nil {
			l.Fatal().Err(err).Msg("summarize day failed")
		}
		if err := enc.Encode(sum); err != nil {
			l.Fatal().Err(err).Msg("encode failed")
		}
	} else {
		results, err := facade.SummarizeAll(ctx, *date, repdom.BulkOptions{Workers: *workers, Strict: *strict})
		if err != nil {
			l.Fatal().Err(err).Msg("bulk summarize failed")
		}
		if err := enc.Encode(results); err != nil {
			l.Fatal().Err(err).Msg("encode failed")
		}
	}

	if *trendHours > 0 {
		now := clock.Unix(clock.System{}.Now())
		buckets, err := facade.ViolationTrend(ctx, now-float64(*trendHours)*3600, now)
		if err != nil {
			l.Fatal().Err(err).Msg("violation trend failed")
		}
		if err := enc.Encode(buckets); err != nil {
			l.Fatal().Err(err).Msg("encode failed")
		}
	}
}
