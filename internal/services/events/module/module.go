// Package module provides the events module
package module

import (
	"deskwatch/internal/modkit"
	"deskwatch/internal/modkit/repokit"
	"deskwatch/internal/services/events/domain"
	"deskwatch/internal/services/events/repo"
	"deskwatch/internal/services/events/service"
)

// Ports exposed by the events module
type Ports struct {
	Fetcher domain.FetcherPort
	Mirror  domain.MirrorPort // nil unless ClickHouse is wired
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new events module. The Postgres timeline is the default
// source; SOURCE=ch flips reads onto the ClickHouse mirror
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	cfg := service.Config{
		FetchTimeout: opts.FetchTimeout,
		Attempts:     opts.Attempts,
		Backoff:      opts.Backoff,
		HardLimit:    opts.HardLimit,
	}

	var fetcher domain.FetcherPort
	var mirror domain.MirrorPort

	binder := repo.NewPG()
	db := repokit.WithBeginHooks(deps.PG, service.StatementTimeoutHook(cfg.FetchTimeout))
	if opts.Source == "ch" {
		if deps.CH == nil {
			panic("events module: SOURCE=ch but no ClickHouse store wired")
		}
		fetcher = service.NewWithStorage(repo.NewCH(deps.CH), cfg)
	} else {
		fetcher = service.New(db, binder, cfg)
	}
	if deps.CH != nil {
		mirror = service.NewMirror(db, binder, repo.NewCH(deps.CH), cfg)
	}

	m := &Module{deps: deps}
	m.ports = Ports{Fetcher: fetcher, Mirror: mirror}
	return m
}

// Name implements modkit.Module
func (m *Module) Name() string { return "events" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }
