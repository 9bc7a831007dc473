// Package module provides the reporting module
package module

import (
	"deskwatch/internal/modkit"
	"deskwatch/internal/platform/clock"
	"deskwatch/internal/services/reporting/domain"
	"deskwatch/internal/services/reporting/service"
)

// Ports exposed by the reporting module
type Ports struct {
	Facade domain.FacadePort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new reporting module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("reporting"),
	}, opts...)...)

	ports, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("reporting module: expected WithPorts(reporting/domain.Ports)")
	}
	if ports.Fetcher == nil || ports.Resolver == nil {
		panic("reporting module: Ports missing Fetcher or Resolver")
	}

	o := FromConfig(deps.Cfg)
	clk := deps.Clock
	if clk == nil {
		clk = clock.System{}
	}

	svc := service.New(ports.Fetcher, ports.Resolver, clk, service.Config{
		Workers: o.Workers,
		Strict:  o.Strict,
		Workday: o.Workday,
		Loc:     o.Loc,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Facade: svc}
	return m
}

// Name implements modkit.Module
func (m *Module) Name() string { return "reporting" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }
