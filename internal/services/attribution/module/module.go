// Package module provides the attribution module
package module

import (
	"deskwatch/internal/core/seating"
	"deskwatch/internal/modkit"
	"deskwatch/internal/services/attribution/domain"
	"deskwatch/internal/services/attribution/service"
)

// Ports exposed by the attribution module
type Ports struct {
	Resolver domain.ResolverPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new attribution module. The seating chart loads once
// here; a malformed chart must stop the process
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("attribution"),
	}, opts...)...)

	ports, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("attribution module: expected WithPorts(attribution/domain.Ports)")
	}
	if ports.Fetcher == nil {
		panic("attribution module: Ports missing Fetcher")
	}

	o := FromConfig(deps.Cfg)

	table, err := loadTable(o.SeatingPath)
	if err != nil {
		panic(err)
	}

	m := &Module{deps: deps}
	m.ports = Ports{Resolver: service.New(ports.Fetcher, table, o.Policy)}
	return m
}

func loadTable(path string) (*seating.Table, error) {
	if path != "" {
		return seating.LoadFile(path)
	}
	return seating.Load()
}

// Name implements modkit.Module
func (m *Module) Name() string { return "attribution" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }
