// Package modkit provides module wiring and core deps
package modkit

import (
	"deskwatch/internal/modkit/repokit"
	"deskwatch/internal/platform/clock"
	"deskwatch/internal/platform/config"
	"deskwatch/internal/platform/logger"
	"deskwatch/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log   logger.Logger
	Cfg   config.Conf
	PG    repokit.TxRunner
	CH    store.Clickhouse
	Clock clock.Clock
}

// ZeroOK returns true when deps are safe to use with zero values in tests
// consumers should still nil check for optional stores
func (d Deps) ZeroOK() bool { return true }
