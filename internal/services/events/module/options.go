package module

import (
	"time"

	"deskwatch/internal/platform/config"
)

// Options configures the events module
type Options struct {
	Source       string // "pg" (default) or "ch"
	FetchTimeout time.Duration
	Attempts     int
	Backoff      time.Duration
	HardLimit    int
}

// FromConfig reads options from config.Conf
func FromConfig(cfg config.Conf) Options {
	ev := cfg.Prefix("CORE_EVENTS_")
	return Options{
		Source:       ev.MayEnum("SOURCE", "pg", "pg", "ch"),
		FetchTimeout: ev.MayDuration("FETCH_TIMEOUT", 15*time.Second),
		Attempts:     ev.MayInt("ATTEMPTS", 3),
		Backoff:      ev.MayDuration("BACKOFF", 100*time.Millisecond),
		HardLimit:    ev.MayInt("HARD_LIMIT", 50000),
	}
}
