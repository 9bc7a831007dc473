package module

import (
	"deskwatch/internal/core/attribution"
	"deskwatch/internal/platform/config"
)

// Options configures the attribution module
type Options struct {
	Policy      attribution.Policy
	SeatingPath string // empty = embedded chart
}

// FromConfig reads options from config.Conf
func FromConfig(cfg config.Conf) Options {
	at := cfg.Prefix("CORE_ATTR_")
	def := attribution.DefaultPolicy()
	return Options{
		Policy: attribution.Policy{
			WindowSecs:      at.MayFloat64("WINDOW_SECS", def.WindowSecs),
			ZoneConfidence:  at.MayFloat64("ZONE_CONFIDENCE", def.ZoneConfidence),
			DisagreePenalty: at.MayFloat64("DISAGREE_PENALTY", def.DisagreePenalty),
			ZonePrefix:      at.MayString("ZONE_PREFIX", def.ZonePrefix),
		},
		SeatingPath: cfg.Prefix("DESKWATCH_").MayString("SEATING_PATH", ""),
	}
}
