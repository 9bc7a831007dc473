package module

import (
	"time"

	"deskwatch/internal/core/workday"
	"deskwatch/internal/platform/config"
)

// Options configures the reporting module
type Options struct {
	Workers int
	Strict  bool
	Workday workday.Config
	Loc     *time.Location
}

// FromConfig reads options from config.Conf. A bad CORE_REPORT_TZ is a
// deployment mistake and panics at startup
func FromConfig(cfg config.Conf) Options {
	rp := cfg.Prefix("CORE_REPORT_")
	wd := cfg.Prefix("CORE_WORKDAY_")
	def := workday.DefaultConfig()

	tz := rp.MayString("TZ", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		panic("reporting: bad CORE_REPORT_TZ " + tz)
	}

	return Options{
		Workers: rp.MayInt("WORKERS", 4),
		Strict:  rp.MayBool("STRICT", false),
		Loc:     loc,
		Workday: workday.Config{
			BreakMinSecs:     wd.MayFloat64("BREAK_MIN_SECS", def.BreakMinSecs),
			BreakMaxSecs:     wd.MayFloat64("BREAK_MAX_SECS", def.BreakMaxSecs),
			IdleMinSecs:      wd.MayFloat64("IDLE_MIN_SECS", def.IdleMinSecs),
			ArrivalGraceSecs: wd.MayFloat64("ARRIVAL_GRACE_SECS", def.ArrivalGraceSecs),
			LivenessSecs:     wd.MayFloat64("LIVENESS_SECS", def.LivenessSecs),
			ViolationSecs:    wd.MayFloat64("VIOLATION_SECS", def.ViolationSecs),
		},
	}
}
