package scrollreel

import (
	"time"
)

// sampleStats holds per-sample timing. Only populated in debug mode.
type sampleStats struct {
	applyTime    time.Duration
	dispatchTime time.Duration
	channels     int
	events       int
}

// debugLog reports sample stats at debug level.
func (e *Engine) debugLog(p float64, stats sampleStats) {
	if !e.debug {
		return
	}
	e.logger.Debug("sample",
		"progress", p,
		"apply", stats.applyTime,
		"dispatch", stats.dispatchTime,
		"total", stats.applyTime+stats.dispatchTime,
		"channels", stats.channels,
		"events", stats.events,
	)
}
