package ratelimit

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/xeptore/innertune/config"
)

// NewUpstream returns the limiter every outbound upstream call waits on.
func NewUpstream(conf config.RateLimit) *rate.Limiter {
	return rate.NewLimiter(rate.Every(conf.Every.Duration), conf.Burst)
}

// Cooldown runs a function at most once per interval. The first call always
// runs. Concurrent callers block until a running call returns and are then
// skipped.
type Cooldown struct {
	s rate.Sometimes
}

func NewCooldown(interval time.Duration) *Cooldown {
	return &Cooldown{s: rate.Sometimes{Interval: interval}} //nolint:exhaustruct
}

// Do reports whether f was run.
func (c *Cooldown) Do(f func()) bool {
	var ran bool
	c.s.Do(func() {
		ran = true
		f()
	})

	return ran
}
