package util

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter with a simpler interface.
type Limiter struct {
	inner *rate.Limiter
}

// NewLimiter creates a token bucket limiter with r tokens per second and
// burst b.
func NewLimiter(r float64, b int) *Limiter {
	return &Limiter{inner: rate.NewLimiter(rate.Limit(r), b)}
}

// NewCooldown creates a limiter admitting at most one event per interval,
// used to coalesce bursts of reload requests.
func NewCooldown(interval time.Duration) *Limiter {
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &Limiter{inner: rate.NewLimiter(rate.Every(interval), 1)}
}

// Allow reports whether an event may happen now.
func (l *Limiter) Allow() bool {
	return l.inner.Allow()
}

// Wait blocks until an event is admitted.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.inner.Wait(ctx)
}
