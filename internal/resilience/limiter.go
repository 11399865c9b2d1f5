package resilience

import (
	"sync/atomic"

	"golang.org/x/time/rate"
)

// Limiter caps calls per second to a single dependency using a token
// bucket. It never blocks: a call either gets a token immediately or is
// rejected, regardless of circuit state.
//
// Safe for concurrent use.
type Limiter struct {
	limiter *rate.Limiter

	totalAcquired atomic.Int64
	totalRejected atomic.Int64
}

// NewLimiter creates a token-bucket limiter allowing rps calls per second
// with the given burst size. A burst of 0 defaults to max(1, int(rps)).
func NewLimiter(rps float64, burst int) *Limiter {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = max(1, int(rps))
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// TryAcquire attempts to take a token without blocking.
func (l *Limiter) TryAcquire() bool {
	if l.limiter.Allow() {
		l.totalAcquired.Add(1)
		return true
	}
	l.totalRejected.Add(1)
	return false
}

// LimiterStats contains counters about limiter usage.
type LimiterStats struct {
	TotalAcquired int64
	TotalRejected int64
}

// Stats returns current usage counters.
func (l *Limiter) Stats() LimiterStats {
	return LimiterStats{
		TotalAcquired: l.totalAcquired.Load(),
		TotalRejected: l.totalRejected.Load(),
	}
}
