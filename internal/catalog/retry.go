package catalog

import (
	"time"
)

// RetryPolicy describes how the client re-attempts a failed catalog fetch.
// It lives outside the fetch loop so the reconciliation side never has to
// know anything about retry mechanics.
type RetryPolicy struct {
	MaxAttempts       int
	BaseDelay         time.Duration
	BackoffMultiplier float64
}

// DefaultRetryPolicy matches what the old frontend hook did: three tries,
// half-second base, doubling.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       3,
		BaseDelay:         500 * time.Millisecond,
		BackoffMultiplier: 2,
	}
}

// Delay returns how long to wait before the given attempt (1-based).
// Attempt 1 has no delay; attempt n waits BaseDelay * Multiplier^(n-2).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	d := float64(p.BaseDelay)
	for i := 2; i < attempt; i++ {
		d *= p.BackoffMultiplier
	}
	return time.Duration(d)
}
