package mpath

import (
	"time"

	"github.com/mpath-tools/mpathkit/internal/constants"
)

// Policy bounds the request wrapper's retries.
//
// MaxAttempts is the total number of attempts, the first included. Backoff
// maps a 1-based failed attempt number to the wait before the next one.
type Policy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
}

// DefaultPolicy retries with exponential backoff: 3s doubling, capped at 60s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: constants.DefaultRetries,
		Backoff:     ExponentialBackoff(3*time.Second, 60*time.Second),
	}
}

// ExponentialBackoff doubles base per failed attempt up to limit.
func ExponentialBackoff(base, limit time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		d := base << (attempt - 1)
		if d > limit || d <= 0 {
			return limit
		}
		return d
	}
}

// FixedBackoff waits the same duration between every attempt.
func FixedBackoff(d time.Duration) func(int) time.Duration {
	return func(int) time.Duration { return d }
}
