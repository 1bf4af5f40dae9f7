package auth

import "time"

// WithClock sets the time source used for token expiry.
func WithClock(f func() time.Time) Options {
	return func(o *options) {
		o.now = f
	}
}
