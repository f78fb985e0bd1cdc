package transport

import (
	"math/rand"
	"time"
)

// Attempts is the number of dials DialRetry makes. Values below one mean a
// single dial.
func (c Config) Attempts() int {
	if c.ConnectAttempts < 1 {
		return 1
	}
	return c.ConnectAttempts
}

// RetryDelay returns how long to wait after failed dial number attempt
// (1-based). ok is false once attempt is the last one allowed, so callers stop
// instead of sleeping. The delay grows by Backoff.Multiplier per attempt,
// never exceeds Backoff.MaxDelay, and with Jitter lands in the upper half of
// the computed delay.
func (c Config) RetryDelay(attempt int, rng *rand.Rand) (delay time.Duration, ok bool) {
	if attempt < 1 || attempt >= c.Attempts() {
		return 0, false
	}
	b := c.Backoff
	if b.InitialDelay <= 0 {
		return 0, true
	}
	mult := b.Multiplier
	if mult < 1 {
		mult = 1
	}

	d := float64(b.InitialDelay)
	for i := 1; i < attempt; i++ {
		d *= mult
		if b.MaxDelay > 0 && d >= float64(b.MaxDelay) {
			break
		}
	}
	if b.MaxDelay > 0 && d > float64(b.MaxDelay) {
		d = float64(b.MaxDelay)
	}
	if b.Jitter && rng != nil {
		d = d/2 + rng.Float64()*d/2
	}
	return time.Duration(d), true
}
