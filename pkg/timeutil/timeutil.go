package timeutil

import (
	"math"
	"math/rand"
	"time"
)

// DurationPtr is a helper function to create a pointer to a time.Duration
func DurationPtr(d time.Duration) *time.Duration {
	return &d
}

// MaxDuration returns the largest duration in the slice, or zero for an
// empty slice.
func MaxDuration(durations []time.Duration) time.Duration {
	var max time.Duration
	for _, d := range durations {
		if d > max {
			max = d
		}
	}
	return max
}

// ExponentialBackoffDelay computes the wait before retry number `attempt`
// (1-based): initial * multiplier^(attempt-1), capped at the configured
// maximum, plus a pseudo-random jitter in [0, jitter).
func ExponentialBackoffDelay(
	attempt int,
	jitter time.Duration,
	rng *rand.Rand,
	param BackoffParam,
) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	exponent := float64(attempt - 1)
	delay := float64(param.initialDuration) * math.Pow(param.multiplier, exponent)
	if delay > float64(param.maxDuration) {
		delay = float64(param.maxDuration)
	}

	if jitter > 0 && rng != nil {
		delay += float64(rng.Int63n(int64(jitter)))
	}

	return time.Duration(delay)
}
