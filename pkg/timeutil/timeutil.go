package timeutil

import (
	"math"
	"math/rand"
	"time"
)

// MaxDuration returns the largest duration in the slice, or 0 for an empty slice.
func MaxDuration(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	max := durations[0]
	for _, d := range durations[1:] {
		if d > max {
			max = d
		}
	}
	return max
}

// ComputeJitter returns a pseudo-random duration in [0, max).
// Non-positive max yields 0.
func ComputeJitter(max time.Duration, rng rand.Rand) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rng.Int63n(int64(max)))
}

// ExponentialBackoffDelay computes the delay preceding retry number backoffCount.
//
// delay = initial * multiplier^(backoffCount-1), capped at BackoffParam.MaxDuration,
// plus a jitter component in [0, jitter).
//
// backoffCount starts at 1: the first backoff waits exactly the initial duration.
// Counts below 1 are treated as 1 so callers can never produce a negative exponent.
func ExponentialBackoffDelay(
	backoffCount int,
	jitter time.Duration,
	rng rand.Rand,
	backoffParam BackoffParam,
) time.Duration {
	if backoffCount < 1 {
		backoffCount = 1
	}

	exponent := float64(backoffCount - 1)
	delay := float64(backoffParam.InitialDuration()) * math.Pow(backoffParam.Multiplier(), exponent)
	if delay > float64(backoffParam.MaxDuration()) {
		delay = float64(backoffParam.MaxDuration())
	}

	return time.Duration(delay) + ComputeJitter(jitter, rng)
}

// DurationPtr is a helper function to create a pointer to a time.Duration
func DurationPtr(d time.Duration) *time.Duration {
	return &d
}
