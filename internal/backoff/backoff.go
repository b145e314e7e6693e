// Package backoff implements the pure retry-delay function. No jitter is
// applied, keeping the formula exactly reproducible for a given
// strategy/retryCount pair.
package backoff

import (
	"math"
	"time"

	"github.com/jangulo01/webhookd/internal/domain"
)

// unknownStrategyFactor is applied when a config somehow carries a strategy
// name that isn't recognized; falls back to exponential with factor 2.0
// rather than erroring.
const unknownStrategyFactor = 2.0

// Delay computes the retry wait, in whole seconds, for retryCount = n (0 for
// the first retry after the initial attempt).
func Delay(strategy domain.BackoffStrategy, retryCount int, initialIntervalS int, factor float64, maxIntervalS int) time.Duration {
	initial := float64(initialIntervalS)
	max := float64(maxIntervalS)
	n := float64(retryCount)

	var seconds float64
	switch strategy {
	case domain.BackoffLinear:
		seconds = initial * (1 + n)
	case domain.BackoffExponential:
		seconds = initial * math.Pow(factor, n)
	case domain.BackoffFixed:
		seconds = initial
	default:
		seconds = initial * math.Pow(unknownStrategyFactor, n)
	}

	if seconds > max {
		seconds = max
	}

	return time.Duration(math.Floor(seconds)) * time.Second
}

// NextRetry returns now+delay, the timestamp persisted as Message.NextRetry.
func NextRetry(now time.Time, delay time.Duration) time.Time {
	return now.Add(delay)
}
