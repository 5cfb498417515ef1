package graph

import (
	"errors"
	"math/rand"
	"time"
)

// ErrInvalidRetryPolicy is returned by RetryPolicy.Validate when a
// policy's fields are inconsistent.
var ErrInvalidRetryPolicy = errors.New("invalid retry policy")

// RetryPolicy configures automatic retry of a provider call that fails
// with a retryable provider.Error (rate limiting or a network error).
// The executor does not retry by default; attach a RetryPolicy via
// WithRetryPolicy to opt in.
type RetryPolicy struct {
	// MaxAttempts is the maximum number of calls to a provider for one
	// node (including the first). Must be >= 1; 1 means no retries.
	MaxAttempts int

	// BaseDelay is the base exponential-backoff delay.
	BaseDelay time.Duration

	// MaxDelay caps the computed backoff delay.
	MaxDelay time.Duration
}

// Validate reports ErrInvalidRetryPolicy if the policy's fields are
// inconsistent: MaxAttempts must be at least 1, and when both delays are
// set, MaxDelay must not be smaller than BaseDelay.
func (rp *RetryPolicy) Validate() error {
	if rp.MaxAttempts < 1 {
		return ErrInvalidRetryPolicy
	}
	if rp.MaxDelay > 0 && rp.BaseDelay > 0 && rp.MaxDelay < rp.BaseDelay {
		return ErrInvalidRetryPolicy
	}
	return nil
}

// computeBackoff returns the delay before retry attempt, using
// exponential backoff with jitter: min(base*2^attempt, maxDelay) plus a
// random value in [0, base). attempt is zero-based (0 = first retry).
func computeBackoff(attempt int, base, maxDelay time.Duration, rng *rand.Rand) time.Duration {
	delay := base * (1 << attempt)
	if maxDelay > 0 && delay > maxDelay {
		delay = maxDelay
	}

	var jitter time.Duration
	if base > 0 {
		if rng != nil {
			jitter = time.Duration(rng.Int63n(int64(base)))
		} else {
			jitter = time.Duration(rand.Int63n(int64(base))) // #nosec G404 -- jitter for retry timing, not security
		}
	}

	return delay + jitter
}
