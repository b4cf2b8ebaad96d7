package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rohmanhakim/webgrab/pkg/failure"
	"github.com/rohmanhakim/webgrab/pkg/timeutil"
)

// Retry executes the provided function with bounded retry logic: up to
// MaxAttempts calls with capped exponential backoff plus jitter between
// attempts. Only errors that classify themselves as retryable trigger a
// retry; everything else is returned immediately.
//
// The wait between attempts observes ctx, so a cancelled run stops within
// one backoff interval.
//
// Type parameter T is the return type of the function being retried.
func Retry[T any](
	ctx context.Context,
	retryParam RetryParam,
	fn func() (T, failure.ClassifiedError),
) (T, failure.ClassifiedError) {
	var lastErr failure.ClassifiedError
	var zero T

	if retryParam.MaxAttempts < 1 {
		return zero, &RetryError{
			Message: "max attempts cannot be 0",
			Cause:   ErrZeroAttempt,
		}
	}

	rng := rand.New(rand.NewSource(retryParam.RandomSeed))

	for attempt := 1; attempt <= retryParam.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !failure.IsRetryable(err) {
			return zero, err
		}

		if attempt == retryParam.MaxAttempts {
			break
		}

		backoffDelay := timeutil.ExponentialBackoffDelay(
			attempt,
			retryParam.Jitter,
			rng,
			retryParam.BackoffParam,
		)

		timer := time.NewTimer(backoffDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, &RetryError{
				Message: ctx.Err().Error(),
				Cause:   ErrCancelled,
				LastErr: lastErr,
			}
		}
	}

	return zero, &RetryError{
		Message: fmt.Sprintf("exhausted %d attempts, last error: %v", retryParam.MaxAttempts, lastErr),
		Cause:   ErrExhaustedAttempts,
		LastErr: lastErr,
	}
}
