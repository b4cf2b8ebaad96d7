package retry

import (
	"fmt"

	"github.com/rohmanhakim/webgrab/pkg/failure"
)

type RetryErrorCause string

const (
	ErrZeroAttempt       RetryErrorCause = "zero attempt"
	ErrExhaustedAttempts RetryErrorCause = "exhausted attempts"
	ErrCancelled         RetryErrorCause = "cancelled"
)

type RetryError struct {
	Message string
	Cause   RetryErrorCause
	// Last error returned by the task before exhaustion, nil for
	// configuration errors.
	LastErr failure.ClassifiedError
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("retry error: %s, %s", e.Cause, e.Message)
}

// Exhaustion is a normal, reported outcome at the scheduler level, never a
// crash.
func (e *RetryError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func (e *RetryError) Unwrap() error {
	if e.LastErr == nil {
		return nil
	}
	return e.LastErr
}

// Is allows errors.Is to match RetryError types.
func (e *RetryError) Is(target error) bool {
	_, ok := target.(*RetryError)
	return ok
}
