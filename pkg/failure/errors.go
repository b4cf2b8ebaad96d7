package failure

import "errors"

type Severity int

// scheduler control flow
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

// ClassifiedError is the error contract shared by every pipeline stage.
// Stages may detect and classify failure; only the scheduler acts on
// Severity.
type ClassifiedError interface {
	error
	Severity() Severity
}

// Retryable is implemented by errors that carry their own retry semantics.
type Retryable interface {
	IsRetryable() bool
}

// IsRetryable reports whether err (or any error in its chain) declares
// itself retryable. Errors without retry semantics are never retried.
func IsRetryable(err error) bool {
	for err != nil {
		if r, ok := err.(Retryable); ok {
			return r.IsRetryable()
		}
		err = errors.Unwrap(err)
	}
	return false
}
