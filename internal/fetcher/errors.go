package fetcher

import (
	"fmt"

	"github.com/rohmanhakim/webgrab/pkg/failure"
)

type FetchErrorKind string

const (
	ErrKindNetwork       FetchErrorKind = "network"
	ErrKindTimeout       FetchErrorKind = "timeout"
	ErrKindHTTPStatus    FetchErrorKind = "http_status"
	ErrKindRedirectLimit FetchErrorKind = "redirect_limit"
	ErrKindReadBody      FetchErrorKind = "read_body"
	ErrKindBadRequest    FetchErrorKind = "bad_request"
	ErrKindCancelled     FetchErrorKind = "cancelled"
)

type FetchError struct {
	Message    string
	Retryable  bool
	Kind       FetchErrorKind
	StatusCode int
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetcher error: %s (%d)", e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("fetcher error: %s", e.Kind)
}

// A terminal fetch failure is recorded in the bundle and the run moves
// on; it never aborts a crawl.
func (e *FetchError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func (e *FetchError) IsRetryable() bool {
	return e.Retryable
}
