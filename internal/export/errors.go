package export

import (
	"fmt"

	"github.com/rohmanhakim/webgrab/pkg/failure"
)

// ExportError reports that one output format failed to materialize.
// Formats are isolated: an ExportError for one format never prevents
// the others from being written.
type ExportError struct {
	Format    string
	Message   string
	Retryable bool
	Cause     error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %s", e.Format, e.Message)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}

func (e *ExportError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func (e *ExportError) IsRetryable() bool {
	return e.Retryable
}
