package robots

import (
	"fmt"

	"github.com/rohmanhakim/webgrab/pkg/failure"
)

// DisallowedError reports that a URL was rejected by the host's access
// policy. It is recoverable at run scope: one disallowed URL never
// aborts a crawl or a batch.
type DisallowedError struct {
	URL string
}

func (e *DisallowedError) Error() string {
	return fmt.Sprintf("disallowed by robots policy: %s", e.URL)
}

func (e *DisallowedError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}
