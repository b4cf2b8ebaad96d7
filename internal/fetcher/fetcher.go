package fetcher

import (
	"context"

	"github.com/rohmanhakim/webgrab/pkg/failure"
)

// Fetcher performs exactly one request per call. Retry and politeness
// live one layer up, in the scheduler.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResult, failure.ClassifiedError)
}
