package retry

import (
	"time"

	"github.com/rohmanhakim/webgrab/pkg/timeutil"
)

// RetryParam holds the parameters for retry logic. These parameters are
// passed from outside (e.g. config) and are not known by the retry handler
// internally.
type RetryParam struct {
	Jitter       time.Duration
	RandomSeed   int64
	MaxAttempts  int
	BackoffParam timeutil.BackoffParam
}

// NewRetryParam creates a new RetryParam with the given settings. A
// zero randomSeed selects a time-based seed, so distinct runs get
// distinct jitter; pass an explicit seed for reproducible waits.
func NewRetryParam(
	jitter time.Duration,
	randomSeed int64,
	maxAttempts int,
	backoffParam timeutil.BackoffParam,
) RetryParam {
	if randomSeed == 0 {
		randomSeed = time.Now().UnixNano()
	}
	return RetryParam{
		Jitter:       jitter,
		RandomSeed:   randomSeed,
		MaxAttempts:  maxAttempts,
		BackoffParam: backoffParam,
	}
}
