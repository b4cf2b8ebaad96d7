package scheduler

import (
	"context"

	"github.com/rohmanhakim/webgrab/internal/extractor"
	"github.com/rohmanhakim/webgrab/internal/robots"
	"github.com/rohmanhakim/webgrab/pkg/failure"
)

// ScrapeSingle fetches and extracts exactly one URL. No link following,
// no frontier; the rate limiter and robots gate still apply.
func (s *Scheduler) ScrapeSingle(ctx context.Context, rawURL string) (extractor.PageRecord, failure.ClassifiedError) {
	target, err := parseTarget(rawURL)
	if err != nil {
		return extractor.PageRecord{}, err
	}

	if decision := s.checkRobots(ctx, target); !decision.Allowed() {
		return extractor.PageRecord{}, &robots.DisallowedError{URL: target.String()}
	}

	return s.visit(ctx, target, 0)
}
