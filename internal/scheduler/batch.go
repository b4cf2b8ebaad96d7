package scheduler

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rohmanhakim/webgrab/internal/config"
	"github.com/rohmanhakim/webgrab/internal/export"
	"github.com/rohmanhakim/webgrab/internal/extractor"
	"github.com/rohmanhakim/webgrab/internal/robots"
	"github.com/rohmanhakim/webgrab/pkg/failure"
)

// batchResult holds one URL's outcome at its input position, so the
// bundle preserves the caller's ordering regardless of which worker
// finished first.
type batchResult struct {
	record   extractor.PageRecord
	err      failure.ClassifiedError
	resolved url.URL
}

// ScrapeBatch fetches an explicit list of URLs with bounded concurrency.
// There is no link following. The whole list is validated before the
// first fetch; a malformed entry fails the run up front rather than
// halfway through.
func (s *Scheduler) ScrapeBatch(ctx context.Context, rawURLs []string) (*export.Bundle, error) {
	if len(rawURLs) == 0 {
		return nil, &config.ConfigError{Field: "urls", Message: "at least one URL required"}
	}

	targets := make([]url.URL, len(rawURLs))
	for i, raw := range rawURLs {
		target, err := parseTarget(raw)
		if err != nil {
			return nil, err
		}
		targets[i] = target
	}

	seed := targets[0].String()
	if len(targets) > 1 {
		seed = fmt.Sprintf("%s (+%d more)", seed, len(targets)-1)
	}
	bundle := export.NewBundle(ModeBatch, seed)

	results := make([]batchResult, len(targets))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency())

	for i, target := range targets {
		g.Go(func() error {
			if groupCtx.Err() != nil {
				return groupCtx.Err()
			}

			results[i].resolved = target
			if decision := s.checkRobots(groupCtx, target); !decision.Allowed() {
				results[i].err = &robots.DisallowedError{URL: target.String()}
				return nil
			}

			record, err := s.visit(groupCtx, target, 0)
			results[i].record = record
			results[i].err = err
			return nil
		})
	}

	waitErr := g.Wait()

	fetched, failed := 0, 0
	for _, result := range results {
		if result.resolved.Host == "" {
			// never dispatched, run was cancelled first
			continue
		}
		if result.err != nil {
			failed++
			bundle.AddFailure(result.resolved.String(), errorKind(result.err), result.err.Error())
			continue
		}
		fetched++
		bundle.AddRecord(result.record)
	}

	bundle.Finish()
	s.logger.Info("batch finished",
		zap.Int("requested", len(targets)),
		zap.Int("fetched", fetched),
		zap.Int("failed", failed),
	)
	return bundle, waitErr
}
