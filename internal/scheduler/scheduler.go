package scheduler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/rohmanhakim/webgrab/internal/config"
	"github.com/rohmanhakim/webgrab/internal/extractor"
	"github.com/rohmanhakim/webgrab/internal/fetcher"
	"github.com/rohmanhakim/webgrab/internal/robots"
	"github.com/rohmanhakim/webgrab/pkg/failure"
	"github.com/rohmanhakim/webgrab/pkg/fileutil"
	"github.com/rohmanhakim/webgrab/pkg/limiter"
	"github.com/rohmanhakim/webgrab/pkg/retry"
	"github.com/rohmanhakim/webgrab/pkg/timeutil"
	"github.com/rohmanhakim/webgrab/pkg/urlutil"
)

/*
Responsibilities
- Compose fetcher, extractor, rate limiter, robots gate, and frontier
  into the three run modes: single, crawl, batch
- Own the retry decision: stages classify failure, the scheduler retries
- Keep per-URL failures recoverable so one bad page never kills a run

Retry sits here and not in the fetcher: a retried attempt goes back
through the rate limiter gate, so backoff and politeness compound
instead of bypassing each other.
*/

type Scheduler struct {
	cfg       config.Config
	logger    *zap.Logger
	fetcher   fetcher.Fetcher
	extractor extractor.DomExtractor
	limiter   limiter.RateLimiter
	gate      *robots.Gate
}

func NewScheduler(cfg config.Config, logger *zap.Logger) *Scheduler {
	f := fetcher.NewHTTPFetcher(cfg.Timeout(), cfg.UserAgent(), logger)
	return newScheduler(cfg, logger, f)
}

// NewSchedulerWithFetcher injects a custom fetcher, for tests.
func NewSchedulerWithFetcher(cfg config.Config, logger *zap.Logger, f fetcher.Fetcher) *Scheduler {
	return newScheduler(cfg, logger, f)
}

func newScheduler(cfg config.Config, logger *zap.Logger, f fetcher.Fetcher) *Scheduler {
	rl := limiter.NewConcurrentRateLimiter()
	rl.SetBaseDelay(cfg.BaseDelay())
	rl.SetJitter(cfg.Jitter())
	if cfg.RandomSeed() != 0 {
		rl.SetRandomSeed(cfg.RandomSeed())
	}
	rl.SetBackoffParam(timeutil.NewBackoffParam(
		cfg.BackoffInitialDuration(),
		cfg.BackoffMultiplier(),
		cfg.BackoffMaxDuration(),
	))

	return &Scheduler{
		cfg:       cfg,
		logger:    logger,
		fetcher:   f,
		extractor: extractor.NewDomExtractor(logger),
		limiter:   rl,
		gate:      robots.NewGate(cfg.RespectRobots(), cfg.UserAgent(), logger),
	}
}

// parseTarget validates a user-supplied URL. A missing scheme defaults
// to https, matching what a person typing a bare domain means.
func parseTarget(rawURL string) (url.URL, failure.ClassifiedError) {
	parsed, err := url.Parse(rawURL)
	if err == nil && parsed.Scheme == "" && rawURL != "" {
		parsed, err = url.Parse("https://" + rawURL)
	}
	if err != nil || parsed.Host == "" {
		return url.URL{}, &config.ConfigError{
			Field:   "url",
			Message: fmt.Sprintf("invalid target URL %q", rawURL),
		}
	}
	canonical := urlutil.Canonicalize(*parsed)
	if !urlutil.IsFetchable(canonical) {
		return url.URL{}, &config.ConfigError{
			Field:   "url",
			Message: fmt.Sprintf("unsupported scheme %q", canonical.Scheme),
		}
	}
	return canonical, nil
}

// fetchWithRetry drives one URL through the politeness gate and the
// fetcher, retrying recoverable failures with exponential backoff. Each
// attempt re-acquires the rate limiter slot.
func (s *Scheduler) fetchWithRetry(ctx context.Context, target url.URL) (fetcher.FetchResult, failure.ClassifiedError) {
	host := target.Hostname()
	request := fetcher.NewFetchRequest(target, 1)

	retryParam := retry.NewRetryParam(
		s.cfg.Jitter(),
		s.cfg.RandomSeed(),
		s.cfg.MaxRetries()+1,
		timeutil.NewBackoffParam(
			s.cfg.BackoffInitialDuration(),
			s.cfg.BackoffMultiplier(),
			s.cfg.BackoffMaxDuration(),
		),
	)

	return retry.Retry(ctx, retryParam, func() (fetcher.FetchResult, failure.ClassifiedError) {
		if err := s.limiter.Acquire(ctx, host); err != nil {
			return fetcher.FetchResult{}, &fetcher.FetchError{
				Message:   err.Error(),
				Retryable: false,
				Kind:      fetcher.ErrKindCancelled,
			}
		}

		result, fetchErr := s.fetcher.Fetch(ctx, request)
		request = request.NextAttempt()
		if fetchErr != nil {
			if isServerPressure(fetchErr) {
				s.limiter.Backoff(host)
			}
			return fetcher.FetchResult{}, fetchErr
		}

		s.limiter.ResetBackoff(host)
		return result, nil
	})
}

// isServerPressure reports whether the failure indicates the server is
// overloaded or throttling us, which raises the host's backoff level.
func isServerPressure(err error) bool {
	var fetchErr *fetcher.FetchError
	if !errors.As(err, &fetchErr) {
		return false
	}
	return fetchErr.StatusCode == 429 || fetchErr.StatusCode >= 500
}

// visit fetches one URL and turns the response into a record. Non-HTML
// responses yield a record with only identity fields populated.
func (s *Scheduler) visit(ctx context.Context, target url.URL, depth int) (extractor.PageRecord, failure.ClassifiedError) {
	result, err := s.fetchWithRetry(ctx, target)
	if err != nil {
		return extractor.PageRecord{}, err
	}

	finalURL := result.FinalURL()

	var record extractor.PageRecord
	if result.IsHTML() {
		record = s.extractor.Extract(result.Body(), finalURL)
	} else {
		s.logger.Info("skipping non-markup content",
			zap.String("url", target.String()),
			zap.String("contentType", result.ContentType()))
		record = s.extractor.ExtractOpaque(result.Body(), finalURL)
	}

	record.URL = target.String()
	record.FinalURL = finalURL.String()
	record.StatusCode = result.Code()
	record.FetchedAt = time.Now().UTC()
	record.Depth = depth
	return record, nil
}

// checkRobots consults the policy gate and forwards any crawl-delay to
// the rate limiter, so policy and politeness stay consistent.
func (s *Scheduler) checkRobots(ctx context.Context, target url.URL) robots.Decision {
	decision := s.gate.Decide(ctx, target)
	if delay := decision.CrawlDelay(); delay != nil {
		s.limiter.SetCrawlDelay(target.Hostname(), *delay)
	}
	return decision
}

// hasSkippedExtension filters URLs pointing at binary assets.
func hasSkippedExtension(target url.URL) bool {
	ext := fileutil.GetFileExtension(target.Path)
	if ext == "" {
		return false
	}
	_, skip := skipExtensions[ext]
	return skip
}

// errorKind extracts a short machine-readable label for failure markers.
// RetryError wraps the last attempt's failure, so exhaustion is checked
// before unwrapping would reach the inner FetchError.
func errorKind(err failure.ClassifiedError) string {
	var retryErr *retry.RetryError
	if errors.As(err, &retryErr) && retryErr.Cause == retry.ErrExhaustedAttempts {
		return "retries_exhausted"
	}
	var fetchErr *fetcher.FetchError
	if errors.As(err, &fetchErr) {
		return string(fetchErr.Kind)
	}
	var disallowed *robots.DisallowedError
	if errors.As(err, &disallowed) {
		return "robots_disallowed"
	}
	return "error"
}
