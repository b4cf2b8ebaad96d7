package scheduler

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/rohmanhakim/webgrab/internal/export"
	"github.com/rohmanhakim/webgrab/internal/frontier"
)

// CrawlSite walks a site breadth-first from seedURL, within the depth,
// page, and domain limits. Per-URL failures become bundle markers; the
// only errors returned are an invalid seed and context cancellation,
// and a cancelled crawl still returns the partial bundle.
func (s *Scheduler) CrawlSite(ctx context.Context, seedURL string) (*export.Bundle, error) {
	seed, err := parseTarget(seedURL)
	if err != nil {
		return nil, err
	}

	bundle := export.NewBundle(ModeCrawl, seed.String())
	front := frontier.NewFrontier(
		s.cfg.MaxDepth(),
		s.cfg.MaxPages(),
		seed.Hostname(),
		s.cfg.AllowCrossDomain(),
	)
	stats := CrawlStats{}

	s.admit(ctx, front, bundle, &stats, seed, frontier.SourceSeed, 0)

	s.runCrawlLoop(ctx, front, bundle, &stats)

	bundle.Finish()
	s.logger.Info("crawl finished",
		zap.String("seed", seed.String()),
		zap.Int("pagesFetched", stats.PagesFetched),
		zap.Int("pagesFailed", stats.PagesFailed),
		zap.Int("linksSeen", stats.LinksSeen),
		zap.Int("disallowed", stats.Disallowed),
		zap.Int("skipped", stats.Skipped),
	)
	return bundle, ctx.Err()
}

// runCrawlLoop is the crawl's single-owner control loop. It alone
// touches the frontier and stats; workers only fetch and extract, and
// report back over the results channel.
func (s *Scheduler) runCrawlLoop(
	ctx context.Context,
	front *frontier.Frontier,
	bundle *export.Bundle,
	stats *CrawlStats,
) {
	results := make(chan fetchOutcome)
	inFlight := 0

	for {
		cancelled := ctx.Err() != nil

		if !cancelled {
			for inFlight < s.cfg.Concurrency() &&
				front.VisitedCount()+inFlight < s.cfg.MaxPages() {
				token, ok := front.Dequeue()
				if !ok {
					break
				}
				inFlight++
				go func(token frontier.CrawlToken) {
					record, err := s.visit(ctx, token.URL(), token.Depth())
					results <- fetchOutcome{token: token, record: record, err: err}
				}(token)
			}
		}

		if inFlight == 0 {
			return
		}

		outcome := <-results
		inFlight--
		front.MarkVisited(outcome.token)

		if outcome.err != nil {
			stats.PagesFailed++
			tokenURL := outcome.token.URL()
			bundle.AddFailure(tokenURL.String(), errorKind(outcome.err), outcome.err.Error())
			continue
		}

		stats.PagesFetched++
		bundle.AddRecord(outcome.record)

		if cancelled {
			continue
		}
		for _, link := range outcome.record.Links {
			stats.LinksSeen++
			parsed, parseErr := url.Parse(link)
			if parseErr != nil {
				stats.Skipped++
				continue
			}
			s.admit(ctx, front, bundle, stats, *parsed, frontier.SourceCrawl, outcome.token.Depth()+1)
		}
	}
}

// admit runs the semantic admission checks the frontier does not own:
// asset extension filtering and the robots gate. Candidates that pass go
// to the frontier for the mechanical checks.
func (s *Scheduler) admit(
	ctx context.Context,
	front *frontier.Frontier,
	bundle *export.Bundle,
	stats *CrawlStats,
	target url.URL,
	source frontier.SourceContext,
	depth int,
) {
	if hasSkippedExtension(target) {
		stats.Skipped++
		return
	}

	if decision := s.checkRobots(ctx, target); !decision.Allowed() {
		stats.Disallowed++
		// The seed being disallowed is worth reporting; individual links
		// are just counted.
		if source == frontier.SourceSeed {
			bundle.AddFailure(target.String(), "robots_disallowed", "seed URL disallowed by robots policy")
		}
		s.logger.Debug("robots disallowed", zap.String("url", target.String()))
		return
	}

	outcome := front.Submit(frontier.NewCrawlAdmissionCandidate(target, source, depth))
	if outcome != frontier.SubmitAccepted && outcome != frontier.SubmitAlreadySeen {
		stats.Skipped++
		s.logger.Debug("candidate rejected",
			zap.String("url", target.String()),
			zap.String("outcome", string(outcome)),
			zap.Int("depth", depth),
		)
	}
}
