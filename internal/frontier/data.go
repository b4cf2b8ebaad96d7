package frontier

import "net/url"

// Crawl state & ordering

type SourceContext string

const (
	SourceSeed  SourceContext = "Seed"
	SourceCrawl SourceContext = "Crawl"
)

// CrawlAdmissionCandidate represents a URL that has already passed the
// scheduler's semantic admission checks (robots, scheme, skip lists).
//
// Invariants:
// - The frontier MUST NOT re-evaluate admission semantics
// - The frontier still owns mechanical checks: dedup, depth, scope,
//   capacity
type CrawlAdmissionCandidate struct {
	targetURL     url.URL
	sourceContext SourceContext
	depth         int
}

func NewCrawlAdmissionCandidate(
	targetUrl url.URL,
	sourceContext SourceContext,
	depth int,
) CrawlAdmissionCandidate {
	return CrawlAdmissionCandidate{
		targetURL:     targetUrl,
		sourceContext: sourceContext,
		depth:         depth,
	}
}

// CrawlToken is a dequeued unit of work: a canonicalized URL plus its
// discovery depth.
type CrawlToken struct {
	url   url.URL
	depth int
}

func (t CrawlToken) URL() url.URL {
	return t.url
}

func (t CrawlToken) Depth() int {
	return t.depth
}

// SubmitOutcome explains why a candidate did or did not enter the queue.
type SubmitOutcome string

const (
	SubmitAccepted     SubmitOutcome = "accepted"
	SubmitAlreadySeen  SubmitOutcome = "already_seen"
	SubmitTooDeep      SubmitOutcome = "too_deep"
	SubmitOutOfScope   SubmitOutcome = "out_of_scope"
	SubmitFrontierFull SubmitOutcome = "frontier_full"
	SubmitNotFetchable SubmitOutcome = "not_fetchable"
)
