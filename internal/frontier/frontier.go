package frontier

import (
	"github.com/rohmanhakim/webgrab/pkg/urlutil"
)

/*
Responsibilities
- Own the breadth-first ordering of the crawl
- Deduplicate URLs across queued and visited state
- Enforce the depth ceiling, domain scope, and page capacity

The frontier is not safe for concurrent use. The crawl control loop is
its single owner; workers never touch it.
*/

type Frontier struct {
	queue    *FIFOQueue[CrawlToken]
	visited  Set[string]
	enqueued Set[string]

	maxDepth         int
	maxPages         int
	scopeHost        string
	allowCrossDomain bool
}

func NewFrontier(maxDepth int, maxPages int, scopeHost string, allowCrossDomain bool) *Frontier {
	return &Frontier{
		queue:            NewFIFOQueue[CrawlToken](),
		visited:          NewSet[string](),
		enqueued:         NewSet[string](),
		maxDepth:         maxDepth,
		maxPages:         maxPages,
		scopeHost:        scopeHost,
		allowCrossDomain: allowCrossDomain,
	}
}

// Submit runs the mechanical admission checks and enqueues the candidate
// if all pass. Canonicalization happens here, once, so every dedup
// decision is made against the same key.
func (f *Frontier) Submit(candidate CrawlAdmissionCandidate) SubmitOutcome {
	canonical := urlutil.Canonicalize(candidate.targetURL)

	if !urlutil.IsFetchable(canonical) {
		return SubmitNotFetchable
	}
	if candidate.depth > f.maxDepth {
		return SubmitTooDeep
	}
	if !f.allowCrossDomain && canonical.Hostname() != f.scopeHost {
		return SubmitOutOfScope
	}

	key := urlutil.CanonicalKey(canonical)
	if f.visited.Contains(key) || f.enqueued.Contains(key) {
		return SubmitAlreadySeen
	}

	// Never queue more work than the page budget can still absorb.
	if f.visited.Size()+f.queue.Size() >= f.maxPages {
		return SubmitFrontierFull
	}

	f.enqueued.Add(key)
	f.queue.Enqueue(CrawlToken{url: canonical, depth: candidate.depth})
	return SubmitAccepted
}

func (f *Frontier) Dequeue() (CrawlToken, bool) {
	return f.queue.Dequeue()
}

// MarkVisited records that the token's URL has been fetched, successfully
// or not. Failed URLs stay in the visited set so they are never retried
// within the same crawl.
func (f *Frontier) MarkVisited(token CrawlToken) {
	key := urlutil.CanonicalKey(token.url)
	f.enqueued.Remove(key)
	f.visited.Add(key)
}

func (f *Frontier) HasVisited(token CrawlToken) bool {
	return f.visited.Contains(urlutil.CanonicalKey(token.url))
}

func (f *Frontier) VisitedCount() int {
	return f.visited.Size()
}

func (f *Frontier) QueueSize() int {
	return f.queue.Size()
}
