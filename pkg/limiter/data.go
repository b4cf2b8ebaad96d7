package limiter

import "time"

// timing-related data used to track when a host may be fetched next
type hostTiming struct {
	// lastSlotAt is the time of the most recently reserved fetch slot
	// for the host, not the time the fetch completed.
	lastSlotAt   time.Time
	backoffDelay time.Duration
	crawlDelay   time.Duration
	backoffCount int
}

func (h *hostTiming) CrawlDelay() time.Duration {
	return h.crawlDelay
}

func (h *hostTiming) BackoffDelay() time.Duration {
	return h.backoffDelay
}

func (h *hostTiming) LastSlotAt() time.Time {
	return h.lastSlotAt
}

func (h *hostTiming) BackoffCount() int {
	return h.backoffCount
}
