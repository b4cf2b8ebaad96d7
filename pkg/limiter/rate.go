package limiter

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rohmanhakim/webgrab/pkg/timeutil"
)

// RateLimiter is the politeness gate in front of the fetcher.
// Responsibilities:
// - Bookkeep each hostname's reserved fetch slots
// - Compute the final delay for each hostname given base delay, robots
//   crawl-delay, and backoff state
// - Block callers until their reserved slot arrives
type RateLimiter interface {
	SetBaseDelay(baseDelay time.Duration)
	SetJitter(jitter time.Duration)
	SetRandomSeed(randomSeed int64)
	SetCrawlDelay(host string, delay time.Duration)
	Backoff(host string)
	ResetBackoff(host string)
	Acquire(ctx context.Context, host string) error
}

// ConcurrentRateLimiter serializes requests per host. The check of a
// host's last slot and the reservation of the next one happen under a
// single lock, so two concurrent fetches to the same host can never both
// pass the gate inside one delay window.
type ConcurrentRateLimiter struct {
	mu          sync.Mutex
	rngMu       sync.Mutex
	baseDelay   time.Duration
	jitter      time.Duration
	hostTimings map[string]hostTiming
	rng         *rand.Rand
	backoff     timeutil.BackoffParam

	// injectable clock for tests
	now func() time.Time
}

func NewConcurrentRateLimiter() *ConcurrentRateLimiter {
	return &ConcurrentRateLimiter{
		hostTimings: make(map[string]hostTiming),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		backoff:     timeutil.NewBackoffParam(1*time.Second, 2.0, 30*time.Second),
		now:         time.Now,
	}
}

func (r *ConcurrentRateLimiter) SetBaseDelay(baseDelay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.baseDelay = baseDelay
}

func (r *ConcurrentRateLimiter) SetJitter(jitter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.jitter = jitter
}

func (r *ConcurrentRateLimiter) SetRandomSeed(randomSeed int64) {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()

	r.rng = rand.New(rand.NewSource(randomSeed))
}

func (r *ConcurrentRateLimiter) SetBackoffParam(param timeutil.BackoffParam) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.backoff = param
}

// SetCrawlDelay sets a host-specific delay (e.g. robots.txt crawl-delay),
// separate from the global base delay.
func (r *ConcurrentRateLimiter) SetCrawlDelay(host string, delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timing := r.hostTimings[host]
	timing.crawlDelay = delay
	r.hostTimings[host] = timing
}

// Backoff raises the exponential backoff level for the given host.
func (r *ConcurrentRateLimiter) Backoff(host string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timing := r.hostTimings[host]
	timing.backoffCount++
	timing.backoffDelay = timeutil.ExponentialBackoffDelay(
		timing.backoffCount, 0, nil, r.backoff,
	)
	r.hostTimings[host] = timing
}

// ResetBackoff clears backoff state after a successful request.
func (r *ConcurrentRateLimiter) ResetBackoff(host string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timing, exists := r.hostTimings[host]
	if !exists {
		return
	}
	timing.backoffCount = 0
	timing.backoffDelay = 0
	r.hostTimings[host] = timing
}

// Acquire blocks until the minimum delay since the previous request to
// host has elapsed, then returns with the slot reserved. The reservation
// is made before sleeping: concurrent callers for the same host queue up
// behind each other rather than racing past the gate.
//
// The wait observes ctx and returns ctx.Err() on cancellation; the
// reserved slot is not released in that case, which errs on the polite
// side.
func (r *ConcurrentRateLimiter) Acquire(ctx context.Context, host string) error {
	slot := r.reserveSlot(host)

	wait := slot.Sub(r.now())
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// reserveSlot computes and records the next allowed fetch time for host
// in a single critical section.
func (r *ConcurrentRateLimiter) reserveSlot(host string) time.Time {
	r.mu.Lock()

	timing, exists := r.hostTimings[host]
	now := r.now()

	if !exists {
		// first request to this host goes out immediately
		timing.lastSlotAt = now
		r.hostTimings[host] = timing
		r.mu.Unlock()
		return now
	}

	delays := []time.Duration{r.baseDelay, timing.crawlDelay, timing.backoffDelay}
	finalDelay := timeutil.MaxDuration(delays)
	jitter := r.jitter
	r.mu.Unlock()

	// computeJitter takes its own lock; keep it outside r.mu
	finalDelay += r.computeJitter(jitter)

	r.mu.Lock()
	defer r.mu.Unlock()

	timing = r.hostTimings[host]
	now = r.now()
	slot := timing.lastSlotAt.Add(finalDelay)
	if slot.Before(now) {
		slot = now
	}
	timing.lastSlotAt = slot
	r.hostTimings[host] = timing
	return slot
}

// computeJitter returns a pseudo-random duration in [0, max).
func (r *ConcurrentRateLimiter) computeJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}

	r.rngMu.Lock()
	defer r.rngMu.Unlock()

	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return time.Duration(r.rng.Int63n(int64(max)))
}

// SetNowFunc injects a clock for tests.
func (r *ConcurrentRateLimiter) SetNowFunc(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *ConcurrentRateLimiter) GetBaseDelay() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.baseDelay
}

func (r *ConcurrentRateLimiter) GetJitter() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jitter
}

// GetHostTimings returns a shallow copy to avoid exposing the internal
// map for mutation.
func (r *ConcurrentRateLimiter) GetHostTimings() map[string]hostTiming {
	r.mu.Lock()
	defer r.mu.Unlock()

	copyMap := make(map[string]hostTiming, len(r.hostTimings))
	for k, v := range r.hostTimings {
		copyMap[k] = v
	}
	return copyMap
}
