package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"

	"github.com/rohmanhakim/webgrab/pkg/urlutil"
)

/*
Responsibilities
- Fetch and cache each host's robots.txt exactly once per run
- Answer allow/deny for individual URLs against the cached policy
- Surface the policy's crawl-delay so the rate limiter can honor it

The gate fails open: a host whose robots.txt cannot be fetched is
treated as allowing everything. Only an explicit Disallow rule blocks a
URL.
*/

const robotsFetchTimeout = 10 * time.Second

type hostPolicy struct {
	group *robotstxt.Group
}

type Gate struct {
	httpClient *http.Client
	userAgent  string
	enabled    bool
	logger     *zap.Logger

	mu    sync.Mutex
	cache map[string]hostPolicy
}

func NewGate(enabled bool, userAgent string, logger *zap.Logger) *Gate {
	return &Gate{
		httpClient: &http.Client{Timeout: robotsFetchTimeout},
		userAgent:  userAgent,
		enabled:    enabled,
		logger:     logger,
		cache:      make(map[string]hostPolicy),
	}
}

// Decide reports whether target may be fetched. It performs at most one
// robots.txt request per host for the lifetime of the gate; every later
// decision for that host is answered from cache.
func (g *Gate) Decide(ctx context.Context, target url.URL) Decision {
	if !g.enabled {
		return allow(ReasonPolicyOff, nil)
	}
	if !urlutil.IsFetchable(target) {
		return deny(ReasonNonFetchable)
	}

	policy := g.policyFor(ctx, target)
	if policy.group == nil {
		return allow(ReasonUnavailable, nil)
	}

	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}
	if target.RawQuery != "" {
		path += "?" + target.RawQuery
	}
	if !policy.group.Test(path) {
		return deny(ReasonDisallowed)
	}

	var crawlDelay *time.Duration
	if policy.group.CrawlDelay > 0 {
		delay := policy.group.CrawlDelay
		crawlDelay = &delay
	}
	return allow(ReasonAllowed, crawlDelay)
}

func (g *Gate) policyFor(ctx context.Context, target url.URL) hostPolicy {
	key := target.Scheme + "://" + target.Host

	g.mu.Lock()
	defer g.mu.Unlock()

	if policy, cached := g.cache[key]; cached {
		return policy
	}

	policy := g.fetchPolicy(ctx, key)
	g.cache[key] = policy
	return policy
}

// fetchPolicy must be called with g.mu held. A nil group in the result
// means the policy is unavailable and the host fails open.
func (g *Gate) fetchPolicy(ctx context.Context, hostKey string) hostPolicy {
	robotsUrl := fmt.Sprintf("%s/robots.txt", hostKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsUrl, nil)
	if err != nil {
		return hostPolicy{}
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Debug("robots.txt unreachable, failing open",
			zap.String("host", hostKey), zap.Error(err))
		return hostPolicy{}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		g.logger.Debug("robots.txt body unreadable, failing open",
			zap.String("host", hostKey), zap.Error(err))
		return hostPolicy{}
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		g.logger.Debug("robots.txt unparseable, failing open",
			zap.String("host", hostKey), zap.Error(err))
		return hostPolicy{}
	}

	g.logger.Debug("robots.txt policy cached",
		zap.String("host", hostKey),
		zap.Int("statusCode", resp.StatusCode))
	return hostPolicy{group: data.FindGroup(g.userAgent)}
}
