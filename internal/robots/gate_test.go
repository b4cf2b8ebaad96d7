package robots_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rohmanhakim/webgrab/internal/robots"
)

const testUserAgent = "webgrab-test/1.0"

func mustParseURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func robotsServer(t *testing.T, robotsTxt string) (*httptest.Server, *int32) {
	t.Helper()
	var robotsFetches int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			atomic.AddInt32(&robotsFetches, 1)
			fmt.Fprint(w, robotsTxt)
			return
		}
		fmt.Fprint(w, "page")
	}))
	t.Cleanup(server.Close)
	return server, &robotsFetches
}

func TestDecide_AllowsAndDeniesByPolicy(t *testing.T) {
	server, _ := robotsServer(t, "User-agent: *\nDisallow: /private/\n")
	gate := robots.NewGate(true, testUserAgent, zap.NewNop())

	allowed := gate.Decide(context.Background(), mustParseURL(t, server.URL+"/public/page"))
	assert.True(t, allowed.Allowed())
	assert.Equal(t, robots.ReasonAllowed, allowed.Reason())

	denied := gate.Decide(context.Background(), mustParseURL(t, server.URL+"/private/secret"))
	assert.False(t, denied.Allowed())
	assert.Equal(t, robots.ReasonDisallowed, denied.Reason())
}

func TestDecide_FetchesPolicyOncePerHost(t *testing.T) {
	server, fetches := robotsServer(t, "User-agent: *\nDisallow:\n")
	gate := robots.NewGate(true, testUserAgent, zap.NewNop())

	for i := 0; i < 5; i++ {
		gate.Decide(context.Background(), mustParseURL(t, fmt.Sprintf("%s/page/%d", server.URL, i)))
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(fetches))
}

func TestDecide_FailsOpenWhenUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := server.URL
	server.Close()

	gate := robots.NewGate(true, testUserAgent, zap.NewNop())
	decision := gate.Decide(context.Background(), mustParseURL(t, deadURL+"/anything"))

	assert.True(t, decision.Allowed())
	assert.Equal(t, robots.ReasonUnavailable, decision.Reason())
}

func TestDecide_MissingPolicyAllowsAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	gate := robots.NewGate(true, testUserAgent, zap.NewNop())
	decision := gate.Decide(context.Background(), mustParseURL(t, server.URL+"/anything"))

	assert.True(t, decision.Allowed())
}

func TestDecide_DisabledGateAllowsEverything(t *testing.T) {
	server, fetches := robotsServer(t, "User-agent: *\nDisallow: /\n")
	gate := robots.NewGate(false, testUserAgent, zap.NewNop())

	decision := gate.Decide(context.Background(), mustParseURL(t, server.URL+"/private"))

	assert.True(t, decision.Allowed())
	assert.Equal(t, robots.ReasonPolicyOff, decision.Reason())
	assert.Equal(t, int32(0), atomic.LoadInt32(fetches))
}

func TestDecide_SurfacesCrawlDelay(t *testing.T) {
	server, _ := robotsServer(t, "User-agent: *\nCrawl-delay: 2\nDisallow:\n")
	gate := robots.NewGate(true, testUserAgent, zap.NewNop())

	decision := gate.Decide(context.Background(), mustParseURL(t, server.URL+"/page"))

	require.True(t, decision.Allowed())
	require.NotNil(t, decision.CrawlDelay())
	assert.Equal(t, 2*time.Second, *decision.CrawlDelay())
}

func TestDecide_AgentSpecificGroup(t *testing.T) {
	policy := "User-agent: webgrab-test\nDisallow: /blocked/\n\nUser-agent: *\nDisallow:\n"
	server, _ := robotsServer(t, policy)
	gate := robots.NewGate(true, testUserAgent, zap.NewNop())

	denied := gate.Decide(context.Background(), mustParseURL(t, server.URL+"/blocked/x"))
	assert.False(t, denied.Allowed())

	allowed := gate.Decide(context.Background(), mustParseURL(t, server.URL+"/open"))
	assert.True(t, allowed.Allowed())
}
