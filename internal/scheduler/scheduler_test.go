package scheduler_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rohmanhakim/webgrab/internal/config"
	"github.com/rohmanhakim/webgrab/internal/fetcher"
	"github.com/rohmanhakim/webgrab/internal/scheduler"
	"github.com/rohmanhakim/webgrab/pkg/failure"
)

// scriptedResponse is one canned fetch outcome. Status codes at or above
// 400 are turned into the classification the real fetcher would produce.
type scriptedResponse struct {
	status      int
	body        string
	contentType string
}

// scriptedFetcher replays per-URL response sequences. The last response
// repeats once the script runs out, and unknown URLs answer 404.
type scriptedFetcher struct {
	mu    sync.Mutex
	pages map[string][]scriptedResponse
	calls map[string]int
}

func newScriptedFetcher() *scriptedFetcher {
	return &scriptedFetcher{
		pages: make(map[string][]scriptedResponse),
		calls: make(map[string]int),
	}
}

func (f *scriptedFetcher) script(url string, responses ...scriptedResponse) {
	f.pages[url] = responses
}

func (f *scriptedFetcher) page(url, body string) {
	f.script(url, scriptedResponse{status: 200, body: body})
}

func (f *scriptedFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func (f *scriptedFetcher) Fetch(ctx context.Context, request fetcher.FetchRequest) (fetcher.FetchResult, failure.ClassifiedError) {
	requestURL := request.URL()
	key := requestURL.String()

	f.mu.Lock()
	index := f.calls[key]
	f.calls[key]++
	responses := f.pages[key]
	f.mu.Unlock()

	if len(responses) == 0 {
		return fetcher.FetchResult{}, &fetcher.FetchError{
			Message: "not scripted", Kind: fetcher.ErrKindHTTPStatus, StatusCode: 404,
		}
	}
	if index >= len(responses) {
		index = len(responses) - 1
	}
	resp := responses[index]

	switch {
	case resp.status >= 500 || resp.status == 429:
		return fetcher.FetchResult{}, &fetcher.FetchError{
			Message: "scripted failure", Retryable: true,
			Kind: fetcher.ErrKindHTTPStatus, StatusCode: resp.status,
		}
	case resp.status >= 400:
		return fetcher.FetchResult{}, &fetcher.FetchError{
			Message: "scripted failure", Retryable: false,
			Kind: fetcher.ErrKindHTTPStatus, StatusCode: resp.status,
		}
	}

	contentType := resp.contentType
	if contentType == "" {
		contentType = "text/html; charset=utf-8"
	}
	return fetcher.NewFetchResultForTest(
		request.URL(), []byte(resp.body), resp.status,
		map[string]string{"Content-Type": contentType},
	), nil
}

func testConfig(t *testing.T, adjust func(config.Builder) config.Builder) config.Config {
	t.Helper()
	b := config.WithDefault().
		WithBaseDelay(0).
		WithJitter(0).
		WithRandomSeed(1).
		WithMaxRetries(3).
		WithBackoff(time.Millisecond, 2.0, 5*time.Millisecond).
		WithRespectRobots(false).
		WithConcurrency(2)
	if adjust != nil {
		b = adjust(b)
	}
	cfg, err := b.Build()
	require.NoError(t, err)
	return cfg
}

func htmlPage(title string, links ...string) string {
	page := fmt.Sprintf("<html><head><title>%s</title></head><body>", title)
	for _, link := range links {
		page += fmt.Sprintf(`<a href="%s">link</a>`, link)
	}
	return page + "</body></html>"
}

func TestScrapeSingle_Success(t *testing.T) {
	f := newScriptedFetcher()
	f.page("https://site.test/page", htmlPage("Landing", "/other"))

	s := scheduler.NewSchedulerWithFetcher(testConfig(t, nil), zap.NewNop(), f)
	record, err := s.ScrapeSingle(context.Background(), "https://site.test/page")

	require.Nil(t, err)
	assert.Equal(t, "https://site.test/page", record.URL)
	assert.Equal(t, "Landing", record.Title)
	assert.Equal(t, 200, record.StatusCode)
	assert.Equal(t, 0, record.Depth)
	assert.False(t, record.FetchedAt.IsZero())
	assert.Equal(t, []string{"https://site.test/other"}, record.Links)
}

func TestScrapeSingle_SchemeDefaultsToHTTPS(t *testing.T) {
	f := newScriptedFetcher()
	f.page("https://site.test", htmlPage("Home"))

	s := scheduler.NewSchedulerWithFetcher(testConfig(t, nil), zap.NewNop(), f)
	record, err := s.ScrapeSingle(context.Background(), "site.test")

	require.Nil(t, err)
	assert.Equal(t, "https://site.test", record.URL)
}

func TestScrapeSingle_InvalidURL(t *testing.T) {
	s := scheduler.NewSchedulerWithFetcher(testConfig(t, nil), zap.NewNop(), newScriptedFetcher())

	_, err := s.ScrapeSingle(context.Background(), "ht tp://bro ken")

	require.NotNil(t, err)
	var cfgErr *config.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, failure.SeverityFatal, err.Severity())
}

func TestScrapeSingle_RecoversWithinRetryBudget(t *testing.T) {
	f := newScriptedFetcher()
	f.script("https://site.test/flaky",
		scriptedResponse{status: 503},
		scriptedResponse{status: 503},
		scriptedResponse{status: 503},
		scriptedResponse{status: 200, body: htmlPage("Finally")},
	)

	s := scheduler.NewSchedulerWithFetcher(testConfig(t, nil), zap.NewNop(), f)
	record, err := s.ScrapeSingle(context.Background(), "https://site.test/flaky")

	require.Nil(t, err)
	assert.Equal(t, "Finally", record.Title)
	assert.Equal(t, 4, f.callCount("https://site.test/flaky"))
}

func TestScrapeSingle_ExhaustsRetries(t *testing.T) {
	f := newScriptedFetcher()
	f.script("https://site.test/down", scriptedResponse{status: 503})

	s := scheduler.NewSchedulerWithFetcher(testConfig(t, nil), zap.NewNop(), f)
	_, err := s.ScrapeSingle(context.Background(), "https://site.test/down")

	require.NotNil(t, err)
	// first attempt plus maxRetries
	assert.Equal(t, 4, f.callCount("https://site.test/down"))
}

func TestScrapeSingle_ZeroRetriesMeansOneAttempt(t *testing.T) {
	f := newScriptedFetcher()
	f.script("https://site.test/down", scriptedResponse{status: 503})

	cfg := testConfig(t, func(b config.Builder) config.Builder {
		return b.WithMaxRetries(0)
	})
	s := scheduler.NewSchedulerWithFetcher(cfg, zap.NewNop(), f)
	_, err := s.ScrapeSingle(context.Background(), "https://site.test/down")

	require.NotNil(t, err)
	assert.Equal(t, 1, f.callCount("https://site.test/down"))
}

func TestScrapeSingle_ClientErrorNotRetried(t *testing.T) {
	f := newScriptedFetcher()
	f.script("https://site.test/missing", scriptedResponse{status: 404})

	s := scheduler.NewSchedulerWithFetcher(testConfig(t, nil), zap.NewNop(), f)
	_, err := s.ScrapeSingle(context.Background(), "https://site.test/missing")

	require.NotNil(t, err)
	assert.Equal(t, 1, f.callCount("https://site.test/missing"))
}

func TestScrapeSingle_NonHTMLYieldsOpaqueRecord(t *testing.T) {
	f := newScriptedFetcher()
	f.script("https://site.test/report", scriptedResponse{
		status: 200, body: "%PDF-1.7", contentType: "application/pdf",
	})

	s := scheduler.NewSchedulerWithFetcher(testConfig(t, nil), zap.NewNop(), f)
	record, err := s.ScrapeSingle(context.Background(), "https://site.test/report")

	require.Nil(t, err)
	assert.Equal(t, 200, record.StatusCode)
	assert.Empty(t, record.Title)
	assert.Empty(t, record.Links)
	assert.NotEmpty(t, record.ContentHash)
}

func TestCrawlSite_FollowsInternalLinksOnly(t *testing.T) {
	f := newScriptedFetcher()
	f.page("https://site.test", htmlPage("Home", "/a", "/b", "/c", "https://elsewhere.test/x"))
	f.page("https://site.test/a", htmlPage("A"))
	f.page("https://site.test/b", htmlPage("B"))
	f.page("https://site.test/c", htmlPage("C"))

	s := scheduler.NewSchedulerWithFetcher(testConfig(t, nil), zap.NewNop(), f)
	bundle, err := s.CrawlSite(context.Background(), "https://site.test")

	require.NoError(t, err)
	records := bundle.Records()
	assert.Len(t, records, 4)
	assert.Equal(t, 0, f.callCount("https://elsewhere.test/x"))

	titles := make(map[string]int)
	for _, r := range records {
		titles[r.Title] = r.Depth
	}
	assert.Equal(t, 0, titles["Home"])
	assert.Equal(t, 1, titles["A"])
	assert.Equal(t, 1, titles["B"])
	assert.Equal(t, 1, titles["C"])
}

func TestCrawlSite_DeduplicatesAcrossPages(t *testing.T) {
	f := newScriptedFetcher()
	// a and b link to each other and back to the seed
	f.page("https://site.test", htmlPage("Home", "/a", "/b"))
	f.page("https://site.test/a", htmlPage("A", "/b", "/"))
	f.page("https://site.test/b", htmlPage("B", "/a", "/"))

	s := scheduler.NewSchedulerWithFetcher(testConfig(t, nil), zap.NewNop(), f)
	bundle, err := s.CrawlSite(context.Background(), "https://site.test")

	require.NoError(t, err)
	assert.Len(t, bundle.Records(), 3)
	assert.Equal(t, 1, f.callCount("https://site.test"))
	assert.Equal(t, 1, f.callCount("https://site.test/a"))
	assert.Equal(t, 1, f.callCount("https://site.test/b"))
}

func TestCrawlSite_RespectsMaxDepth(t *testing.T) {
	f := newScriptedFetcher()
	f.page("https://site.test", htmlPage("Home", "/child"))
	f.page("https://site.test/child", htmlPage("Child", "/grandchild"))
	f.page("https://site.test/grandchild", htmlPage("Grandchild"))

	s := scheduler.NewSchedulerWithFetcher(testConfig(t, func(b config.Builder) config.Builder {
		return b.WithMaxDepth(1)
	}), zap.NewNop(), f)

	bundle, err := s.CrawlSite(context.Background(), "https://site.test")

	require.NoError(t, err)
	assert.Len(t, bundle.Records(), 2)
	assert.Equal(t, 0, f.callCount("https://site.test/grandchild"))
}

func TestCrawlSite_RespectsMaxPages(t *testing.T) {
	f := newScriptedFetcher()
	var links []string
	for i := 0; i < 10; i++ {
		link := fmt.Sprintf("/p%d", i)
		links = append(links, link)
		f.page("https://site.test"+link, htmlPage(fmt.Sprintf("P%d", i)))
	}
	f.page("https://site.test", htmlPage("Home", links...))

	s := scheduler.NewSchedulerWithFetcher(testConfig(t, func(b config.Builder) config.Builder {
		return b.WithMaxPages(3)
	}), zap.NewNop(), f)

	bundle, err := s.CrawlSite(context.Background(), "https://site.test")

	require.NoError(t, err)
	assert.LessOrEqual(t, len(bundle.Records())+len(bundle.Failures()), 3)
}

func TestCrawlSite_FailedPageRecordedAndCrawlContinues(t *testing.T) {
	f := newScriptedFetcher()
	f.page("https://site.test", htmlPage("Home", "/broken", "/fine"))
	f.script("https://site.test/broken", scriptedResponse{status: 404})
	f.page("https://site.test/fine", htmlPage("Fine"))

	s := scheduler.NewSchedulerWithFetcher(testConfig(t, nil), zap.NewNop(), f)
	bundle, err := s.CrawlSite(context.Background(), "https://site.test")

	require.NoError(t, err)
	assert.Len(t, bundle.Records(), 2)

	failures := bundle.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "https://site.test/broken", failures[0].URL)
	assert.Equal(t, "http_status", failures[0].Kind)
}

func TestCrawlSite_SkipsBinaryAssetLinks(t *testing.T) {
	f := newScriptedFetcher()
	f.page("https://site.test", htmlPage("Home", "/manual.pdf", "/photo.jpg", "/real"))
	f.page("https://site.test/real", htmlPage("Real"))

	s := scheduler.NewSchedulerWithFetcher(testConfig(t, nil), zap.NewNop(), f)
	bundle, err := s.CrawlSite(context.Background(), "https://site.test")

	require.NoError(t, err)
	assert.Len(t, bundle.Records(), 2)
	assert.Equal(t, 0, f.callCount("https://site.test/manual.pdf"))
	assert.Equal(t, 0, f.callCount("https://site.test/photo.jpg"))
}

func TestCrawlSite_InvalidSeed(t *testing.T) {
	s := scheduler.NewSchedulerWithFetcher(testConfig(t, nil), zap.NewNop(), newScriptedFetcher())

	_, err := s.CrawlSite(context.Background(), "mailto:nobody@site.test")

	require.Error(t, err)
	var cfgErr *config.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestScrapeBatch_PreservesInputOrder(t *testing.T) {
	f := newScriptedFetcher()
	f.page("https://site.test/one", htmlPage("One"))
	f.page("https://site.test/two", htmlPage("Two"))
	f.page("https://site.test/three", htmlPage("Three"))

	s := scheduler.NewSchedulerWithFetcher(testConfig(t, nil), zap.NewNop(), f)
	bundle, err := s.ScrapeBatch(context.Background(), []string{
		"https://site.test/one",
		"https://site.test/two",
		"https://site.test/three",
	})

	require.NoError(t, err)
	records := bundle.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "One", records[0].Title)
	assert.Equal(t, "Two", records[1].Title)
	assert.Equal(t, "Three", records[2].Title)
}

func TestScrapeBatch_FailuresReportedIndividually(t *testing.T) {
	f := newScriptedFetcher()
	f.page("https://site.test/good", htmlPage("Good"))
	f.script("https://site.test/gone", scriptedResponse{status: 410})

	s := scheduler.NewSchedulerWithFetcher(testConfig(t, nil), zap.NewNop(), f)
	bundle, err := s.ScrapeBatch(context.Background(), []string{
		"https://site.test/good",
		"https://site.test/gone",
	})

	require.NoError(t, err)
	assert.Len(t, bundle.Records(), 1)

	failures := bundle.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "https://site.test/gone", failures[0].URL)
}

func TestScrapeBatch_RejectsMalformedListUpFront(t *testing.T) {
	f := newScriptedFetcher()
	f.page("https://site.test/ok", htmlPage("OK"))

	s := scheduler.NewSchedulerWithFetcher(testConfig(t, nil), zap.NewNop(), f)
	_, err := s.ScrapeBatch(context.Background(), []string{
		"https://site.test/ok",
		"ht tp://not a url",
	})

	require.Error(t, err)
	var cfgErr *config.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
	// validation happens before any fetch
	assert.Equal(t, 0, f.callCount("https://site.test/ok"))
}

func TestScrapeBatch_EmptyList(t *testing.T) {
	s := scheduler.NewSchedulerWithFetcher(testConfig(t, nil), zap.NewNop(), newScriptedFetcher())

	_, err := s.ScrapeBatch(context.Background(), nil)
	assert.Error(t, err)
}
