package fetcher

import (
	"net/url"
	"time"
)

// HTTP boundary

// FetchRequest describes one visit attempt. Immutable; a retry builds a
// new request with the attempt counter bumped.
type FetchRequest struct {
	fetchUrl url.URL
	attempt  int
	host     string
}

func NewFetchRequest(fetchUrl url.URL, attempt int) FetchRequest {
	return FetchRequest{
		fetchUrl: fetchUrl,
		attempt:  attempt,
		host:     fetchUrl.Hostname(),
	}
}

func (r *FetchRequest) URL() url.URL {
	return r.fetchUrl
}

func (r *FetchRequest) Attempt() int {
	return r.attempt
}

func (r *FetchRequest) Host() string {
	return r.host
}

// NextAttempt derives the request for the following retry.
func (r *FetchRequest) NextAttempt() FetchRequest {
	return FetchRequest{
		fetchUrl: r.fetchUrl,
		attempt:  r.attempt + 1,
		host:     r.host,
	}
}

// FetchResult is the successful outcome of one fetch. Failures travel as
// *FetchError instead.
type FetchResult struct {
	url      url.URL
	finalURL url.URL
	body     []byte
	meta     ResponseMeta
}

func (f *FetchResult) URL() url.URL {
	return f.url
}

// FinalURL is the URL after redirect resolution.
func (f *FetchResult) FinalURL() url.URL {
	return f.finalURL
}

func (f *FetchResult) Body() []byte {
	return f.body
}

func (f *FetchResult) Code() int {
	return f.meta.statusCode
}

func (f *FetchResult) Elapsed() time.Duration {
	return f.meta.elapsed
}

func (f *FetchResult) Headers() map[string]string {
	return f.meta.responseHeaders
}

func (f *FetchResult) ContentType() string {
	if ct, ok := f.meta.responseHeaders["Content-Type"]; ok {
		return ct
	}
	return ""
}

// IsHTML reports whether the response body can be parsed as markup.
// A missing Content-Type header is treated as HTML; the extractor is
// tolerant either way.
func (f *FetchResult) IsHTML() bool {
	ct := f.ContentType()
	if ct == "" {
		return true
	}
	return isHTMLContent(ct)
}

type ResponseMeta struct {
	statusCode      int
	elapsed         time.Duration
	responseHeaders map[string]string
}

// NewFetchResultForTest constructs a FetchResult without going through the
// network, so test packages do not need access to unexported fields.
func NewFetchResultForTest(
	fetchUrl url.URL,
	body []byte,
	statusCode int,
	responseHeaders map[string]string,
) FetchResult {
	return FetchResult{
		url:      fetchUrl,
		finalURL: fetchUrl,
		body:     body,
		meta: ResponseMeta{
			statusCode:      statusCode,
			responseHeaders: responseHeaders,
		},
	}
}
