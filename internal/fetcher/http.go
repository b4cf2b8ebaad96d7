package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rohmanhakim/webgrab/pkg/failure"
)

/*
Responsibilities

- Perform HTTP requests
- Apply headers and timeouts
- Handle redirects safely
- Classify responses

Classification

- Network/transport errors, timeouts, 5xx, 429 → retryable
- Other 4xx → not retryable
- 2xx (after redirect resolution) → success
- A 3xx reaching the classifier means the redirect limit was hit

The fetcher never parses content; it only returns bytes and metadata.
*/

const maxRedirects = 10

type HTTPFetcher struct {
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
}

func NewHTTPFetcher(timeout time.Duration, userAgent string, logger *zap.Logger) HTTPFetcher {
	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	return HTTPFetcher{
		httpClient: client,
		userAgent:  userAgent,
		logger:     logger,
	}
}

// NewHTTPFetcherWithClient injects a custom client, for tests.
func NewHTTPFetcherWithClient(client *http.Client, userAgent string, logger *zap.Logger) HTTPFetcher {
	return HTTPFetcher{
		httpClient: client,
		userAgent:  userAgent,
		logger:     logger,
	}
}

func (h HTTPFetcher) Fetch(ctx context.Context, request FetchRequest) (FetchResult, failure.ClassifiedError) {
	startTime := time.Now()

	requestURL := request.URL()

	result, err := h.performFetch(ctx, requestURL)

	elapsed := time.Since(startTime)

	if err != nil {
		h.logger.Warn("fetch failed",
			zap.String("url", requestURL.String()),
			zap.Int("attempt", request.Attempt()),
			zap.String("kind", string(err.Kind)),
			zap.Int("status", err.StatusCode),
			zap.Bool("retryable", err.Retryable),
			zap.Duration("elapsed", elapsed),
		)
		return FetchResult{}, err
	}

	result.meta.elapsed = elapsed
	h.logger.Info("fetched",
		zap.String("url", requestURL.String()),
		zap.Int("status", result.Code()),
		zap.Int("bytes", len(result.Body())),
		zap.Duration("elapsed", elapsed),
	)
	return result, nil
}

func (h HTTPFetcher) performFetch(ctx context.Context, fetchUrl url.URL) (FetchResult, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Kind:      ErrKindBadRequest,
		}
	}

	for key, value := range requestHeaders(h.userAgent) {
		req.Header.Set(key, value)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return FetchResult{}, &FetchError{
				Message:   fmt.Sprintf("request timed out: %v", err),
				Retryable: true,
				Kind:      ErrKindTimeout,
			}
		}
		// Connection/DNS failures are retryable
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
			Kind:      ErrKindNetwork,
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("server error: %d", resp.StatusCode),
			Retryable:  true,
			Kind:       ErrKindHTTPStatus,
			StatusCode: resp.StatusCode,
		}

	case resp.StatusCode == http.StatusTooManyRequests:
		return FetchResult{}, &FetchError{
			Message:    "rate limited (429)",
			Retryable:  true,
			Kind:       ErrKindHTTPStatus,
			StatusCode: resp.StatusCode,
		}

	case resp.StatusCode >= 400:
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("client error: %d", resp.StatusCode),
			Retryable:  false,
			Kind:       ErrKindHTTPStatus,
			StatusCode: resp.StatusCode,
		}

	case resp.StatusCode >= 300:
		// Redirects are resolved by http.Client; reaching here means the
		// redirect chain exceeded the limit.
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("redirect limit exceeded: %d", resp.StatusCode),
			Retryable:  false,
			Kind:       ErrKindRedirectLimit,
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("failed to read response body: %v", err),
			Retryable: true,
			Kind:      ErrKindReadBody,
		}
	}

	responseHeaders := make(map[string]string, len(resp.Header))
	for key, values := range resp.Header {
		if len(values) > 0 {
			responseHeaders[key] = values[0]
		}
	}

	finalURL := fetchUrl
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = *resp.Request.URL
	}

	return FetchResult{
		url:      fetchUrl,
		finalURL: finalURL,
		body:     body,
		meta: ResponseMeta{
			statusCode:      resp.StatusCode,
			responseHeaders: responseHeaders,
		},
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func isHTMLContent(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "application/xhtml")
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
		"Connection":      "keep-alive",
	}
}
