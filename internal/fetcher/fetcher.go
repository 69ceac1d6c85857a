// Package fetcher implements robots-gated HTTP retrieval with bounded
// retries and HTML parsing into title/cleaned-text/outlink tuples.
package fetcher

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/rehttp"

	"github.com/codepr/searchcrawler/internal/robots"
)

// RobotsChecker is the subset of *robots.Cache a Fetcher consults before
// issuing a GET.
type RobotsChecker interface {
	CanFetch(url string) bool
}

// Fetcher performs robots-gated HTTP GETs. It is safe for concurrent use:
// it is stateless aside from the shared RobotsChecker and HTTP client,
// both of which are themselves safe for concurrent use.
type Fetcher struct {
	userAgent string
	robots    RobotsChecker
	client    *http.Client
}

// New creates a Fetcher that identifies itself as userAgent, consults
// checker before every GET, makes up to retryCount attempts with a fixed
// 1-second delay between attempts, and bounds each individual attempt —
// not the whole retry sequence — by timeout.
func New(userAgent string, checker RobotsChecker, timeout time.Duration, retryCount int) *Fetcher {
	if retryCount < 1 {
		retryCount = 1
	}
	base := &perAttemptTimeoutTransport{
		base: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
		timeout: timeout,
	}
	transport := rehttp.NewTransport(
		base,
		rehttp.RetryAll(
			rehttp.RetryMaxRetries(retryCount-1),
			rehttp.RetryFn(func(attempt rehttp.Attempt) bool {
				// Every non-200 response is retried, not just 5xx: a 404
				// or 403 may be transient (rate limiting, propagation
				// delay), and the source this was ported from falls
				// through to the next attempt on any non-200 status.
				return attempt.Error != nil || (attempt.Response != nil && attempt.Response.StatusCode != http.StatusOK)
			}),
		),
		rehttp.ConstDelay(time.Second),
	)
	return &Fetcher{
		userAgent: userAgent,
		robots:    checker,
		// client.Timeout is intentionally left unset: it would bound the
		// entire retry sequence (all attempts plus inter-attempt delays)
		// rather than each attempt. perAttemptTimeoutTransport enforces
		// timeout per attempt instead.
		client: &http.Client{Transport: transport},
	}
}

// perAttemptTimeoutTransport wraps a RoundTripper with a fresh
// context.WithTimeout deadline on every call. rehttp's retry transport
// invokes the wrapped RoundTripper once per attempt, so this gives each
// attempt its own REQUEST_TIMEOUT instead of sharing one deadline across
// the whole retry sequence.
type perAttemptTimeoutTransport struct {
	base    http.RoundTripper
	timeout time.Duration
}

func (t *perAttemptTimeoutTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(req.Context(), t.timeout)
	req = req.WithContext(ctx)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnCloseBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// cancelOnCloseBody releases an attempt's timeout context once its body
// is fully drained and closed, whether that happens because rehttp
// discarded a retried attempt's body or because the caller finished
// reading the final response.
type cancelOnCloseBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnCloseBody) Close() error {
	defer b.cancel()
	return b.ReadCloser.Close()
}

// Fetch retrieves rawURL, returning its body on HTTP 200. It returns
// (nil, false) when the URL is disallowed by robots.txt, or when the
// final attempt (after retryCount) still fails or returns a non-200
// status.
func (f *Fetcher) Fetch(rawURL string) ([]byte, bool) {
	if f.robots != nil && !f.robots.CanFetch(rawURL) {
		return nil, false
	}

	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false
	}
	return body, true
}

// Client exposes the underlying *http.Client, so the same retry/backoff
// policy can back the RobotsCache's own robots.txt fetches.
func (f *Fetcher) Client() *http.Client {
	return f.client
}
