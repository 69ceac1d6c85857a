// Package robots implements a per-host robots.txt cache and the
// fetch-permission decisions CrawlWorker consults before fetching a URL.
package robots

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

const robotsTxtPath = "/robots.txt"

// httpGetter is the minimal surface Cache needs to retrieve a robots.txt
// file. Satisfied by *http.Client, and by test doubles.
type httpGetter interface {
	Get(url string) (*http.Response, error)
}

// entry holds the parsed group for one host, or nil when no usable
// robots.txt was found (allow-all).
type entry struct {
	group *robotstxt.Group
}

// Cache is a thread-safe, lazily-populated robots.txt cache keyed by
// "scheme://host". The first access for a host fetches and parses
// /robots.txt; any error during that fetch caches the host as allow-all.
type Cache struct {
	userAgent string
	client    httpGetter

	mu      sync.RWMutex
	entries map[string]*entry
}

// New creates a Cache that identifies itself as userAgent and fetches
// robots.txt files with client (typically an *http.Client with a
// timeout).
func New(userAgent string, client httpGetter) *Cache {
	return &Cache{
		userAgent: userAgent,
		client:    client,
		entries:   make(map[string]*entry),
	}
}

// CanFetch reports whether userAgent is allowed to fetch rawURL according
// to the cached (or freshly fetched) robots.txt rules of its host. Any
// malformed rawURL is treated as allowed, since there is no host to look
// up rules for.
func (c *Cache) CanFetch(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	e := c.entryFor(u)
	if e.group == nil {
		return true
	}
	return e.group.Test(u.RequestURI())
}

// entryFor returns the cached entry for u's host, populating it on first
// access.
func (c *Cache) entryFor(u *url.URL) *entry {
	host := u.Scheme + "://" + u.Host

	c.mu.RLock()
	e, ok := c.entries[host]
	c.mu.RUnlock()
	if ok {
		return e
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have populated it while we waited for the lock.
	if e, ok := c.entries[host]; ok {
		return e
	}
	e = c.fetch(host)
	c.entries[host] = e
	return e
}

// fetch retrieves and parses host's robots.txt. Any error (network,
// non-200, or parse failure) results in an allow-all entry.
func (c *Cache) fetch(host string) *entry {
	resp, err := c.client.Get(host + robotsTxtPath)
	if err != nil {
		return &entry{}
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return &entry{}
	}
	parsed, err := robotstxt.FromResponse(resp)
	if err != nil {
		return &entry{}
	}
	return &entry{group: parsed.FindGroup(c.userAgent)}
}

// NewHTTPClient builds the *http.Client typically handed to New, bounding
// robots.txt fetches by the same per-request timeout as ordinary fetches.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
