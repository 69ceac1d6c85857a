// Package crawl implements the concurrent crawling frontier: a pool of
// workers dequeuing URLs from a shared frontier, fetching and parsing
// them, and atomically growing the persistent page/link graph.
package crawl

import (
	"context"
	"log"
	"time"

	"github.com/codepr/searchcrawler/internal/fetcher"
	"github.com/codepr/searchcrawler/internal/frontier"
	"github.com/codepr/searchcrawler/internal/store"
)

// fetchDequeueTimeout bounds each Frontier.Next call inside the worker
// loop. Workers loop on expiry rather than exiting; see Session for the
// actual shutdown path.
const fetchDequeueTimeout = time.Second

// Fetcher is the subset of *fetcher.Fetcher a Worker needs.
type Fetcher interface {
	Fetch(url string) ([]byte, bool)
}

// Store is the subset of *store.Store a Worker needs.
type Store interface {
	UpsertPage(ctx context.Context, url string, title, content, cleanedText *string) (int64, error)
	GetPageID(ctx context.Context, url string) (int64, bool, error)
	AddLink(ctx context.Context, sourceID, targetID int64) error
}

// Worker repeatedly dequeues a URL from a Frontier, fetches and parses it,
// persists the result, and enqueues its outlinks. One URL's failure never
// stops the worker; every exit from the loop body calls Frontier.Done.
type Worker struct {
	frontier  *frontier.Frontier
	fetcher   Fetcher
	store     Store
	delay     time.Duration
	logger    *log.Logger
	onFetched func()
}

// NewWorker creates a Worker that sleeps delay (politeness) before each
// fetch attempt.
func NewWorker(f *frontier.Frontier, ft Fetcher, st Store, delay time.Duration, logger *log.Logger) *Worker {
	return &Worker{frontier: f, fetcher: ft, store: st, delay: delay, logger: logger}
}

// OnFetched registers a callback invoked once per successfully-fetched
// (non-placeholder) page, letting a Session enforce MaxPages.
func (w *Worker) OnFetched(fn func()) {
	w.onFetched = fn
}

// Run loops until ctx is cancelled, processing one URL per iteration.
// Workers do not exit on a transient empty Frontier; only ctx cancellation
// (driven by the page cap or an explicit stop signal) ends the loop.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		url, ok := w.frontier.Next(fetchDequeueTimeout)
		if !ok {
			continue
		}
		// The item runs to completion even if ctx is cancelled meanwhile;
		// cancellation is observed between items.
		w.process(context.WithoutCancel(ctx), url)
	}
}

// process handles exactly one URL. Any failure is logged and swallowed;
// Frontier.Done is always called exactly once.
func (w *Worker) process(ctx context.Context, url string) {
	defer w.frontier.Done()

	time.Sleep(w.delay)

	body, ok := w.fetcher.Fetch(url)
	if !ok {
		return
	}

	// Parse failures leave the page as never-fetched: we simply return
	// without upserting, matching "Producer returns empty data; worker
	// treats the page as unfetched."
	data, err := fetcher.Parse(body, url)
	if err != nil {
		w.logf("parse error for %s: %v", url, err)
		return
	}

	srcID, err := w.store.UpsertPage(ctx, url, &data.Title, &data.RawContent, &data.CleanedText)
	if err != nil {
		w.logf("storage error upserting %s: %v", url, err)
		return
	}
	if w.onFetched != nil {
		w.onFetched()
	}

	for _, link := range data.Links {
		w.frontier.Add(link)

		targetID, found, err := w.store.GetPageID(ctx, link)
		if err != nil {
			w.logf("storage error reading %s: %v", link, err)
			continue
		}
		if !found {
			targetID, err = w.store.UpsertPage(ctx, link, nil, nil, nil)
			if err != nil {
				w.logf("storage error placeholder-inserting %s: %v", link, err)
				continue
			}
		}

		if err := w.store.AddLink(ctx, srcID, targetID); err != nil {
			w.logf("storage error linking %d->%d: %v", srcID, targetID, err)
		}
	}
}

func (w *Worker) logf(format string, args ...interface{}) {
	if w.logger != nil {
		w.logger.Printf(format, args...)
	}
}
