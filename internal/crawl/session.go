package crawl

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/codepr/searchcrawler/internal/frontier"
)

// Settings configures a Session. SeedURLs, MaxPages and PolitenessDelay
// correspond to entries of the configuration table; Concurrency is set by
// the caller.
type Settings struct {
	// SeedURLs is the initial Frontier content for the session.
	SeedURLs []string
	// MaxPages bounds the number of pages fetched in this session; once
	// reached, workers stop pulling new URLs. Zero means unbounded.
	MaxPages int
	// Concurrency is the number of worker goroutines (target: 5).
	Concurrency int
	// PolitenessDelay records the session's politeness delay. Session does
	// not apply it itself: each Worker sleeps the delay passed to NewWorker.
	PolitenessDelay time.Duration
}

// Session orchestrates a pool of Workers sharing one Frontier, enforcing
// the MaxPages cap and providing a join barrier plus an explicit stop
// signal — the "explicit stop signal and a join barrier" the design notes
// call for, adapted from the teacher's WaitGroup + signal.Notify pattern.
type Session struct {
	frontier *frontier.Frontier
	settings Settings
	logger   *log.Logger

	pagesFetched int64
	stop         chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup

	mu      sync.Mutex
	running bool
}

// NewSession creates a Session ready to Run.
func NewSession(settings Settings, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		frontier: frontier.New(),
		settings: settings,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Running reports whether a Run call is currently in flight.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Run seeds the Frontier, starts Settings.Concurrency workers, and blocks
// until the page cap is reached, Stop is called, or ctx is cancelled.
// Every worker's remaining in-flight item is allowed to finish (the join
// barrier), so Run only returns once the pool has fully quiesced.
func (s *Session) Run(ctx context.Context, newWorker func(*frontier.Frontier) *Worker) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	for _, seed := range s.settings.SeedURLs {
		s.frontier.Add(seed)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.settings.MaxPages > 0 {
		go s.watchPageCap(workerCtx, cancel)
	}

	n := s.settings.Concurrency
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		s.wg.Add(1)
		worker := newWorker(s.frontier)
		worker.OnFetched(func() {
			s.RecordFetch()
			if s.settings.MaxPages > 0 && atomic.LoadInt64(&s.pagesFetched) >= int64(s.settings.MaxPages) {
				cancel()
			}
		})
		go func() {
			defer s.wg.Done()
			worker.Run(workerCtx)
		}()
	}

	select {
	case <-s.stop:
		cancel()
	case <-ctx.Done():
	case <-workerCtx.Done():
	}
	s.wg.Wait()
}

// watchPageCap polls the count of successfully-fetched pages (tracked via
// RecordFetch) and cancels cancel once MaxPages is reached.
func (s *Session) watchPageCap(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if atomic.LoadInt64(&s.pagesFetched) >= int64(s.settings.MaxPages) {
				cancel()
				return
			}
		}
	}
}

// RecordFetch increments the page-fetched counter; CrawlWorkers call this
// after a successful UpsertPage so Session can enforce MaxPages.
func (s *Session) RecordFetch() {
	atomic.AddInt64(&s.pagesFetched, 1)
}

// Stop signals every worker to finish its current item and exit.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Wait blocks until the Frontier's join barrier is satisfied: every URL
// ever enqueued has been processed.
func (s *Session) Wait() {
	s.frontier.Wait()
}
