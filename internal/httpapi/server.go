// Package httpapi exposes the search engine over HTTP: a query endpoint
// and two admin endpoints that trigger a crawl or a full index rebuild.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/codepr/searchcrawler/internal/config"
	"github.com/codepr/searchcrawler/internal/crawl"
	"github.com/codepr/searchcrawler/internal/fetcher"
	"github.com/codepr/searchcrawler/internal/frontier"
	"github.com/codepr/searchcrawler/internal/indexer"
	"github.com/codepr/searchcrawler/internal/pagerank"
	"github.com/codepr/searchcrawler/internal/ranker"
	"github.com/codepr/searchcrawler/internal/robots"
)

// Store is the subset of *store.Store a crawl session's workers need.
type Store interface {
	crawl.Store
}

// Server wires the ranker, indexer and pagerank components behind three
// routes. A single mutex admits one admin task (crawl start, or
// index+pagerank) at a time, per spec.md §5's "serialize them"
// requirement for indexing and PageRank.
type Server struct {
	cfg      *config.Config
	store    Store
	ranker   *ranker.Ranker
	indexer  *indexer.Indexer
	pagerank *pagerank.PageRank
	logger   *log.Logger

	adminMu sync.Mutex
	session *crawl.Session
}

// New creates a Server. logger may be nil, in which case log.Default is used.
func New(cfg *config.Config, st Store, rk *ranker.Ranker, idx *indexer.Indexer, pr *pagerank.PageRank, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{cfg: cfg, store: st, ranker: rk, indexer: idx, pagerank: pr, logger: logger}
}

// Handler returns the routed http.Handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/admin/crawl", s.handleCrawl)
	mux.HandleFunc("/admin/index", s.handleIndex)
	return mux
}

type searchResponse struct {
	Query   string          `json:"query"`
	Count   int             `json:"count"`
	Results []ranker.Result `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query().Get("q")
	results, err := s.ranker.Search(r.Context(), q)
	if errors.Is(err, ranker.ErrEmptyQuery) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "query parameter 'q' is required"})
		return
	}
	if err != nil {
		s.logger.Printf("search error for %q: %v", q, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Query: q, Count: len(results), Results: results})
}

func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.adminMu.Lock()
	if s.session != nil && s.session.Running() {
		s.adminMu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"message": "crawler already running"})
		return
	}

	session := crawl.NewSession(crawl.Settings{
		SeedURLs:        s.cfg.SeedURLs,
		MaxPages:        s.cfg.MaxPagesToCrawl,
		Concurrency:     5,
		PolitenessDelay: s.cfg.DelayBetweenRequests,
	}, s.logger)
	s.session = session
	s.adminMu.Unlock()

	go s.runCrawl(session)

	writeJSON(w, http.StatusOK, map[string]string{"message": "crawler started in background"})
}

// runCrawl builds a fresh robots cache and fetcher for the session and
// runs it to completion. It is invoked in its own goroutine; the session
// itself enforces MaxPages and responds to Stop.
func (s *Server) runCrawl(session *crawl.Session) {
	robotsCache := robots.New(s.cfg.UserAgent, robots.NewHTTPClient(s.cfg.RequestTimeout))
	ft := fetcher.New(s.cfg.UserAgent, robotsCache, s.cfg.RequestTimeout, s.cfg.RetryCount)

	session.Run(context.Background(), func(f *frontier.Frontier) *crawl.Worker {
		return crawl.NewWorker(f, ft, s.store, s.cfg.DelayBetweenRequests, s.logger)
	})
	s.logger.Printf("crawl session finished")
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.adminMu.Lock()
	defer s.adminMu.Unlock()

	if err := s.indexer.Build(r.Context()); err != nil {
		s.logger.Printf("index build error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "indexing failed"})
		return
	}
	if err := s.pagerank.Compute(r.Context()); err != nil {
		s.logger.Printf("pagerank compute error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "pagerank computation failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "indexing and pagerank complete"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
