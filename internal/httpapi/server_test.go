package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codepr/searchcrawler/internal/config"
	"github.com/codepr/searchcrawler/internal/indexer"
	"github.com/codepr/searchcrawler/internal/pagerank"
	"github.com/codepr/searchcrawler/internal/ranker"
	"github.com/codepr/searchcrawler/internal/store"
	"github.com/codepr/searchcrawler/internal/textproc"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	processor := textproc.New(false)
	rk := ranker.New(st, processor, ranker.Weights{TFIDF: 1.0, PageRank: 10.0})
	idx := indexer.New(st, processor)
	pr := pagerank.New(st, 0.85, 20)

	cfg := &config.Config{
		SeedURLs:        []string{"http://example.com"},
		MaxPagesToCrawl: 1,
		UserAgent:       "test-agent",
	}

	return New(cfg, st, rk, idx, pr, nil), st
}

func TestHandleSearchRejectsEmptyQuery(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/search?q=", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleSearchRejectsWrongMethod(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/search?q=go", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", w.Code)
	}
}

func TestHandleSearchReturnsResults(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()

	title, content, cleaned := "Go Docs", "raw", "go is a programming language"
	id, err := st.UpsertPage(ctx, "http://example.com/go", &title, &content, &cleaned)
	if err != nil {
		t.Fatalf("UpsertPage failed: %v", err)
	}
	if err := st.SavePostings(ctx, id, map[string]int{"go": 1, "programming": 1, "language": 1}); err != nil {
		t.Fatalf("SavePostings failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/search?q=go", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var resp searchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Count)
	}
}

func TestHandleIndexRunsBuildAndPageRank(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()

	title, content, cleaned := "Go Docs", "raw", "go is great"
	if _, err := st.UpsertPage(ctx, "http://example.com/go", &title, &content, &cleaned); err != nil {
		t.Fatalf("UpsertPage failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/index", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", w.Code, w.Body.String())
	}

	text, ok, err := st.GetCleanedText(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("GetCleanedText failed: ok=%v err=%v", ok, err)
	}
	if text == "" {
		t.Errorf("expected cleaned text to remain set")
	}

	postings, err := st.PostingList(ctx, "go")
	if err != nil || len(postings) != 1 {
		t.Fatalf("PostingList(go) = %+v, err=%v, want one posting from the index build", postings, err)
	}
	if postings[0].PageRank <= 0 {
		t.Errorf("PageRank = %v, want > 0 after pagerank computation", postings[0].PageRank)
	}
}

func TestHandleCrawlRejectsWrongMethod(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/admin/crawl", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", w.Code)
	}
}
