package ranker

import (
	"context"
	"strings"
	"testing"

	"github.com/codepr/searchcrawler/internal/store"
	"github.com/codepr/searchcrawler/internal/textproc"
)

type fakeStore struct {
	docCount int
	df       map[string]int
	postings map[string][]store.Posting
}

func (s *fakeStore) DocumentCount(context.Context) (int, error) { return s.docCount, nil }

func (s *fakeStore) DocFrequency(_ context.Context, word string) (int, error) {
	return s.df[word], nil
}

func (s *fakeStore) PostingList(_ context.Context, word string) ([]store.Posting, error) {
	return s.postings[word], nil
}

func defaultWeights() Weights { return Weights{TFIDF: 1.0, PageRank: 1.0} }

func TestSearchEmptyQueryReturnsError(t *testing.T) {
	r := New(&fakeStore{}, textproc.New(false), defaultWeights())
	if _, err := r.Search(context.Background(), "   "); err != ErrEmptyQuery {
		t.Fatalf("err = %v, want ErrEmptyQuery", err)
	}
}

func TestSearchEmptyCorpusReturnsNoResults(t *testing.T) {
	st := &fakeStore{docCount: 0}
	r := New(st, textproc.New(false), defaultWeights())
	results, err := r.Search(context.Background(), "go")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %v", results)
	}
}

func TestSearchQueryWithOnlyStopwordsReturnsNoResults(t *testing.T) {
	st := &fakeStore{docCount: 5}
	r := New(st, textproc.New(false), defaultWeights())
	results, err := r.Search(context.Background(), "the a an")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %v", results)
	}
}

func TestSearchSinglePageMatch(t *testing.T) {
	st := &fakeStore{
		docCount: 1,
		df:       map[string]int{"crawler": 1},
		postings: map[string][]store.Posting{
			"crawler": {{DocID: 1, TF: 3, URL: "http://a", Title: "A", PageRank: 0.5, CleanedText: "a web crawler indexes pages"}},
		},
	}
	r := New(st, textproc.New(false), defaultWeights())
	results, err := r.Search(context.Background(), "crawler")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].URL != "http://a" {
		t.Errorf("URL = %q, want http://a", results[0].URL)
	}
}

func TestSearchRanksHigherPageRankAboveLowerWhenTFIDFTied(t *testing.T) {
	st := &fakeStore{
		docCount: 2,
		df:       map[string]int{"go": 2},
		postings: map[string][]store.Posting{
			"go": {
				{DocID: 1, TF: 1, URL: "http://low", Title: "Low", PageRank: 0.1, CleanedText: "go"},
				{DocID: 2, TF: 1, URL: "http://high", Title: "High", PageRank: 0.9, CleanedText: "go"},
			},
		},
	}
	r := New(st, textproc.New(false), defaultWeights())
	results, err := r.Search(context.Background(), "go")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].URL != "http://high" {
		t.Errorf("top result = %q, want http://high", results[0].URL)
	}
}

func TestSearchExcludesDocumentsNotMatchingAnyTerm(t *testing.T) {
	st := &fakeStore{
		docCount: 3,
		df:       map[string]int{"crawler": 1},
		postings: map[string][]store.Posting{
			"crawler": {{DocID: 1, TF: 1, URL: "http://b", Title: "B", PageRank: 0.2, CleanedText: "crawler"}},
		},
	}
	r := New(st, textproc.New(false), defaultWeights())
	results, err := r.Search(context.Background(), "crawler")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, res := range results {
		if res.URL == "http://c" {
			t.Errorf("unexpected unrelated page C in results")
		}
	}
}

func TestSearchCapsResultsAtTopK(t *testing.T) {
	postings := make([]store.Posting, 0, 15)
	for i := int64(1); i <= 15; i++ {
		postings = append(postings, store.Posting{DocID: i, TF: 1, URL: "http://x", Title: "X", PageRank: float64(i), CleanedText: "go"})
	}
	st := &fakeStore{
		docCount: 15,
		df:       map[string]int{"go": 15},
		postings: map[string][]store.Posting{"go": postings},
	}
	r := New(st, textproc.New(false), defaultWeights())
	results, err := r.Search(context.Background(), "go")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != TopK {
		t.Errorf("len(results) = %d, want %d", len(results), TopK)
	}
	if results[0].PageRank != 15 {
		t.Errorf("top result PageRank = %v, want 15 (highest)", results[0].PageRank)
	}
}

func TestSnippetAroundMatch(t *testing.T) {
	text := strings.Repeat("x", 100) + "needle" + strings.Repeat("y", 100)
	got := snippet(text, []string{"needle"})
	if !strings.Contains(got, "needle") {
		t.Errorf("snippet %q does not contain match", got)
	}
	if !strings.HasPrefix(got, "...") {
		t.Errorf("snippet %q should be prefixed with ellipsis", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("snippet %q should be suffixed with ellipsis", got)
	}
}

func TestSnippetNoMatchFallsBackToPrefix(t *testing.T) {
	text := strings.Repeat("z", 300)
	got := snippet(text, []string{"absent"})
	want := text[:snippetFallbackLength] + "..."
	if got != want {
		t.Errorf("snippet = %q, want %q", got, want)
	}
}

func TestSnippetShortTextNoTruncationMarkers(t *testing.T) {
	text := "short text with needle inside"
	got := snippet(text, []string{"needle"})
	if strings.HasPrefix(got, "...") || strings.HasSuffix(got, "...") {
		t.Errorf("snippet %q should not have ellipses when text is fully contained", got)
	}
	if got != text {
		t.Errorf("snippet = %q, want %q", got, text)
	}
}

func TestSnippetEmptyText(t *testing.T) {
	if got := snippet("", []string{"anything"}); got != "" {
		t.Errorf("snippet of empty text = %q, want empty", got)
	}
}
