// Package ranker executes keyword queries against the stored index,
// combining TF·IDF and PageRank into a final score and attaching
// snippets.
package ranker

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/codepr/searchcrawler/internal/store"
	"github.com/codepr/searchcrawler/internal/textproc"
)

// ErrEmptyQuery is returned by Search when the query is empty or consists
// only of whitespace. A non-blank query whose tokens are all dropped (e.g.
// only stopwords) yields no results and no error. The HTTP boundary maps
// this error to a 400 response.
var ErrEmptyQuery = errors.New("ranker: empty query")

// TopK is the maximum number of results Search returns.
const TopK = 10

// snippetRadius is the number of characters kept on each side of the
// first matched token inside a result's cleaned text.
const snippetRadius = 60

// snippetFallbackLength is the prefix length used when no query token
// appears in the text.
const snippetFallbackLength = 150

// Result is one ranked hit.
type Result struct {
	URL      string
	Title    string
	Snippet  string
	Score    float64
	PageRank float64
}

// Store is the subset of *store.Store the Ranker needs.
type Store interface {
	DocumentCount(ctx context.Context) (int, error)
	DocFrequency(ctx context.Context, word string) (int, error)
	PostingList(ctx context.Context, word string) ([]store.Posting, error)
}

// Weights holds the linear-combination weights applied to TF·IDF and
// PageRank when producing a final score.
type Weights struct {
	TFIDF    float64
	PageRank float64
}

// Ranker scores and ranks documents for a query.
type Ranker struct {
	store     Store
	processor *textproc.Processor
	weights   Weights
}

// New creates a Ranker backed by st, tokenizing queries with processor.
func New(st Store, processor *textproc.Processor, weights Weights) *Ranker {
	return &Ranker{store: st, processor: processor, weights: weights}
}

// candidate accumulates a document's score and the metadata needed to
// build its final Result.
type candidate struct {
	url, title, text string
	pagerank         float64
	score            float64
}

// Search tokenizes query, scores every matching document term-at-a-time,
// and returns the top TopK results sorted by final score descending. An
// empty corpus, or a query with no surviving tokens, yields ([], nil) —
// except that a literally empty query is reported as ErrEmptyQuery so the
// HTTP boundary can surface a validation error.
func (r *Ranker) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	tokens := r.processor.Process(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	n, err := r.store.DocumentCount(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	candidates := make(map[int64]*candidate)
	order := []int64{} // preserves first-sight order for stable sort ties

	for _, term := range tokens {
		df, err := r.store.DocFrequency(ctx, term)
		if err != nil {
			return nil, err
		}
		if df == 0 {
			continue
		}
		idf := math.Log(float64(n) / float64(df))

		postings, err := r.store.PostingList(ctx, term)
		if err != nil {
			return nil, err
		}
		for _, p := range postings {
			c, ok := candidates[p.DocID]
			if !ok {
				c = &candidate{url: p.URL, title: p.Title, text: p.CleanedText, pagerank: p.PageRank}
				candidates[p.DocID] = c
				order = append(order, p.DocID)
			}
			c.score += float64(p.TF) * idf * r.weights.TFIDF
		}
	}

	results := make([]Result, 0, len(order))
	for _, docID := range order {
		c := candidates[docID]
		final := c.score + c.pagerank*r.weights.PageRank
		results = append(results, Result{
			URL:      c.url,
			Title:    c.title,
			Snippet:  snippet(c.text, tokens),
			Score:    final,
			PageRank: c.pagerank,
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > TopK {
		results = results[:TopK]
	}
	return results, nil
}

// snippet finds the first occurrence (case-insensitively) of any keyword
// in text and returns a window of snippetRadius characters on each side,
// with leading/trailing ellipses where the window was truncated. If no
// keyword is found, it returns the first snippetFallbackLength characters
// plus an ellipsis.
func snippet(text string, keywords []string) string {
	if text == "" {
		return ""
	}
	lower := strings.ToLower(text)

	startIdx := -1
	for _, k := range keywords {
		if idx := strings.Index(lower, k); idx != -1 {
			startIdx = idx
			break
		}
	}

	if startIdx == -1 {
		end := snippetFallbackLength
		if end > len(text) {
			end = len(text)
		}
		return text[:end] + "..."
	}

	start := startIdx - snippetRadius
	if start < 0 {
		start = 0
	}
	end := startIdx + snippetRadius
	if end > len(text) {
		end = len(text)
	}

	out := text[start:end]
	if start > 0 {
		out = "..." + out
	}
	if end < len(text) {
		out = out + "..."
	}
	return out
}
