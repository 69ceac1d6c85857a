// Package indexer performs the full-rebuild transformation from stored
// page text into inverted-index postings.
package indexer

import (
	"context"
	"fmt"

	"github.com/codepr/searchcrawler/internal/store"
	"github.com/codepr/searchcrawler/internal/textproc"
)

// Store is the subset of *store.Store the Indexer needs.
type Store interface {
	ListPages(ctx context.Context) ([]store.PageRef, error)
	GetCleanedText(ctx context.Context, id int64) (string, bool, error)
	SavePostings(ctx context.Context, docID int64, counts map[string]int) error
}

// Indexer rebuilds postings for every page with non-empty cleaned text.
type Indexer struct {
	store     Store
	processor *textproc.Processor
}

// New creates an Indexer backed by st, tokenizing with processor.
func New(st Store, processor *textproc.Processor) *Indexer {
	return &Indexer{store: st, processor: processor}
}

// Build runs a full rebuild: every page's cleaned text is tokenized, term
// frequencies are counted, and the resulting postings replace whatever
// was previously stored for that doc. Running Build twice over unchanged
// content produces the same postings (idempotent). A storage error aborts
// the whole rebuild immediately, leaving already-written docs as they are
// and previously-good rows for unreached docs untouched.
func (idx *Indexer) Build(ctx context.Context) error {
	pages, err := idx.store.ListPages(ctx)
	if err != nil {
		return fmt.Errorf("indexer: list pages: %w", err)
	}

	for _, page := range pages {
		text, ok, err := idx.store.GetCleanedText(ctx, page.ID)
		if err != nil {
			return fmt.Errorf("indexer: get cleaned text for %d: %w", page.ID, err)
		}
		if !ok {
			continue
		}

		counts := termFrequencies(idx.processor.Process(text))
		if err := idx.store.SavePostings(ctx, page.ID, counts); err != nil {
			return fmt.Errorf("indexer: save postings for %d: %w", page.ID, err)
		}
	}
	return nil
}

// termFrequencies counts occurrences of each token.
func termFrequencies(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}
