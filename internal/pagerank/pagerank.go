// Package pagerank computes the damped, dangling-node-aware PageRank
// vector over the crawled link graph.
package pagerank

import (
	"context"
	"fmt"

	"github.com/codepr/searchcrawler/internal/store"
)

// Store is the subset of *store.Store PageRank needs.
type Store interface {
	ListPages(ctx context.Context) ([]store.PageRef, error)
	IterLinks(ctx context.Context) ([]store.LinkEdge, error)
	UpdatePageRank(ctx context.Context, id int64, score float64) error
}

// PageRank runs the pull-dangling damped random-walk computation.
type PageRank struct {
	store      Store
	damping    float64
	iterations int
}

// New creates a PageRank computation with damping factor d and a fixed
// iteration count.
func New(st Store, damping float64, iterations int) *PageRank {
	return &PageRank{store: st, damping: damping, iterations: iterations}
}

// Compute loads the page set and link graph, runs the fixed number of
// iterations, and persists each page's final score. On an empty page set
// it returns immediately without writing anything.
func (pr *PageRank) Compute(ctx context.Context) error {
	pages, err := pr.store.ListPages(ctx)
	if err != nil {
		return fmt.Errorf("pagerank: list pages: %w", err)
	}
	n := len(pages)
	if n == 0 {
		return nil
	}

	ids := make([]int64, n)
	index := make(map[int64]int, n)
	for i, p := range pages {
		ids[i] = p.ID
		index[p.ID] = i
	}

	edges, err := pr.store.IterLinks(ctx)
	if err != nil {
		return fmt.Errorf("pagerank: iter links: %w", err)
	}
	outlinks := make([][]int, n)
	for _, e := range edges {
		si, sok := index[e.SourceID]
		ti, tok := index[e.TargetID]
		if !sok || !tok {
			continue
		}
		outlinks[si] = append(outlinks[si], ti)
	}

	score := computeScores(n, outlinks, pr.damping, pr.iterations)

	for i, id := range ids {
		if err := pr.store.UpdatePageRank(ctx, id, score[i]); err != nil {
			return fmt.Errorf("pagerank: update page %d: %w", id, err)
		}
	}
	return nil
}

// computeScores runs the fixed-iteration pull-dangling damped PageRank
// over n pages whose outlinks (by index) are given in outlinks.
func computeScores(n int, outlinks [][]int, damping float64, iterations int) []float64 {
	pr := make([]float64, n)
	for i := range pr {
		pr[i] = 1.0 / float64(n)
	}

	dangling := make([]bool, n)
	for i, out := range outlinks {
		dangling[i] = len(out) == 0
	}

	for iter := 0; iter < iterations; iter++ {
		var danglingSum float64
		for i, d := range dangling {
			if d {
				danglingSum += pr[i]
			}
		}

		contrib := make([]float64, n)
		for i, out := range outlinks {
			if len(out) == 0 {
				continue
			}
			share := pr[i] / float64(len(out))
			for _, j := range out {
				contrib[j] += share
			}
		}

		base := (1.0 - damping) / float64(n)
		dval := damping * danglingSum / float64(n)

		next := make([]float64, n)
		for i := range next {
			next[i] = base + dval + damping*contrib[i]
		}
		pr = next
	}
	return pr
}
