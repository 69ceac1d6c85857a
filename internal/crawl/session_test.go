package crawl

import (
	"context"
	"testing"
	"time"

	"github.com/codepr/searchcrawler/internal/frontier"
)

func TestSessionRespectsMaxPages(t *testing.T) {
	pages := map[string]string{
		"http://a": `<a href="http://b">b</a>`,
		"http://b": `<a href="http://c">c</a>`,
		"http://c": `<a href="http://a">a</a>`,
	}
	fetch := &fakeFetcher{pages: pages}
	st := newFakeStore()

	session := NewSession(Settings{
		SeedURLs:        []string{"http://a"},
		MaxPages:        2,
		Concurrency:     1,
		PolitenessDelay: 0,
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	session.Run(ctx, func(f *frontier.Frontier) *Worker {
		return NewWorker(f, fetch, st, 0, nil)
	})

	st.mu.Lock()
	fetched := len(st.content)
	st.mu.Unlock()
	if fetched < 1 {
		t.Fatalf("expected at least one page fetched, got %d", fetched)
	}
	if fetched > 2 {
		t.Fatalf("expected at most MaxPages (2) pages fetched, got %d", fetched)
	}
}

func TestSessionStopSignalEndsRun(t *testing.T) {
	fetch := &fakeFetcher{pages: map[string]string{}}
	st := newFakeStore()

	session := NewSession(Settings{
		SeedURLs:        []string{"http://nowhere"},
		Concurrency:     2,
		PolitenessDelay: 0,
	}, nil)

	done := make(chan struct{})
	go func() {
		session.Run(context.Background(), func(f *frontier.Frontier) *Worker {
			return NewWorker(f, fetch, st, 0, nil)
		})
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	session.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after Stop")
	}
}

func TestSessionRunningFlag(t *testing.T) {
	fetch := &fakeFetcher{pages: map[string]string{}}
	st := newFakeStore()
	session := NewSession(Settings{Concurrency: 1}, nil)

	if session.Running() {
		t.Fatalf("session should not be running before Run")
	}

	done := make(chan struct{})
	go func() {
		session.Run(context.Background(), func(f *frontier.Frontier) *Worker {
			return NewWorker(f, fetch, st, 0, nil)
		})
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	if !session.Running() {
		t.Fatalf("session should be running during Run")
	}
	session.Stop()
	<-done
	if session.Running() {
		t.Fatalf("session should not be running after Run returns")
	}
}
