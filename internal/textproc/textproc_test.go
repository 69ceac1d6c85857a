package textproc

import (
	"reflect"
	"testing"
)

func TestProcessDeterministic(t *testing.T) {
	p := New(false)
	text := "Python is great for web crawlers, crawlers!"
	first := p.Process(text)
	second := p.Process(text)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Process not deterministic: %v != %v", first, second)
	}
}

func TestProcessDropsStopwordsAndShortTokens(t *testing.T) {
	p := New(false)
	got := p.Process("The quick fox is a go")
	want := []string{"quick", "fox", "go"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Process failed: expected %v got %v", want, got)
	}
}

func TestProcessStripsPunctuationAndLowercases(t *testing.T) {
	p := New(false)
	got := p.Process("Hello, World!! Crawlers-rule.")
	want := []string{"hello", "world", "crawlersrule"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Process failed: expected %v got %v", want, got)
	}
}

func TestProcessWithStemming(t *testing.T) {
	p := New(true)
	got := p.Process("crawlers crawling crawled")
	want := []string{"crawler", "crawl", "crawl"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Process failed: expected %v got %v", want, got)
	}
}

func TestStemIdempotent(t *testing.T) {
	words := []string{"crawling", "crawled", "crawlers", "boxes", "kissing", "boss", "go", "s"}
	for _, w := range words {
		once := Stem(w)
		twice := Stem(once)
		if once != twice {
			t.Errorf("Stem not idempotent for %q: Stem=%q Stem(Stem)=%q", w, once, twice)
		}
	}
}

func TestStemRulesOrderedAndSingleApplication(t *testing.T) {
	cases := map[string]string{
		"crawling": "crawl",
		"crawled":  "crawl",
		"crawlers": "crawler",
		"boss":     "boss",
		"glass":    "glass",
		"dogs":     "dog",
	}
	for in, want := range cases {
		if got := Stem(in); got != want {
			t.Errorf("Stem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestProcessEmpty(t *testing.T) {
	p := New(true)
	if got := p.Process(""); got != nil {
		t.Errorf("Process(\"\") = %v, want nil", got)
	}
}
