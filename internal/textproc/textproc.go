// Package textproc implements the deterministic tokenization pipeline shared
// by the indexer and the ranker: lowercasing, punctuation stripping,
// stopword removal and optional light stemming.
package textproc

import (
	"strings"
	"unicode"
)

// stopwords is the built-in 40-word exclusion set. Any token equal to one
// of these, after lowercasing, is dropped.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "with": true, "by": true, "from": true,
	"of": true, "that": true, "this": true, "it": true, "as": true, "be": true,
	"not": true, "have": true, "has": true, "had": true, "do": true, "does": true,
	"did": true, "will": true, "would": true, "shall": true, "should": true,
	"can": true, "could": true, "may": true, "might": true, "must": true,
}

// Processor tokenizes text deterministically. The zero value is ready to
// use with stemming disabled.
type Processor struct {
	// UseStemming enables the suffix-stripping step described by Stem.
	UseStemming bool
}

// New creates a Processor with the given stemming setting.
func New(useStemming bool) *Processor {
	return &Processor{UseStemming: useStemming}
}

// Process runs the full pipeline over text, returning an ordered slice of
// normalized tokens. The same input always yields the same output.
func (p *Processor) Process(text string) []string {
	if text == "" {
		return nil
	}
	lowered := strings.ToLower(text)
	stripped := stripPunctuation(lowered)
	fields := strings.Fields(stripped)

	tokens := make([]string, 0, len(fields))
	for _, t := range fields {
		if len(t) <= 1 || stopwords[t] {
			continue
		}
		if p.UseStemming {
			t = Stem(t)
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// stripPunctuation removes ASCII punctuation runes, leaving everything else
// (including non-ASCII letters) intact.
func stripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsPunct(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Stem applies the single suffix-stripping rule mandated by the
// specification, in order: "…ing" strips 3, else "…ed" strips 2, else "…s"
// (but not "…ss") strips 1. At most one rule fires per call. A second call
// leaves the word unchanged unless the stripped form itself ends in one of
// the suffixes (e.g. "speeds" -> "speed" -> "spe").
func Stem(word string) string {
	switch {
	case strings.HasSuffix(word, "ing"):
		return word[:clamp(len(word)-3)]
	case strings.HasSuffix(word, "ed"):
		return word[:clamp(len(word)-2)]
	case strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss"):
		return word[:clamp(len(word)-1)]
	default:
		return word
	}
}

// clamp mirrors Python's tolerant negative-index slicing: word[:-n] on a
// string shorter than n yields "" rather than panicking.
func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
