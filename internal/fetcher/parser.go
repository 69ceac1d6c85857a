package fetcher

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noTitle is returned as the title of a document with no <title> element.
const noTitle = "No Title"

// ParsedPage is the result of parsing one fetched HTML document.
type ParsedPage struct {
	Title       string
	CleanedText string
	Links       []string
	RawContent  string
}

// Parse extracts a title, cleaned text, absolute outlink set and raw
// content from html, resolving relative links against baseURL.
func Parse(html []byte, baseURL string) (ParsedPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return ParsedPage{}, err
	}

	title := noTitle
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		title = t
	}

	doc.Find("script,style").Remove()
	cleaned := cleanText(doc.Text())

	links := extractLinks(doc, baseURL)

	raw, err := doc.Html()
	if err != nil {
		raw = string(html)
	}

	return ParsedPage{
		Title:       title,
		CleanedText: cleaned,
		Links:       links,
		RawContent:  raw,
	}, nil
}

// cleanText collapses whitespace the way the spec requires: each line is
// stripped, then split on a literal two-space separator, each resulting
// piece stripped, and non-empty pieces rejoined with newlines.
func cleanText(text string) string {
	var pieces []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for _, chunk := range strings.Split(line, "  ") {
			chunk = strings.TrimSpace(chunk)
			if chunk != "" {
				pieces = append(pieces, chunk)
			}
		}
	}
	return strings.Join(pieces, "\n")
}

// extractLinks collects the absolute, fragment-free, http(s) outlink set
// of doc, resolved against baseURL. Duplicates are coalesced.
func extractLinks(doc *goquery.Document, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		resolved, ok := resolve(base, href)
		if !ok {
			return
		}
		if seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	})
	return links
}

// resolve joins base and href, strips any fragment, and reports whether
// the resulting URL's scheme begins with "http".
func resolve(base *url.URL, href string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(u)
	abs.Fragment = ""
	if !strings.HasPrefix(abs.Scheme, "http") {
		return "", false
	}
	return abs.String(), true
}
