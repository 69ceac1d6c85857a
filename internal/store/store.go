// Package store provides the durable, concurrency-safe persistence layer
// for pages, the link graph, keyword postings and PageRank scores.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// PageRef is a lightweight (id, url) pair, as returned by ListPages.
type PageRef struct {
	ID  int64
	URL string
}

// Posting is a (doc-id, term-frequency) pair joined against its Page's
// metadata, as returned by PostingList.
type Posting struct {
	DocID       int64
	TF          int
	URL         string
	Title       string
	PageRank    float64
	CleanedText string
}

// LinkEdge is a (source, target) page-id pair, as returned by IterLinks.
type LinkEdge struct {
	SourceID int64
	TargetID int64
}

const schema = `
CREATE TABLE IF NOT EXISTS pages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT UNIQUE NOT NULL,
	title TEXT,
	content TEXT,
	cleaned_text TEXT,
	pagerank REAL NOT NULL DEFAULT 0.0,
	crawled_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS links (
	source_id INTEGER NOT NULL REFERENCES pages(id),
	target_id INTEGER NOT NULL REFERENCES pages(id),
	PRIMARY KEY (source_id, target_id)
);
CREATE TABLE IF NOT EXISTS keywords (
	word TEXT NOT NULL,
	doc_id INTEGER NOT NULL REFERENCES pages(id),
	term_frequency INTEGER NOT NULL,
	PRIMARY KEY (word, doc_id)
);
CREATE INDEX IF NOT EXISTS idx_keywords_word ON keywords(word);
CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
`

// Store is the durable, thread-safe store described by the data model.
// Reads may proceed concurrently; writes are serialized by writeMu, the
// simplest correct way to satisfy "concurrent readers and writers must be
// safe" over a single SQLite file.
type Store struct {
	db      *sql.DB
	writeMu sync.Mutex
}

// Open creates or opens the SQLite database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertPage inserts a new page or updates the existing row keyed by url,
// always returning its id. When title, content and cleanedText are all
// nil the call is treated as a placeholder insert: an existing row (of
// any kind) is left untouched. Otherwise all three fields overwrite the
// existing row and crawled_at is bumped to now.
func (s *Store) UpsertPage(ctx context.Context, url string, title, content, cleanedText *string) (int64, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: upsert page %s: %w", url, err)
	}
	defer tx.Rollback()

	placeholder := title == nil && content == nil && cleanedText == nil
	var id int64
	if placeholder {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO pages (url) VALUES (?) ON CONFLICT(url) DO NOTHING`, url)
		if err != nil {
			return 0, fmt.Errorf("store: upsert placeholder %s: %w", url, err)
		}
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO pages (url, title, content, cleaned_text)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(url) DO UPDATE SET
				title=excluded.title,
				content=excluded.content,
				cleaned_text=excluded.cleaned_text,
				crawled_at=CURRENT_TIMESTAMP
		`, url, title, content, cleanedText)
		if err != nil {
			return 0, fmt.Errorf("store: upsert page %s: %w", url, err)
		}
	}

	if err := tx.QueryRowContext(ctx, `SELECT id FROM pages WHERE url = ?`, url).Scan(&id); err != nil {
		return 0, fmt.Errorf("store: upsert page %s: read back id: %w", url, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: upsert page %s: commit: %w", url, err)
	}
	return id, nil
}

// GetPageID returns the id for url if a page with that URL exists.
func (s *Store) GetPageID(ctx context.Context, url string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM pages WHERE url = ?`, url).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("store: get page id %s: %w", url, err)
	}
	return id, true, nil
}

// AddLink idempotently records the directed edge sourceID -> targetID. It
// is a no-op if either id is zero, the ids are equal (self-loop), or the
// edge already exists.
func (s *Store) AddLink(ctx context.Context, sourceID, targetID int64) error {
	if sourceID == 0 || targetID == 0 || sourceID == targetID {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO links (source_id, target_id) VALUES (?, ?)`, sourceID, targetID)
	if err != nil {
		return fmt.Errorf("store: add link %d->%d: %w", sourceID, targetID, err)
	}
	return nil
}

// ListPages returns every page's (id, url).
func (s *Store) ListPages(ctx context.Context) ([]PageRef, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, url FROM pages`)
	if err != nil {
		return nil, fmt.Errorf("store: list pages: %w", err)
	}
	defer rows.Close()

	var pages []PageRef
	for rows.Next() {
		var p PageRef
		if err := rows.Scan(&p.ID, &p.URL); err != nil {
			return nil, fmt.Errorf("store: list pages: scan: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// GetCleanedText returns the cleaned text for page id, if present and
// non-empty.
func (s *Store) GetCleanedText(ctx context.Context, id int64) (string, bool, error) {
	var text sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT cleaned_text FROM pages WHERE id = ?`, id).Scan(&text)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: get cleaned text %d: %w", id, err)
	}
	if !text.Valid || text.String == "" {
		return "", false, nil
	}
	return text.String, true, nil
}

// UpdatePageRank sets the pagerank score of page id.
func (s *Store) UpdatePageRank(ctx context.Context, id int64, score float64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.db.ExecContext(ctx, `UPDATE pages SET pagerank = ? WHERE id = ?`, score, id)
	if err != nil {
		return fmt.Errorf("store: update pagerank %d: %w", id, err)
	}
	return nil
}

// SavePostings replaces docID's postings with counts: each (word, docID)
// pair is written with the given term frequency, and any earlier posting
// of docID for a word absent from counts is removed. The whole map is
// applied atomically within one transaction.
func (s *Store) SavePostings(ctx context.Context, docID int64, counts map[string]int) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: save postings for %d: %w", docID, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM keywords WHERE doc_id = ?`, docID); err != nil {
		return fmt.Errorf("store: save postings for %d: clear: %w", docID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO keywords (word, doc_id, term_frequency) VALUES (?, ?, ?)
		ON CONFLICT(word, doc_id) DO UPDATE SET term_frequency = excluded.term_frequency
	`)
	if err != nil {
		return fmt.Errorf("store: save postings for %d: prepare: %w", docID, err)
	}
	defer stmt.Close()

	for word, tf := range counts {
		if _, err := stmt.ExecContext(ctx, word, docID, tf); err != nil {
			return fmt.Errorf("store: save postings for %d: word %q: %w", docID, word, err)
		}
	}
	return tx.Commit()
}

// DocumentCount returns the total number of pages.
func (s *Store) DocumentCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: document count: %w", err)
	}
	return n, nil
}

// DocFrequency returns the count of distinct doc-ids posting word.
func (s *Store) DocFrequency(ctx context.Context, word string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT doc_id) FROM keywords WHERE word = ?`, word).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: doc frequency %q: %w", word, err)
	}
	return n, nil
}

// PostingList returns every posting for word joined with its page's
// metadata, in unspecified order.
func (s *Store) PostingList(ctx context.Context, word string) ([]Posting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT k.doc_id, k.term_frequency, p.url, COALESCE(p.title, ''), p.pagerank, COALESCE(p.cleaned_text, '')
		FROM keywords k JOIN pages p ON k.doc_id = p.id
		WHERE k.word = ?
	`, word)
	if err != nil {
		return nil, fmt.Errorf("store: posting list %q: %w", word, err)
	}
	defer rows.Close()

	var postings []Posting
	for rows.Next() {
		var p Posting
		if err := rows.Scan(&p.DocID, &p.TF, &p.URL, &p.Title, &p.PageRank, &p.CleanedText); err != nil {
			return nil, fmt.Errorf("store: posting list %q: scan: %w", word, err)
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

// IterLinks returns every (source, target) edge.
func (s *Store) IterLinks(ctx context.Context) ([]LinkEdge, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source_id, target_id FROM links`)
	if err != nil {
		return nil, fmt.Errorf("store: iter links: %w", err)
	}
	defer rows.Close()

	var edges []LinkEdge
	for rows.Next() {
		var e LinkEdge
		if err := rows.Scan(&e.SourceID, &e.TargetID); err != nil {
			return nil, fmt.Errorf("store: iter links: scan: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
