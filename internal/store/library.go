package store

import (
	"database/sql"
	"encoding/json"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/soyeahso/arena/internal/scholar"
)

// Library keeps every paper the assistant has surfaced, with full-text
// search over titles and abstracts via SQLite FTS5.
type Library struct {
	db *DB
}

// NewLibrary creates a paper library using the given database.
func NewLibrary(db *DB) *Library {
	return &Library{db: db}
}

// Save inserts or updates a paper. Papers are keyed by their arXiv ID,
// DOI, or Semantic Scholar ID, whichever is available.
func (l *Library) Save(paper scholar.Paper) error {
	id := paperKey(paper)

	authors, err := json.Marshal(paper.Authors)
	if err != nil {
		authors = []byte("[]")
	}

	_, err = l.db.sql.Exec(
		`INSERT INTO papers (id, title, authors, abstract, year, venue, doi, arxiv_id, url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   authors = excluded.authors,
		   abstract = excluded.abstract,
		   year = excluded.year,
		   venue = excluded.venue,
		   doi = excluded.doi,
		   arxiv_id = excluded.arxiv_id,
		   url = excluded.url`,
		id, paper.Title, string(authors), paper.Abstract, paper.Year,
		paper.Venue, paper.DOI, paper.ArxivID, paper.URL,
	)
	return err
}

// SaveAll saves papers best effort, returning the first error.
func (l *Library) SaveAll(papers []scholar.Paper) error {
	var firstErr error
	for _, p := range papers {
		if err := l.Save(p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Search finds saved papers matching the query, ranked by relevance.
// A limit of 0 defaults to 20.
func (l *Library) Search(query string, limit int) ([]scholar.Paper, error) {
	if limit <= 0 {
		limit = 20
	}

	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}

	rows, err := l.db.sql.Query(
		`SELECT p.id, p.title, p.authors, p.abstract, p.year, p.venue, p.doi, p.arxiv_id, p.url
		 FROM papers_fts
		 JOIN papers p ON p.rowid = papers_fts.rowid
		 WHERE papers_fts MATCH ?
		 ORDER BY rank
		 LIMIT ?`,
		match, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPapers(rows)
}

// Recent returns the most recently saved papers.
func (l *Library) Recent(limit int) ([]scholar.Paper, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := l.db.sql.Query(
		`SELECT id, title, authors, abstract, year, venue, doi, arxiv_id, url
		 FROM papers ORDER BY saved_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPapers(rows)
}

// Delete removes a saved paper.
func (l *Library) Delete(id string) error {
	_, err := l.db.sql.Exec(`DELETE FROM papers WHERE id = ?`, id)
	return err
}

// Count returns the number of saved papers.
func (l *Library) Count() (int, error) {
	var n int
	err := l.db.sql.QueryRow(`SELECT COUNT(*) FROM papers`).Scan(&n)
	return n, err
}

func paperKey(p scholar.Paper) string {
	switch {
	case p.ArxivID != "":
		return "arxiv:" + p.ArxivID
	case p.DOI != "":
		return "doi:" + p.DOI
	case p.ID != "":
		return "s2:" + p.ID
	default:
		return uuid.New().String()
	}
}

// ftsQuery splits the input into plain alphanumeric terms and quotes
// them, so user input cannot break FTS5 query syntax.
func ftsQuery(query string) string {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	terms := make([]string, 0, len(fields))
	for _, t := range fields {
		terms = append(terms, `"`+t+`"`)
	}
	return strings.Join(terms, " ")
}

func scanPapers(rows *sql.Rows) ([]scholar.Paper, error) {
	var papers []scholar.Paper
	for rows.Next() {
		var p scholar.Paper
		var id, authorsJSON string

		if err := rows.Scan(&id, &p.Title, &authorsJSON, &p.Abstract,
			&p.Year, &p.Venue, &p.DOI, &p.ArxivID, &p.URL); err != nil {
			continue
		}
		_ = json.Unmarshal([]byte(authorsJSON), &p.Authors)
		if p.ID == "" {
			p.ID = id
		}

		papers = append(papers, p)
	}
	return papers, rows.Err()
}
