// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge persists papers and their concept graph in SQLite.
// Implements: prd003-knowledge;
//
//	docs/ARCHITECTURE.md § Knowledge Store.
package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-search/pkg/types"
)

// ErrNotFound reports a point lookup that matched no record.
var ErrNotFound = errors.New("record not found")

// Store manages the knowledge graph SQLite database. A Store holds one
// connection for its whole lifetime: Open establishes it and provisions
// the schema, Close releases it and is safe to call more than once.
type Store struct {
	db         *sql.DB
	maxResults int
	closeOnce  sync.Once
}

// Open creates or opens the database at cfg.Path and provisions the schema.
func Open(cfg types.KnowledgeConfig) (*Store, error) {
	if cfg.Path == "" {
		cfg.Path = "./knowledge/paper_search.db"
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating knowledge directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection. Repeated calls are no-ops.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() { err = s.db.Close() })
	return err
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS paper (
			id TEXT PRIMARY KEY,
			paper_id TEXT NOT NULL UNIQUE,
			title TEXT,
			authors TEXT,
			abstract TEXT,
			doi TEXT,
			url TEXT,
			pdf_url TEXT,
			source TEXT,
			categories TEXT,
			keywords TEXT,
			published_date TEXT,
			stored_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS concept (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT,
			category TEXT,
			frequency INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS relates_to (
			id TEXT PRIMARY KEY,
			paper_id TEXT NOT NULL REFERENCES paper(id),
			concept_id TEXT NOT NULL REFERENCES concept(id),
			relationship_type TEXT NOT NULL,
			strength REAL NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_relates_to_paper ON relates_to(paper_id)`,
		`CREATE INDEX IF NOT EXISTS idx_relates_to_concept ON relates_to(concept_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// StorePaper upserts a stored_at-timestamped copy of the paper, keyed by
// its external paper_id, and returns the record id.
func (s *Store) StorePaper(ctx context.Context, paper types.Paper) (string, error) {
	if paper.PaperID == "" {
		return "", fmt.Errorf("paper has no paper_id")
	}

	authorsJSON, _ := json.Marshal(paper.Authors)
	categoriesJSON, _ := json.Marshal(paper.Categories)
	keywordsJSON, _ := json.Marshal(paper.Keywords)
	dateStr := ""
	if !paper.PublishedDate.IsZero() {
		dateStr = paper.PublishedDate.UTC().Format(time.RFC3339)
	}
	storedAt := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO paper (id, paper_id, title, authors, abstract, doi, url, pdf_url, source, categories, keywords, published_date, stored_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(paper_id) DO UPDATE SET
			title=excluded.title, authors=excluded.authors, abstract=excluded.abstract,
			doi=excluded.doi, url=excluded.url, pdf_url=excluded.pdf_url,
			source=excluded.source, categories=excluded.categories,
			keywords=excluded.keywords, published_date=excluded.published_date,
			stored_at=excluded.stored_at`,
		uuid.NewString(), paper.PaperID, paper.Title, string(authorsJSON),
		paper.Abstract, paper.DOI, paper.URL, paper.PDFURL, paper.Source,
		string(categoriesJSON), string(keywordsJSON), dateStr, storedAt,
	)
	if err != nil {
		return "", fmt.Errorf("storing paper %s: %w", paper.PaperID, err)
	}

	var id string
	if err := s.db.QueryRowContext(ctx,
		`SELECT id FROM paper WHERE paper_id = ?`, paper.PaperID,
	).Scan(&id); err != nil {
		return "", fmt.Errorf("reading back paper %s: %w", paper.PaperID, err)
	}
	return id, nil
}

// GetPaper looks up one paper by its external paper_id.
func (s *Store) GetPaper(ctx context.Context, paperID string) (types.Paper, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT paper_id, title, authors, abstract, doi, url, pdf_url, source, categories, keywords, published_date
		 FROM paper WHERE paper_id = ?`, paperID)

	paper, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Paper{}, fmt.Errorf("paper %s: %w", paperID, ErrNotFound)
	}
	if err != nil {
		return types.Paper{}, fmt.Errorf("reading paper %s: %w", paperID, err)
	}
	return paper, nil
}

// SearchPapers substring-matches title and abstract, newest stored first.
// limit <= 0 falls back to the configured maximum.
func (s *Store) SearchPapers(ctx context.Context, query string, limit int) ([]types.Paper, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	pattern := "%" + query + "%"

	rows, err := s.db.QueryContext(ctx,
		`SELECT paper_id, title, authors, abstract, doi, url, pdf_url, source, categories, keywords, published_date
		 FROM paper
		 WHERE title LIKE ? OR abstract LIKE ?
		 ORDER BY stored_at DESC
		 LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("searching papers: %w", err)
	}
	defer rows.Close()

	papers := []types.Paper{}
	for rows.Next() {
		paper, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning paper row: %w", err)
		}
		papers = append(papers, paper)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating paper rows: %w", err)
	}
	return papers, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaper(row rowScanner) (types.Paper, error) {
	var paper types.Paper
	var authorsJSON, categoriesJSON, keywordsJSON, dateStr string
	if err := row.Scan(
		&paper.PaperID, &paper.Title, &authorsJSON, &paper.Abstract,
		&paper.DOI, &paper.URL, &paper.PDFURL, &paper.Source,
		&categoriesJSON, &keywordsJSON, &dateStr,
	); err != nil {
		return types.Paper{}, err
	}
	if authorsJSON != "" {
		if err := json.Unmarshal([]byte(authorsJSON), &paper.Authors); err != nil {
			return types.Paper{}, fmt.Errorf("parsing authors: %w", err)
		}
	}
	if categoriesJSON != "" {
		if err := json.Unmarshal([]byte(categoriesJSON), &paper.Categories); err != nil {
			return types.Paper{}, fmt.Errorf("parsing categories: %w", err)
		}
	}
	if keywordsJSON != "" {
		if err := json.Unmarshal([]byte(keywordsJSON), &paper.Keywords); err != nil {
			return types.Paper{}, fmt.Errorf("parsing keywords: %w", err)
		}
	}
	if dateStr != "" {
		if t, err := time.Parse(time.RFC3339, dateStr); err == nil {
			paper.PublishedDate = t
		}
	}
	return paper, nil
}

// Stats returns row counts for the graph tables.
func (s *Store) Stats(ctx context.Context) (types.KnowledgeStats, error) {
	var stats types.KnowledgeStats
	counts := []struct {
		table string
		dest  *int
	}{
		{"paper", &stats.Papers},
		{"concept", &stats.Concepts},
		{"relates_to", &stats.Relationships},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx,
			"SELECT count(*) FROM "+c.table,
		).Scan(c.dest); err != nil {
			return types.KnowledgeStats{}, fmt.Errorf("counting %s: %w", c.table, err)
		}
	}
	return stats, nil
}
