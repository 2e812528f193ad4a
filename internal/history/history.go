// Package history records published posts in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS posts (
	id           TEXT PRIMARY KEY,
	post_id      TEXT NOT NULL,
	url          TEXT NOT NULL,
	title        TEXT NOT NULL,
	status       TEXT NOT NULL,
	tags         TEXT NOT NULL DEFAULT '',
	source       TEXT NOT NULL DEFAULT '',
	published_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS posts_published_at ON posts (published_at);
`

// Entry is one published post.
type Entry struct {
	ID          string
	PostID      string
	URL         string
	Title       string
	Status      string
	Tags        []string
	Source      string
	PublishedAt time.Time
}

// Store is the history database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path. ":memory:" is accepted.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: opening %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases alive and serializes
	// writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: creating schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add records e, filling in ID and PublishedAt when empty, and returns the
// stored entry.
func (s *Store) Add(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.PublishedAt.IsZero() {
		e.PublishedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (id, post_id, url, title, status, tags, source, published_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.PostID, e.URL, e.Title, e.Status, strings.Join(e.Tags, ","), e.Source, e.PublishedAt.UnixMilli())
	if err != nil {
		return Entry{}, fmt.Errorf("history: adding %q: %w", e.Title, err)
	}
	return e, nil
}

// List returns up to limit entries, newest first. A limit of zero or less
// returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, post_id, url, title, status, tags, source, published_at
		FROM posts ORDER BY published_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: listing: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e    Entry
			tags string
			ms   int64
		)
		if err := rows.Scan(&e.ID, &e.PostID, &e.URL, &e.Title, &e.Status, &tags, &e.Source, &ms); err != nil {
			return nil, fmt.Errorf("history: scanning: %w", err)
		}
		if tags != "" {
			e.Tags = strings.Split(tags, ",")
		}
		e.PublishedAt = time.UnixMilli(ms)
		out = append(out, e)
	}
	return out, rows.Err()
}
