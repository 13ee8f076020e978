package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS seen_posts (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	url           TEXT NOT NULL UNIQUE,
	title         TEXT NOT NULL DEFAULT '',
	source        TEXT NOT NULL DEFAULT '',
	first_seen_at TEXT NOT NULL
)`

// SQLiteStore records seen posting URLs in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// seen_posts table exists.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	// busy_timeout lets a second process wait for the writer instead of failing.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &StoreInitError{Backend: "sqlite", Err: fmt.Errorf("pinging sqlite db: %w", err)}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, &StoreInitError{Backend: "sqlite", Err: fmt.Errorf("creating seen_posts table: %w", err)}
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// IsSeen returns true if the URL has already been recorded.
func (s *SQLiteStore) IsSeen(ctx context.Context, url string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM seen_posts WHERE url = ?", url).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, queryError("checking seen status for "+url, err)
	}
	return true, nil
}

// MarkSeen records a URL as seen. If it already exists the call is a no-op and
// the original record is kept.
func (s *SQLiteStore) MarkSeen(ctx context.Context, url, title, source string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO seen_posts (url, title, source, first_seen_at) VALUES (?, ?, ?, ?)",
		url, title, source, s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return queryError("marking "+url+" as seen", err)
	}
	return nil
}

// Count returns the number of recorded URLs.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM seen_posts").Scan(&count); err != nil {
		return 0, queryError("counting seen posts", err)
	}
	return count, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
