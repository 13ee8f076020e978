package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS seen_posts (
	url           TEXT PRIMARY KEY,
	title         TEXT NOT NULL DEFAULT '',
	source        TEXT NOT NULL DEFAULT '',
	first_seen_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore records seen posting URLs in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL and ensures the seen_posts table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, &StoreInitError{Backend: "postgres", Err: fmt.Errorf("pgxpool.New: %w", err)}
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &StoreInitError{Backend: "postgres", Err: fmt.Errorf("postgres ping failed: %w", err)}
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, &StoreInitError{Backend: "postgres", Err: fmt.Errorf("creating seen_posts table: %w", err)}
	}

	return &PostgresStore{pool: pool}, nil
}

// IsSeen returns true if the URL has already been recorded.
func (s *PostgresStore) IsSeen(ctx context.Context, url string) (bool, error) {
	var exists int
	err := s.pool.QueryRow(ctx, "SELECT 1 FROM seen_posts WHERE url = $1", url).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, queryError("checking seen status for "+url, err)
	}
	return true, nil
}

// MarkSeen inserts the URL unless it is already present.
func (s *PostgresStore) MarkSeen(ctx context.Context, url, title, source string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO seen_posts (url, title, source) VALUES ($1, $2, $3)
		 ON CONFLICT (url) DO NOTHING`,
		url, title, source,
	)
	if err != nil {
		return queryError("marking "+url+" as seen", err)
	}
	return nil
}

// Count returns the number of recorded URLs.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM seen_posts").Scan(&count); err != nil {
		return 0, queryError("counting seen posts", err)
	}
	return count, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
