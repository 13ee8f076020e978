// Package store persists the set of posting URLs that have already been
// processed. Every backend enforces insert-if-absent in the storage layer.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jobalert/jobalert/internal/model"
)

// Store is a seen-state backend.
type Store interface {
	model.SeenStore
	Count(ctx context.Context) (int, error)
	Close() error
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
	_ Store = (*RedisStore)(nil)
	_ Store = (*NopStore)(nil)
)

// StoreInitError means the backend could not be reached or its schema could
// not be created.
type StoreInitError struct {
	Backend string
	Err     error
}

func (e *StoreInitError) Error() string {
	return fmt.Sprintf("initializing %s store: %v", e.Backend, e.Err)
}

func (e *StoreInitError) Unwrap() error {
	return e.Err
}

func queryError(op string, err error) error {
	return &model.StoreError{Op: op, Err: err}
}

// Open picks a backend from the storage location:
// postgres:// and postgresql:// URLs use PostgreSQL, redis:// and rediss://
// use Redis, and anything else is a SQLite file path (an optional sqlite://
// prefix is stripped).
func Open(ctx context.Context, location string) (Store, error) {
	switch {
	case strings.HasPrefix(location, "postgres://"), strings.HasPrefix(location, "postgresql://"):
		return NewPostgresStore(ctx, location)
	case strings.HasPrefix(location, "redis://"), strings.HasPrefix(location, "rediss://"):
		return NewRedisStore(ctx, location)
	default:
		return NewSQLiteStore(ctx, strings.TrimPrefix(location, "sqlite://"))
	}
}

// Backend names the backend Open would choose for location.
func Backend(location string) string {
	switch {
	case strings.HasPrefix(location, "postgres://"), strings.HasPrefix(location, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(location, "redis://"), strings.HasPrefix(location, "rediss://"):
		return "redis"
	default:
		return "sqlite"
	}
}
