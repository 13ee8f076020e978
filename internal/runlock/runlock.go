// Package runlock keeps two jobalert processes from running the pipeline at
// the same time.
package runlock

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("another run is in progress")

// Lock is a held advisory file lock.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes the lock at path without blocking.
func Acquire(path string) (*Lock, error) {
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}
	return &Lock{fl: fl}, nil
}

// Release unlocks. The lock file itself is left in place.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}

// Guard wraps fn so each call holds the lock at path for its duration.
// An empty path disables locking.
func Guard(path string, fn func(ctx context.Context) error) func(ctx context.Context) error {
	if path == "" {
		return fn
	}
	return func(ctx context.Context) error {
		lock, err := Acquire(path)
		if err != nil {
			return err
		}
		defer lock.Release()
		return fn(ctx)
	}
}
