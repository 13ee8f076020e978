package store

import "context"

// NopStore is a no-op store used in dry-run mode. It never marks URLs as seen,
// so every listing appears new on each run.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) IsSeen(context.Context, string) (bool, error)           { return false, nil }
func (s *NopStore) MarkSeen(context.Context, string, string, string) error { return nil }
func (s *NopStore) Count(context.Context) (int, error)                     { return 0, nil }
func (s *NopStore) Close() error                                           { return nil }
