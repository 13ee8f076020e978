package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jobalert/jobalert/internal/model"
)

// redisSeenKey is the hash holding one field per seen URL.
const redisSeenKey = "seen_posts"

// RedisStore records seen posting URLs as fields of a Redis hash. HSETNX makes
// the first write for a URL win atomically.
type RedisStore struct {
	rdb *redis.Client
	key string
	now func() time.Time
}

// NewRedisStore parses redisURL and verifies connectivity.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, &StoreInitError{Backend: "redis", Err: fmt.Errorf("redis.ParseURL: %w", err)}
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, &StoreInitError{Backend: "redis", Err: fmt.Errorf("redis ping failed: %w", err)}
	}

	return &RedisStore{rdb: rdb, key: redisSeenKey, now: time.Now}, nil
}

// IsSeen returns true if the URL has already been recorded.
func (s *RedisStore) IsSeen(ctx context.Context, url string) (bool, error) {
	ok, err := s.rdb.HExists(ctx, s.key, url).Result()
	if err != nil {
		return false, queryError("checking seen status for "+url, err)
	}
	return ok, nil
}

// MarkSeen stores the record unless the URL is already present.
func (s *RedisStore) MarkSeen(ctx context.Context, url, title, source string) error {
	rec, err := json.Marshal(model.SeenRecord{
		URL:         url,
		Title:       title,
		Source:      source,
		FirstSeenAt: s.now().UTC().Truncate(time.Second),
	})
	if err != nil {
		return fmt.Errorf("encoding seen record: %w", err)
	}
	if err := s.rdb.HSetNX(ctx, s.key, url, rec).Err(); err != nil {
		return queryError("marking "+url+" as seen", err)
	}
	return nil
}

// Count returns the number of recorded URLs.
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.rdb.HLen(ctx, s.key).Result()
	if err != nil {
		return 0, queryError("counting seen posts", err)
	}
	return int(n), nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
