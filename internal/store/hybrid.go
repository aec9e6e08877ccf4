package store

import (
	"context"
	"errors"
	"time"

	"newsdesk/internal/model"

	"github.com/redis/go-redis/v9"
)

// HybridStore combines an in-process cache (speed) with Redis (shared between instances)
type HybridStore struct {
	near *MemoryStore
	far  *RedisStore
}

// NewHybridStore connects to Redis and sizes both tiers with maxEntries.
func NewHybridStore(redisAddr string, maxEntries int) (*HybridStore, error) {
	far, err := NewRedisStore(redisAddr, maxEntries)
	if err != nil {
		return nil, err
	}
	near, err := NewMemoryStore(maxEntries)
	if err != nil {
		far.Close()
		return nil, err
	}
	return &HybridStore{near: near, far: far}, nil
}

func newHybridStore(rdb *redis.Client, maxEntries int) (*HybridStore, error) {
	near, err := NewMemoryStore(maxEntries)
	if err != nil {
		return nil, err
	}
	return &HybridStore{near: near, far: newRedisStore(rdb, maxEntries)}, nil
}

// Close cleans up both tiers
func (s *HybridStore) Close() error {
	return errors.Join(s.near.Close(), s.far.Close())
}

// Get checks the near tier first. A far hit is copied into the near tier
// for whatever lifetime it has left in Redis.
func (s *HybridStore) Get(ctx context.Context, key string) ([]model.Article, bool, error) {
	if articles, ok, _ := s.near.Get(ctx, key); ok {
		return articles, true, nil
	}

	articles, remaining, ok, err := s.far.lookup(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	if remaining > 0 {
		s.near.Put(ctx, key, articles, remaining)
	}
	return articles, true, nil
}

// Put always fills the near tier, so this instance keeps caching while
// Redis is unreachable. The Redis error is still reported.
func (s *HybridStore) Put(ctx context.Context, key string, articles []model.Article, ttl time.Duration) error {
	nearErr := s.near.Put(ctx, key, articles, ttl)
	return errors.Join(nearErr, s.far.Put(ctx, key, articles, ttl))
}
