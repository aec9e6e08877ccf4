package store

import (
	"context"
	"fmt"
	"slices"
	"time"

	"newsdesk/internal/model"

	"github.com/dgraph-io/ristretto/v2"
)

const DefaultMaxEntries = 100

// MemoryStore is an in-process cache bounded by entry count.
// Every entry costs 1, so MaxCost is the entry limit.
type MemoryStore struct {
	cache *ristretto.Cache[string, []model.Article]
}

func NewMemoryStore(maxEntries int) (*MemoryStore, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, []model.Article]{
		NumCounters:        int64(maxEntries) * 10,
		MaxCost:            int64(maxEntries),
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	return &MemoryStore{cache: cache}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]model.Article, bool, error) {
	articles, ok := s.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(articles), true, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, articles []model.Article, ttl time.Duration) error {
	s.cache.SetWithTTL(key, slices.Clone(articles), 1, ttl)
	// Sets are buffered; wait so the entry is visible to the next Get.
	s.cache.Wait()
	return nil
}

func (s *MemoryStore) Close() error {
	s.cache.Close()
	return nil
}
