package store

import (
	"context"
	"errors"
	"time"

	"newsdesk/internal/model"
)

var (
	ErrUnknownBackend = errors.New("unknown cache backend")
)

// Store caches article lists by selection key.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the cached list for key. ok is false when the key is
	// absent or its entry has expired.
	Get(ctx context.Context, key string) (articles []model.Article, ok bool, err error)
	// Put stores articles under key for ttl. Once the store holds its
	// maximum number of entries, other entries may be evicted.
	Put(ctx context.Context, key string, articles []model.Article, ttl time.Duration) error
	Close() error
}

const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendHybrid = "hybrid"
)

// Options selects and sizes a backend.
type Options struct {
	Backend    string
	MaxEntries int
	RedisAddr  string
}

// Open builds the store named by opts.Backend.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryStore(opts.MaxEntries)
	case BackendBadger:
		return NewBadgerStore(opts.MaxEntries)
	case BackendRedis:
		return NewRedisStore(opts.RedisAddr, opts.MaxEntries)
	case BackendHybrid:
		return NewHybridStore(opts.RedisAddr, opts.MaxEntries)
	default:
		return nil, ErrUnknownBackend
	}
}
