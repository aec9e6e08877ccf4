package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"newsdesk/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "headlines:"
	redisIndexKey  = "headlines:index"
)

// RedisStore shares the cache between server instances. Entries expire via
// PX; a sorted set scored by write time tracks keys so the entry bound can
// be enforced oldest-first.
type RedisStore struct {
	rdb        *redis.Client
	maxEntries int
}

func NewRedisStore(redisAddr string, maxEntries int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return newRedisStore(rdb, maxEntries), nil
}

func newRedisStore(rdb *redis.Client, maxEntries int) *RedisStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &RedisStore{rdb: rdb, maxEntries: maxEntries}
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]model.Article, bool, error) {
	val, err := s.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}

	articles, err := decode(val)
	if err != nil {
		return nil, false, err
	}
	return articles, true, nil
}

// lookup is Get plus the entry's remaining lifetime.
func (s *RedisStore) lookup(ctx context.Context, key string) ([]model.Article, time.Duration, bool, error) {
	pipe := s.rdb.Pipeline()
	getCmd := pipe.Get(ctx, redisKeyPrefix+key)
	ttlCmd := pipe.PTTL(ctx, redisKeyPrefix+key)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, 0, false, err
	}

	val, err := getCmd.Bytes()
	if err == redis.Nil {
		return nil, 0, false, nil
	} else if err != nil {
		return nil, 0, false, err
	}

	articles, err := decode(val)
	if err != nil {
		return nil, 0, false, err
	}
	return articles, ttlCmd.Val(), true, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, articles []model.Article, ttl time.Duration) error {
	data, err := encode(articles)
	if err != nil {
		return err
	}

	now := time.Now()
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, redisKeyPrefix+key, data, ttl)
	pipe.ZAdd(ctx, redisIndexKey, redis.Z{Score: float64(now.UnixMicro()), Member: redisKeyPrefix + key})
	// Index members written more than one ttl ago have expired already.
	pipe.ZRemRangeByScore(ctx, redisIndexKey, "-inf", strconv.FormatInt(now.Add(-ttl).UnixMicro(), 10))
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	return s.evict(ctx)
}

func (s *RedisStore) evict(ctx context.Context) error {
	n, err := s.rdb.ZCard(ctx, redisIndexKey).Result()
	if err != nil {
		return err
	}
	excess := n - int64(s.maxEntries)
	if excess <= 0 {
		return nil
	}

	victims, err := s.rdb.ZRange(ctx, redisIndexKey, 0, excess-1).Result()
	if err != nil {
		return err
	}
	if len(victims) == 0 {
		return nil
	}

	members := make([]interface{}, len(victims))
	for i, v := range victims {
		members[i] = v
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, victims...)
	pipe.ZRem(ctx, redisIndexKey, members...)
	_, err = pipe.Exec(ctx)
	return err
}
