package mirror

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the default mirror backend. Values carry no TTL: the mirror
// outlives reconnects and is only removed when the attempt reaches its
// terminal state.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps an already-connected Redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, key, value, 0).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// Close is a no-op: the Redis client is owned by the caller.
func (s *RedisStore) Close() error {
	return nil
}
