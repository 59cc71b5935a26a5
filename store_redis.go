package pushbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces pushbridge records in a shared Redis instance.
const redisKeyPrefix = "pushbridge:"

// RedisStore persists token records in Redis.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to Redis and fails fast if the instance is
// unreachable.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{rdb: rdb}, nil
}

// Get reads the record under key, or (nil, nil) when absent.
func (s *RedisStore) Get(ctx context.Context, key string) (*StoredToken, error) {
	val, err := s.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token record: %w", err)
	}

	var rec StoredToken
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("parsing token record: %w", err)
	}
	return &rec, nil
}

// Set writes the record under key with no expiry. The record is the single
// source of truth for the device token, so it must not age out.
func (s *RedisStore) Set(ctx context.Context, key string, rec StoredToken) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("serializing token record: %w", err)
	}
	return s.rdb.Set(ctx, redisKeyPrefix+key, data, 0).Err()
}

// Delete removes the record under key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, redisKeyPrefix+key).Err()
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
