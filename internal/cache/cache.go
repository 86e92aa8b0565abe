// Package cache wraps Redis with JSON-serialized response caching.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Service is a thin typed layer over a Redis client. Values are
// stored as JSON with a per-key TTL.
type Service struct {
	client *redis.Client
}

// Config holds Redis connection settings.
type Config struct {
	Address  string
	Password string
	DB       int
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*Service, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &Service{client: client}, nil
}

// NewFromClient wraps an existing client. Used by tests.
func NewFromClient(client *redis.Client) *Service {
	return &Service{client: client}
}

// GetWithTTL loads a cached value into dest and reports the key's
// remaining TTL. found is false on a miss; dest is untouched then.
func (s *Service) GetWithTTL(ctx context.Context, key string, dest interface{}) (found bool, ttl time.Duration, err error) {
	pipe := s.client.Pipeline()
	getCmd := pipe.Get(ctx, key)
	ttlCmd := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("cache get %s: %w", key, err)
	}

	raw, err := getCmd.Bytes()
	if err != nil {
		return false, 0, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, 0, fmt.Errorf("cache decode %s: %w", key, err)
	}

	ttl = ttlCmd.Val()
	if ttl < 0 {
		ttl = 0
	}
	return true, ttl, nil
}

// SetEX stores a JSON-serialized value under key for ttl.
func (s *Service) SetEX(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete removes keys matching the given pattern. Returns the number
// of keys removed.
func (s *Service) Delete(ctx context.Context, pattern string) (int64, error) {
	var removed int64
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		n, err := s.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return removed, fmt.Errorf("cache delete %s: %w", pattern, err)
		}
		removed += n
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("cache delete %s: %w", pattern, err)
	}
	return removed, nil
}

// Ping checks the Redis connection health.
func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *Service) Close() error {
	return s.client.Close()
}
