package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/telegram-copilot/briefing-api/pkg/logger"
)

// Store is a fail-open adapter over Redis. Backend failures are logged and
// treated as a miss on read or a no-op on write; a briefing request must never
// fail because the cache is unavailable.
type Store struct {
	redis      *redis.Client
	defaultTTL time.Duration
	logger     *logger.Logger
}

// NewStore creates a store backed by the given Redis client.
func NewStore(client *redis.Client, defaultTTL time.Duration, log *logger.Logger) *Store {
	return &Store{
		redis:      client,
		defaultTTL: defaultTTL,
		logger:     log,
	}
}

// NewClient creates a Redis client from a redis:// URL.
func NewClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// GetJSON reads a cached value into dest. Returns false on a miss or on any
// backend or decode error.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) bool {
	val, err := s.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		s.logger.Warn("cache value unmarshal failed", zap.String("key", key), zap.Error(err))
		return false
	}

	return true
}

// SetJSON stores a value with the given TTL (the store default when ttl is
// zero). Returns false on any backend or encode error.
func (s *Store) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) bool {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache value marshal failed", zap.String("key", key), zap.Error(err))
		return false
	}

	if ttl == 0 {
		ttl = s.defaultTTL
	}

	if err := s.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		return false
	}

	return true
}

// Invalidate removes all keys matching a wildcard pattern, e.g. "briefing:*".
// Returns the number of keys removed; 0 on any backend error.
func (s *Store) Invalidate(ctx context.Context, pattern string) int {
	keys, err := s.redis.Keys(ctx, pattern).Result()
	if err != nil {
		s.logger.Warn("cache invalidate scan failed", zap.String("pattern", pattern), zap.Error(err))
		return 0
	}
	if len(keys) == 0 {
		return 0
	}

	removed, err := s.redis.Del(ctx, keys...).Result()
	if err != nil {
		s.logger.Warn("cache invalidate delete failed", zap.String("pattern", pattern), zap.Error(err))
		return 0
	}

	return int(removed)
}

// Ping checks Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

// Close closes the underlying Redis client.
func (s *Store) Close() error {
	return s.redis.Close()
}
