package cache

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // Error matching
	"fmt"           // Error wrapping
	"time"          // Time durations

	"finance_tracker/internal/domain"  // Importing domain models
	"finance_tracker/internal/logging" // Log field names

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// RedisListCache caches each user's transaction list as JSON in Redis
type RedisListCache struct {
	rdb redis.Cmdable // Redis client
	ttl time.Duration // Entry lifetime
}

// NewRedisListCache creates a cache over rdb
func NewRedisListCache(rdb redis.Cmdable, ttl time.Duration) *RedisListCache {
	return &RedisListCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached list for uid. Redis or decoding errors count as a miss.
func (c *RedisListCache) Get(ctx context.Context, uid string) ([]domain.Transaction, bool) {
	txs, found, err := c.load(ctx, ListKey(uid)) // Try to get from cache
	if err != nil {
		c.warn(uid, err, "Redis cache read failed")
		return nil, false
	}
	return txs, found
}

// Set stores the list for uid
func (c *RedisListCache) Set(ctx context.Context, uid string, txs []domain.Transaction) {
	if err := c.store(ctx, ListKey(uid), txs); err != nil {
		c.warn(uid, err, "Redis cache write failed")
	}
}

// Invalidate drops the list for uid
func (c *RedisListCache) Invalidate(ctx context.Context, uid string) {
	if err := c.rdb.Del(ctx, ListKey(uid)).Err(); err != nil { // Delete key from Redis
		c.warn(uid, err, "Redis cache invalidation failed")
	}
}

func (c *RedisListCache) load(ctx context.Context, key string) ([]domain.Transaction, bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes() // Get value from Redis
	if errors.Is(err, redis.Nil) {
		return nil, false, nil // Key does not exist
	}
	if err != nil {
		return nil, false, err // Other Redis error
	}
	txs := []domain.Transaction{}
	if err := json.Unmarshal(raw, &txs); err != nil {
		return nil, false, fmt.Errorf("decode cached list: %w", err)
	}
	if txs == nil {
		txs = []domain.Transaction{} // A cached "null" still means an empty list
	}
	return txs, true, nil
}

func (c *RedisListCache) store(ctx context.Context, key string, txs []domain.Transaction) error {
	if txs == nil {
		txs = []domain.Transaction{}
	}
	b, err := json.Marshal(txs) // Marshal list to JSON
	if err != nil {
		return fmt.Errorf("encode list: %w", err)
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err() // Set value in Redis with TTL
}

func (c *RedisListCache) warn(uid string, err error, msg string) {
	logrus.WithFields(logrus.Fields{
		logging.FieldUserID: uid,         // User ID
		logging.FieldError:  err.Error(), // Error message
	}).Warn(msg) // Log cache failure
}
