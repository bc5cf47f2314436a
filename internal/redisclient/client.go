package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetJSON loads a cached value into dest. Returns false on a cache miss.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed for %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache decode failed for %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores a value in the cache with a TTL
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode failed for %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, data, ttl).Err()
}

// Invalidate removes cache entries
func (c *Client) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// BindOrderID maps a client idempotency key to an order id so a retried
// submission reuses the same order id against the gateway. Returns false when
// the key is already bound; the caller must then use the bound id.
func (c *Client) BindOrderID(ctx context.Context, idempotencyKey, orderID string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("idempotency:%s", idempotencyKey), orderID, ttl).Result()
}

// OrderIDForKey looks up the order id bound to an idempotency key. Returns
// empty string when the key is unknown.
func (c *Client) OrderIDForKey(ctx context.Context, idempotencyKey string) (string, error) {
	orderID, err := c.rdb.Get(ctx, fmt.Sprintf("idempotency:%s", idempotencyKey)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return orderID, nil
}
