// Package cache keeps raw search responses in Redis keyed by query and
// stay dates, so repeated runs within the TTL do not spend API quota.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis at addr. A failed ping returns an error so the
// caller can run uncached rather than silently losing responses.
func New(ctx context.Context, addr string, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Cache{client: client, ttl: ttl}, nil
}

func key(query string, checkIn, checkOut time.Time, adults int) string {
	return fmt.Sprintf("serp:%s:%s:%s:%d",
		query, checkIn.Format("2006-01-02"), checkOut.Format("2006-01-02"), adults)
}

// Get returns the cached raw response for the query, or nil on a miss.
func (c *Cache) Get(ctx context.Context, query string, checkIn, checkOut time.Time, adults int) ([]byte, error) {
	data, err := c.client.Get(ctx, key(query, checkIn, checkOut, adults)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Cache) Set(ctx context.Context, query string, checkIn, checkOut time.Time, adults int, raw []byte) error {
	return c.client.Set(ctx, key(query, checkIn, checkOut, adults), raw, c.ttl).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
