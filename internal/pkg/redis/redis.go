package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps go-redis for the application.
type Client struct {
	rdb *redis.Client
}

// Connect creates a Redis client and verifies connectivity.
func Connect(url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// Wrap adopts an existing go-redis client.
func Wrap(rdb *redis.Client) *Client { return &Client{rdb: rdb} }

// Raw returns the underlying redis.Client for advanced usage.
func (c *Client) Raw() *redis.Client { return c.rdb }

// Publish sends a message to a Redis pub/sub channel.
func (c *Client) Publish(ctx context.Context, channel string, message interface{}) error {
	return c.rdb.Publish(ctx, channel, message).Err()
}

// Subscribe returns a pub/sub subscription for the given channels.
func (c *Client) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	return c.rdb.Subscribe(ctx, channels...)
}

// CountWindow increments key and sets its expiry on first hit, returning the
// number of hits in the current window.
func (c *Client) CountWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		c.rdb.PExpire(ctx, key, window+time.Second)
	}
	return count, nil
}

func (c *Client) Close() error { return c.rdb.Close() }

// Claim marks key as in flight unless it is already present. When it is,
// done reports whether the earlier holder settled successfully.
func (c *Client) Claim(ctx context.Context, key string, ttl time.Duration) (claimed, done bool, err error) {
	ok, err := c.rdb.SetNX(ctx, key, "0", ttl).Result()
	if err != nil || ok {
		return ok, false, err
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	return false, val == "1", err
}

// Settle keeps a successful claim until it expires and frees a failed one.
func (c *Client) Settle(ctx context.Context, key string, ok bool) error {
	if ok {
		return c.rdb.Set(ctx, key, "1", redis.KeepTTL).Err()
	}
	return c.rdb.Del(ctx, key).Err()
}
