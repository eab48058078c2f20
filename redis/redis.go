// Package redis provides a client wrapper for Redis operations, with
// retry support tuned for datastore-class calls.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/deepquery/dqf/retry"
	"github.com/deepquery/dqf/zlog"
)

// NoMatches is returned when Redis did not find any matching key.
const NoMatches = redis.Nil

// IsRetryable classifies Redis failures for the retry core. A key miss
// is a definitive answer, not a transient fault; everything else follows
// the broad default.
func IsRetryable(err error) bool {
	if errors.Is(err, redis.Nil) {
		return false
	}
	return retry.DefaultRetryable(err)
}

// Client wraps the Redis client together with the policy its *WithRetry
// methods run under.
type Client struct {
	*redis.Client

	// Retry is consulted by the *WithRetry methods. Defaults to the
	// DatastoreCall preset narrowed by IsRetryable.
	Retry retry.Policy
}

// New creates a new Redis client.
func New(addr, password string, db int) *Client {
	return &Client{
		Client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		Retry: retry.DatastoreCall.WithRetryIf(IsRetryable),
	}
}

// Get retrieves a value by key from Redis.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

// Set stores a value by key in Redis.
func (c *Client) Set(ctx context.Context, key string, value interface{}) error {
	return c.Client.Set(ctx, key, value, 0).Err()
}

// SetWithExpiration stores a value with a specified expiration time.
func (c *Client) SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.Client.Set(ctx, key, value, expiration).Err()
}

// Del removes a key from Redis.
func (c *Client) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// GetWithRetry retrieves a value under the client's retry policy.
func (c *Client) GetWithRetry(ctx context.Context, key string) (string, error) {
	return retry.Do(ctx, func(ctx context.Context) (string, error) {
		return c.Get(ctx, key)
	}, c.Retry, retry.WithName("redis.get"))
}

// SetWithRetry stores a value under the client's retry policy.
func (c *Client) SetWithRetry(ctx context.Context, key string, value interface{}) error {
	return retry.Run(ctx, func(ctx context.Context) error {
		return c.Set(ctx, key, value)
	}, c.Retry, retry.WithName("redis.set"))
}

// DelWithRetry removes a key under the client's retry policy.
func (c *Client) DelWithRetry(ctx context.Context, key string) error {
	return retry.Run(ctx, func(ctx context.Context) error {
		return c.Del(ctx, key)
	}, c.Retry, retry.WithName("redis.del"))
}

// BatchWriter performs batched writes to Redis asynchronously.
func (c *Client) BatchWriter(ctx context.Context, in <-chan [2]string) {
	go func() {
		for pair := range in {
			if err := c.Set(ctx, pair[0], pair[1]); err != nil {
				zlog.Logger.Warn().Err(err).Str("key", pair[0]).Msg("batch write failed")
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
		}
	}()
}
