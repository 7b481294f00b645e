package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const contentPrefix = "asof:content:"

// RedisContentCache stores rendered public payloads under a shared namespace.
type RedisContentCache struct {
	client *redis.Client
}

func NewRedisContentCache(client *redis.Client) *RedisContentCache {
	return &RedisContentCache{client: client}
}

func (c *RedisContentCache) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := c.client.Get(ctx, contentPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return raw, nil
}

func (c *RedisContentCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, contentPrefix+key, value, ttl).Err()
}

func (c *RedisContentCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, contentPrefix+k)
	}
	return c.client.Del(ctx, full...).Err()
}

// DeletePrefix removes every key starting with prefix using SCAN batches.
func (c *RedisContentCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, contentPrefix+prefix+"*", 200).Iterator()
	batch := make([]string, 0, 200)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.client.Unlink(ctx, batch...).Err()
	}
	return nil
}
