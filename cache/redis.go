package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pathPrefix = "content:path:"
	tagPrefix  = "content:tag:"
)

// RedisCache is a ContentCache shared between processes
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to the redis server at url, e.g.
// redis://localhost:6379/0
func NewRedisCache(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, path string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, pathPrefix+path).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, path string, value []byte, tags ...string) error {
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, pathPrefix+path, value, c.ttl)
	for _, tag := range tags {
		pipe.SAdd(ctx, tagPrefix+tag, path)
		pipe.Expire(ctx, tagPrefix+tag, c.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *RedisCache) InvalidatePath(ctx context.Context, path string) error {
	return c.client.Del(ctx, pathPrefix+path).Err()
}

func (c *RedisCache) InvalidateTag(ctx context.Context, tag string) error {
	paths, err := c.client.SMembers(ctx, tagPrefix+tag).Result()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(paths)+1)
	for _, p := range paths {
		keys = append(keys, pathPrefix+p)
	}
	keys = append(keys, tagPrefix+tag)

	return c.client.Del(ctx, keys...).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
