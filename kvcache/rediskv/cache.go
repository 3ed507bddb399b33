// Package rediskv implements kvcache.Cache on redis.
package rediskv

import (
	"context"
	"errors"

	apperrors "github.com/jrsteele09/go-catalog-server/internal/errors"
	"github.com/jrsteele09/go-catalog-server/kvcache"
	"github.com/redis/go-redis/v9"
)

var _ kvcache.Cache = (*Cache)(nil)

type Cache struct {
	client *redis.Client
}

func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// NewWithURL creates a cache from a redis URL, e.g. redis://localhost:6379/0
func NewWithURL(url string) (*Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, apperrors.Wrapf(err, "redis.ParseURL")
	}
	return New(redis.NewClient(opts)), nil
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrCacheMiss
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "redis GET %s", key)
	}
	return value, nil
}

// Set stores the value with no expiry
func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, key, value, 0).Err(); err != nil {
		return apperrors.Wrapf(err, "redis SET %s", key)
	}
	return nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
