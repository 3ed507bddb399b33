// Package memkv implements kvcache.Cache in process, for single instance deployments and tests.
package memkv

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	apperrors "github.com/jrsteele09/go-catalog-server/internal/errors"
	"github.com/jrsteele09/go-catalog-server/kvcache"
)

var _ kvcache.Cache = (*Cache)(nil)

type Cache struct {
	entries *lru.Cache[string, []byte]
}

func New(size int) (*Cache, error) {
	entries, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, apperrors.Wrapf(err, "lru.New")
	}
	return &Cache{entries: entries}, nil
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := c.entries.Get(key)
	if !ok {
		return nil, apperrors.ErrCacheMiss
	}
	return append([]byte(nil), value...), nil
}

func (c *Cache) Set(_ context.Context, key string, value []byte) error {
	c.entries.Add(key, append([]byte(nil), value...))
	return nil
}
