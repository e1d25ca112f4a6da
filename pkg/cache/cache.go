// Package cache 提供基于键值存储的泛型缓存，分享记录与响应缓存都经由它读写.
//
// 基本用法:
//
//	grants := cache.NewCache(kvClient, "share.v1")
//	err := cache.Set(ctx, grants, token, grant, 10*time.Minute)
//	grant, err := cache.Get[Grant](ctx, grants, token)
//
// 键会加上命名空间前缀，分隔符为 "."，兼容 NATS KV 的键规则.
// 缓存未命中返回 kv.ErrNotFound，可用 errors.Is 判断.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/yeisme/projecthub/pkg/internal/storage/kv"
)

// Cache 基于KV存储的缓存实现.
type Cache struct {
	kvStore   kv.KVStore
	namespace string
}

// NewCache 创建一个新的缓存实例，namespace 为空时不加前缀.
func NewCache(kvStore kv.KVStore, namespace string) *Cache {
	return &Cache{
		kvStore:   kvStore,
		namespace: namespace,
	}
}

// Key 返回带命名空间的完整键.
func (c *Cache) Key(key string) string {
	if c.namespace == "" {
		return key
	}

	return c.namespace + "." + key
}

// Get 泛型获取缓存值.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var zero T

	data, err := c.kvStore.Get(ctx, c.Key(key))
	if err != nil {
		return zero, err
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 泛型设置缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.kvStore.Set(ctx, c.Key(key), data, ttl)
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	err := c.kvStore.Delete(ctx, c.Key(key))
	if errors.Is(err, kv.ErrNotFound) {
		return nil
	}

	return err
}

// Exists 检查缓存键是否存在.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.kvStore.Exists(ctx, c.Key(key))
}

// GetOrSet 获取缓存值，未命中时调用 getter 并回填；回填失败不影响返回值.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (T, error) {
	if value, err := Get[T](ctx, c, key); err == nil {
		return value, nil
	}

	value, err := getter()
	if err != nil {
		var zero T

		return zero, err
	}

	_ = Set(ctx, c, key, value, ttl)

	return value, nil
}

// Keys 列出命名空间下的键（不含前缀）.
func (c *Cache) Keys(ctx context.Context) ([]string, error) {
	pattern := "*"
	if c.namespace != "" {
		pattern = c.namespace + ".*"
	}

	keys, err := c.kvStore.Keys(ctx, pattern)
	if err != nil {
		return nil, err
	}

	if c.namespace == "" {
		return keys, nil
	}

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k[len(c.namespace)+1:])
	}

	return out, nil
}

// Clear 清空命名空间下的全部键.
func (c *Cache) Clear(ctx context.Context) error {
	keys, err := c.Keys(ctx)
	if err != nil {
		return err
	}

	for _, key := range keys {
		if err := c.Delete(ctx, key); err != nil {
			return err
		}
	}

	return nil
}
