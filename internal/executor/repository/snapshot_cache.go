package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang-stock-signal/internal/executor/dto"
	"golang-stock-signal/pkg/common"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

func snapshotKey(symbol string) string {
	return fmt.Sprintf(common.RedisKeySnapshot, strings.ToUpper(symbol))
}

type memorySnapshotCache struct {
	cache *cache.Cache
}

// NewMemorySnapshotCache keeps snapshots in process memory.
func NewMemorySnapshotCache(defaultTTL, cleanupInterval time.Duration) SnapshotCache {
	return &memorySnapshotCache{cache: cache.New(defaultTTL, cleanupInterval)}
}

func (c *memorySnapshotCache) Get(_ context.Context, symbol string) (*dto.IndicatorSnapshot, bool, error) {
	v, ok := c.cache.Get(snapshotKey(symbol))
	if !ok {
		return nil, false, nil
	}
	snap, ok := v.(dto.IndicatorSnapshot)
	if !ok {
		return nil, false, nil
	}
	return &snap, true, nil
}

func (c *memorySnapshotCache) Set(_ context.Context, snapshot dto.IndicatorSnapshot, ttl time.Duration) error {
	c.cache.Set(snapshotKey(snapshot.Symbol), snapshot, ttl)
	return nil
}

func (c *memorySnapshotCache) Invalidate(_ context.Context, symbol string) error {
	c.cache.Delete(snapshotKey(symbol))
	return nil
}

func (c *memorySnapshotCache) Flush(_ context.Context) error {
	c.cache.Flush()
	return nil
}

type redisSnapshotCache struct {
	client *redis.Client
}

// NewRedisSnapshotCache shares snapshots between executor instances.
func NewRedisSnapshotCache(client *redis.Client) SnapshotCache {
	return &redisSnapshotCache{client: client}
}

func (c *redisSnapshotCache) Get(ctx context.Context, symbol string) (*dto.IndicatorSnapshot, bool, error) {
	raw, err := c.client.Get(ctx, snapshotKey(symbol)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snap dto.IndicatorSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, false, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, true, nil
}

func (c *redisSnapshotCache) Set(ctx context.Context, snapshot dto.IndicatorSnapshot, ttl time.Duration) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return c.client.Set(ctx, snapshotKey(snapshot.Symbol), raw, ttl).Err()
}

func (c *redisSnapshotCache) Invalidate(ctx context.Context, symbol string) error {
	return c.client.Del(ctx, snapshotKey(symbol)).Err()
}

func (c *redisSnapshotCache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, snapshotKey("*"), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan snapshots: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
