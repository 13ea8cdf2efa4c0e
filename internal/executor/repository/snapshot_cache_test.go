package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-signal/internal/executor/dto"
)

func TestMemorySnapshotCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemorySnapshotCache(time.Minute, time.Minute)

	_, ok, err := c.Get(ctx, "FPT")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, dto.IndicatorSnapshot{Symbol: "FPT", Close: 23400}, time.Minute))
	got, ok, err := c.Get(ctx, "fpt")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 23400.0, got.Close)

	require.NoError(t, c.Invalidate(ctx, "FPT"))
	_, ok, _ = c.Get(ctx, "FPT")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, dto.IndicatorSnapshot{Symbol: "VNM"}, time.Minute))
	require.NoError(t, c.Flush(ctx))
	_, ok, _ = c.Get(ctx, "VNM")
	assert.False(t, ok)
}

func TestMemorySnapshotCache_Expires(t *testing.T) {
	ctx := context.Background()
	c := NewMemorySnapshotCache(time.Minute, time.Minute)

	require.NoError(t, c.Set(ctx, dto.IndicatorSnapshot{Symbol: "FPT"}, 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)
	_, ok, _ := c.Get(ctx, "FPT")
	assert.False(t, ok)
}

func TestSnapshotKey(t *testing.T) {
	assert.Equal(t, "indicator_snapshot:FPT", snapshotKey("fpt"))
}

func newRedisSnapshotCache(t *testing.T) (SnapshotCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSnapshotCache(client), mr
}

func TestRedisSnapshotCache(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisSnapshotCache(t)
	asOf := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	_, ok, err := c.Get(ctx, "FPT")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, dto.IndicatorSnapshot{Symbol: "FPT", AsOf: asOf, Close: 23400, MA10: 23000}, time.Minute))
	assert.True(t, mr.Exists("indicator_snapshot:FPT"))
	assert.Equal(t, time.Minute, mr.TTL("indicator_snapshot:FPT"))

	got, ok, err := c.Get(ctx, "fpt")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 23400.0, got.Close)
	assert.Equal(t, 23000.0, got.MA10)
	assert.True(t, asOf.Equal(got.AsOf))

	require.NoError(t, c.Invalidate(ctx, "FPT"))
	_, ok, err = c.Get(ctx, "FPT")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSnapshotCache_ExpiresAndFlush(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisSnapshotCache(t)

	require.NoError(t, c.Set(ctx, dto.IndicatorSnapshot{Symbol: "FPT"}, time.Minute))
	mr.FastForward(2 * time.Minute)
	_, ok, err := c.Get(ctx, "FPT")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, dto.IndicatorSnapshot{Symbol: "VNM"}, time.Minute))
	require.NoError(t, c.Set(ctx, dto.IndicatorSnapshot{Symbol: "HPG"}, time.Minute))
	require.NoError(t, mr.Set("run:lock", "1"))

	require.NoError(t, c.Flush(ctx))
	assert.False(t, mr.Exists("indicator_snapshot:VNM"))
	assert.False(t, mr.Exists("indicator_snapshot:HPG"))
	assert.True(t, mr.Exists("run:lock"))

	require.NoError(t, c.Flush(ctx))
}

func TestRedisSnapshotCache_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisSnapshotCache(t)

	require.NoError(t, mr.Set("indicator_snapshot:FPT", "{not json"))
	_, ok, err := c.Get(ctx, "FPT")
	assert.False(t, ok)
	assert.ErrorContains(t, err, "failed to decode snapshot")
}
