package cache

import (
	"context"
	"testing"
	"time"

	"alcyxob/fitness-coach/internal/history"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestHistoryCache(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	c := NewHistoryCache(client, time.Minute)
	student := primitive.NewObjectID()

	_, ok := c.Get(ctx, student)
	assert.False(t, ok)

	lean := 64.0
	points := []history.Point{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), WeightKg: 80, BodyFatPercentage: 20, LeanMassKg: &lean},
		{Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), WeightKg: 78},
	}
	c.Set(ctx, student, points)

	assert.True(t, mr.Exists("history:"+student.Hex()))
	assert.Equal(t, time.Minute, mr.TTL("history:"+student.Hex()))

	got, ok := c.Get(ctx, student)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.True(t, points[0].Date.Equal(got[0].Date))
	require.NotNil(t, got[0].LeanMassKg)
	assert.Equal(t, 64.0, *got[0].LeanMassKg)
	assert.Nil(t, got[1].LeanMassKg)

	c.Invalidate(ctx, student)
	_, ok = c.Get(ctx, student)
	assert.False(t, ok)
}

func TestHistoryCacheEmptySeries(t *testing.T) {
	ctx := context.Background()
	_, client := setupRedis(t)
	c := NewHistoryCache(client, 0)
	student := primitive.NewObjectID()

	c.Set(ctx, student, []history.Point{})
	got, ok := c.Get(ctx, student)
	require.True(t, ok)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestHistoryCacheExpires(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	c := NewHistoryCache(client, time.Minute)
	student := primitive.NewObjectID()

	c.Set(ctx, student, []history.Point{{WeightKg: 70}})
	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, student)
	assert.False(t, ok)
}

func TestHistoryCacheWithoutRedis(t *testing.T) {
	ctx := context.Background()
	c := NewHistoryCache(nil, time.Minute)
	student := primitive.NewObjectID()

	c.Set(ctx, student, []history.Point{{WeightKg: 70}})
	_, ok := c.Get(ctx, student)
	assert.False(t, ok)
	c.Invalidate(ctx, student)
}

func TestHistoryCacheRedisDown(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	c := NewHistoryCache(client, time.Minute)
	mr.Close()

	_, ok := c.Get(ctx, primitive.NewObjectID())
	assert.False(t, ok, "errors degrade to a miss")
}

func TestHelperKey(t *testing.T) {
	h := NewHelper(nil, "history:")
	assert.Equal(t, "history:abc", h.Key("abc"))
	assert.ErrorIs(t, h.Get(context.Background(), "abc", &struct{}{}), ErrCacheNotAvailable)
	assert.NoError(t, h.Delete(context.Background(), "abc"))
}
