package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"alcyxob/fitness-coach/internal/history"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultHistoryTTL bounds staleness if an invalidation is lost.
const DefaultHistoryTTL = 10 * time.Minute

// HistoryCache stores a student's trend series.
type HistoryCache struct {
	helper *Helper
	ttl    time.Duration
}

// NewHistoryCache creates a HistoryCache. A nil client disables it.
func NewHistoryCache(client *redis.Client, ttl time.Duration) *HistoryCache {
	if ttl <= 0 {
		ttl = DefaultHistoryTTL
	}
	return &HistoryCache{helper: NewHelper(client, "history:"), ttl: ttl}
}

// Get returns the cached series and whether it was found. Cache failures are
// logged and reported as a miss.
func (c *HistoryCache) Get(ctx context.Context, studentID primitive.ObjectID) ([]history.Point, bool) {
	var points []history.Point
	err := c.helper.Get(ctx, studentID.Hex(), &points)
	switch {
	case err == nil:
		if points == nil {
			points = []history.Point{}
		}
		return points, true
	case errors.Is(err, ErrCacheNotFound), errors.Is(err, ErrCacheNotAvailable):
	default:
		slog.WarnContext(ctx, "history cache read failed", "studentId", studentID.Hex(), "error", err)
	}
	return nil, false
}

// Set stores points. Failures are logged, never returned.
func (c *HistoryCache) Set(ctx context.Context, studentID primitive.ObjectID, points []history.Point) {
	if err := c.helper.Set(ctx, studentID.Hex(), points, c.ttl); err != nil {
		slog.WarnContext(ctx, "history cache write failed", "studentId", studentID.Hex(), "error", err)
	}
}

// Invalidate drops the cached series of studentID.
func (c *HistoryCache) Invalidate(ctx context.Context, studentID primitive.ObjectID) {
	if err := c.helper.Delete(ctx, studentID.Hex()); err != nil {
		slog.WarnContext(ctx, "history cache invalidation failed", "studentId", studentID.Hex(), "error", err)
	}
}
