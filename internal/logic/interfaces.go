package logic

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pnlboard/leaderboard-api/internal/models"
)

// RedisClient is the subset of go-redis the services use.
type RedisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// EventSink receives leaderboard change events.
type EventSink interface {
	Publish(ctx context.Context, evt models.LeaderboardEvent)
}

// SnapshotRecorder accepts derived boards for the analytics sink. Enqueue
// must not block; it reports false when the snapshot was dropped.
type SnapshotRecorder interface {
	Enqueue(snap models.LeaderboardSnapshot) bool
}
