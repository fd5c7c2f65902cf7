package logic

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pnlboard/leaderboard-api/internal/models"
)

// EventsChannel is the Redis pub/sub channel for leaderboard changes.
const EventsChannel = "leaderboard:events"

// RedisEventPublisher fans change events out over Redis pub/sub. Publishing
// is best effort: failures are logged and never reach the caller.
type RedisEventPublisher struct {
	redis  RedisClient
	logger *zap.SugaredLogger
}

func NewRedisEventPublisher(redis RedisClient, logger *zap.Logger) *RedisEventPublisher {
	return &RedisEventPublisher{redis: redis, logger: logger.Sugar()}
}

func (p *RedisEventPublisher) Publish(ctx context.Context, evt models.LeaderboardEvent) {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		p.logger.Errorw("Failed to marshal leaderboard event", "error", err, "type", evt.Type)
		return
	}
	if err := p.redis.Publish(ctx, EventsChannel, payload).Err(); err != nil {
		p.logger.Warnw("Failed to publish leaderboard event", "error", err, "type", evt.Type, "wallet", evt.WalletAddress)
	}
}

type nopEventSink struct{}

func (nopEventSink) Publish(context.Context, models.LeaderboardEvent) {}
