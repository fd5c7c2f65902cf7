package logic

import (
	"context"
	"fmt"
	"time"
)

const rateLimitWindow = time.Minute

// RateLimiter counts writes per wallet in fixed one-minute windows.
type RateLimiter struct {
	redis RedisClient
	limit int
	now   func() time.Time
}

// NewRateLimiter returns a limiter allowing limit writes per wallet per
// minute. A limit of zero or less disables limiting.
func NewRateLimiter(redis RedisClient, limit int) *RateLimiter {
	return &RateLimiter{redis: redis, limit: limit, now: time.Now}
}

// Allow reports whether another write from wallet fits in the current
// window. Redis errors fail open: the write is allowed and the error returned.
func (l *RateLimiter) Allow(ctx context.Context, wallet string) (bool, error) {
	if l == nil || l.redis == nil || l.limit <= 0 {
		return true, nil
	}

	window := l.now().Truncate(rateLimitWindow).Unix()
	key := fmt.Sprintf("ratelimit:wallet:%s:%d", wallet, window)

	n, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return true, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := l.redis.Expire(ctx, key, rateLimitWindow).Err(); err != nil {
			return true, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return n <= int64(l.limit), nil
}
