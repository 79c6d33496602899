package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// WindowLimiter enforces a fixed-window request budget per key.
// Key format: ratelimit:<key>:<window_start_unix>
type WindowLimiter struct {
	client *redis.Client
	max    int64
	window time.Duration
	now    func() time.Time
}

// NewWindowLimiter allows up to max hits per key in each window.
func NewWindowLimiter(client *redis.Client, max int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{client: client, max: int64(max), window: window, now: time.Now}
}

// Allow records a hit for key and reports whether it is within budget.
func (l *WindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.key(key, l.now())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit: %w", err)
	}
	return incr.Val() <= l.max, nil
}

func (l *WindowLimiter) key(key string, now time.Time) string {
	start := now.Truncate(l.window).Unix()
	return fmt.Sprintf("ratelimit:%s:%d", key, start)
}
