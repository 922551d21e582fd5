package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RegistrationLimiter throttles account creation per email and per client
// IP using Redis counters with a rolling cooldown window.
// Key format: reg:<email> and regip:<ip>
type RegistrationLimiter struct {
	client      *redis.Client
	maxAttempts int
	cooldown    time.Duration
}

// NewRegistrationLimiter creates a limiter allowing maxAttempts attempts per
// key within each cooldown window.
func NewRegistrationLimiter(client *redis.Client, maxAttempts int, cooldown time.Duration) *RegistrationLimiter {
	return &RegistrationLimiter{client: client, maxAttempts: maxAttempts, cooldown: cooldown}
}

// Allow reports whether another registration attempt is permitted for this
// email/IP pair. The counters increment on every call, so a refused attempt
// still extends pressure on the window.
func (l *RegistrationLimiter) Allow(ctx context.Context, email, ip string) (bool, error) {
	if ok, err := l.allowKey(ctx, "reg:"+email); err != nil || !ok {
		return ok, err
	}
	if ip != "" {
		return l.allowKey(ctx, "regip:"+ip)
	}
	return true, nil
}

func (l *RegistrationLimiter) allowKey(ctx context.Context, key string) (bool, error) {
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("registration throttle: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.cooldown).Err(); err != nil {
			return false, fmt.Errorf("registration throttle: %w", err)
		}
	}
	return count <= int64(l.maxAttempts), nil
}
