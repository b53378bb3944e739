package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rule is a fixed-window limit: at most Max requests per Window for one key.
type Rule struct {
	Name   string
	Max    int64
	Window time.Duration
}

// Rules mirroring the OTP endpoints' limits.
var (
	OTPResend     = Rule{Name: "otp", Max: 5, Window: 15 * time.Minute}
	PasswordReset = Rule{Name: "pwreset", Max: 3, Window: time.Hour}
)

// Limiter counts requests in redis fixed windows.
type Limiter struct {
	client *redis.Client
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

// Allow increments the counter for (rule, key) and reports whether the
// request fits in the current window. The window TTL is set on first hit.
func (l *Limiter) Allow(ctx context.Context, rule Rule, key string) (bool, error) {
	redisKey := fmt.Sprintf("rl:%s:%s", rule.Name, key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("increment rate limit counter: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, rule.Window).Err(); err != nil {
			return false, fmt.Errorf("set rate limit window: %w", err)
		}
	}

	return count <= rule.Max, nil
}
