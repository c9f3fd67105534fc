package security

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter counts failed login attempts per client IP in a fixed
// window. It fails open: with no redis client, or when redis is down,
// every attempt is allowed.
type LoginLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

func NewLoginLimiter(client *redis.Client, max int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{client: client, max: max, window: window}
}

func (l *LoginLimiter) Allow(ctx context.Context, ip string) bool {
	if l == nil || l.client == nil || l.max <= 0 {
		return true
	}

	key := "login_attempts:" + ip
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		l.client.Expire(ctx, key, l.window)
	}
	return count <= int64(l.max)
}

// Reset clears the window after a successful login so a legitimate admin
// with a few typos is not locked out for the full window.
func (l *LoginLimiter) Reset(ctx context.Context, ip string) {
	if l == nil || l.client == nil {
		return
	}
	l.client.Del(ctx, "login_attempts:"+ip)
}
