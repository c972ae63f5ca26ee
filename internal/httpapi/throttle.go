package httpapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"petshop-api/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter counts failed logins per key within a fixed window.
type LoginLimiter interface {
	Attempts(ctx context.Context, key string) (int64, error)
	RecordFailure(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// RedisLoginLimiter keeps login failure counters in Redis.
type RedisLoginLimiter struct {
	rdb    redis.Cmdable
	window time.Duration
}

func NewRedisLoginLimiter(rdb redis.Cmdable, window time.Duration) *RedisLoginLimiter {
	return &RedisLoginLimiter{rdb: rdb, window: window}
}

func (l *RedisLoginLimiter) Attempts(ctx context.Context, key string) (int64, error) {
	return utils.WindowCount(ctx, l.rdb, key)
}

func (l *RedisLoginLimiter) RecordFailure(ctx context.Context, key string) (int64, error) {
	return utils.HitWindow(ctx, l.rdb, key, l.window)
}

func (l *RedisLoginLimiter) Reset(ctx context.Context, key string) error {
	return utils.ResetWindow(ctx, l.rdb, key)
}

// loginThrottleKey scopes failures to one email from one client IP.
// The email is hashed so raw addresses never appear in Redis keys.
func loginThrottleKey(email, ip string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "auth:login_failures:" + hex.EncodeToString(sum[:16]) + ":" + ip
}
