package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter defines the interface for rate limiting operations
type Limiter interface {
	// Allow checks if a request should be allowed under the limit.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// GetRemaining returns the requests left in the current window.
	GetRemaining(ctx context.Context, key string, limit int, window time.Duration) (int, error)

	// Reset clears the counter for a key.
	Reset(ctx context.Context, key string) error
}

// TokenBucketLimiter rate-limits with redis INCR/EXPIRE per time
// bucket. Counters are shared by every process pointing at the same
// redis, so the limit holds across restarts.
type TokenBucketLimiter struct {
	redisClient *redis.Client
	logger      *zap.Logger
	failOpen    bool // allow requests when redis is unavailable
}

func NewTokenBucketLimiter(redisClient *redis.Client, logger *zap.Logger, failOpen bool) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		redisClient: redisClient,
		logger:      logger,
		failOpen:    failOpen,
	}
}

func (l *TokenBucketLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	bucketKey := l.bucketKey(key, time.Now(), window)

	pipe := l.redisClient.Pipeline()
	incrCmd := pipe.Incr(ctx, bucketKey)
	pipe.Expire(ctx, bucketKey, window+time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		if l.failOpen {
			l.logger.Warn("rate limit check failed, allowing request",
				zap.String("key", key),
				zap.Error(err),
			)
			return true, nil
		}
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	count := incrCmd.Val()
	allowed := count <= int64(limit)
	if !allowed {
		l.logger.Warn("rate limit exceeded",
			zap.String("key", key),
			zap.Int64("count", count),
			zap.Int("limit", limit),
		)
	}
	return allowed, nil
}

func (l *TokenBucketLimiter) GetRemaining(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	bucketKey := l.bucketKey(key, time.Now(), window)

	count, err := l.redisClient.Get(ctx, bucketKey).Int64()
	if err != nil {
		if err == redis.Nil {
			return limit, nil
		}
		return 0, fmt.Errorf("failed to get remaining tokens: %w", err)
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (l *TokenBucketLimiter) Reset(ctx context.Context, key string) error {
	now := time.Now()
	windows := []time.Duration{time.Minute, time.Hour}

	var keys []string
	for _, window := range windows {
		keys = append(keys, l.bucketKey(key, now, window))
		keys = append(keys, l.bucketKey(key, now.Add(-window), window))
	}

	if err := l.redisClient.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit for key %s: %w", key, err)
	}
	return nil
}

func (l *TokenBucketLimiter) bucketKey(key string, now time.Time, window time.Duration) string {
	bucket := now.Unix() / int64(window.Seconds())
	return fmt.Sprintf("ratelimit:%s:%d", key, bucket)
}

// Rule pairs a request limit with its window.
type Rule struct {
	Limit  int
	Window time.Duration
}

// Config holds the per-endpoint limits.
type Config struct {
	RegisterPerMinute int
	LoginPerMinute    int
	MessagePerMinute  int
	APIPerMinute      int
}

// RuleForEndpoint returns the limit rule for a named endpoint class.
func RuleForEndpoint(endpoint string, config *Config) Rule {
	switch endpoint {
	case "register":
		return Rule{Limit: config.RegisterPerMinute, Window: time.Minute}
	case "login":
		return Rule{Limit: config.LoginPerMinute, Window: time.Minute}
	case "message":
		return Rule{Limit: config.MessagePerMinute, Window: time.Minute}
	case "api":
		return Rule{Limit: config.APIPerMinute, Window: time.Minute}
	default:
		return Rule{Limit: 100, Window: time.Minute}
	}
}
