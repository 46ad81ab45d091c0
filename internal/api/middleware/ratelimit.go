package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"renovation_consult_server/internal/metrics"
	"renovation_consult_server/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const rateLimitKeyPrefix = "consult:ratelimit"

const (
	RateLimitedKind    = "rate_limited"
	RateLimitedMessage = "rate limit exceeded"
	RateLimitedHint    = "請稍後再送出。"
)

// RateLimiter decides whether another request under key fits in the window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit caps submissions per client IP per minute. Limiter errors let the request through.
// onLimited writes the rejection response; nil writes a JSON error.
func RateLimit(limiter RateLimiter, perMinute int, log *zap.Logger, onLimited gin.HandlerFunc) gin.HandlerFunc {
	if limiter == nil || perMinute <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		key := rateLimitKeyPrefix + ":" + c.ClientIP()

		allowed, err := limiter.Allow(c.Request.Context(), key, perMinute, time.Minute)
		if err != nil {
			logger.FromContext(c.Request.Context(), log).Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			metrics.RateLimitedTotal.Inc()
			c.Header("Retry-After", "60")
			if onLimited != nil {
				onLimited(c)
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{"kind": RateLimitedKind, "message": RateLimitedMessage, "hint": RateLimitedHint},
			})
			return
		}

		c.Next()
	}
}

// RedisRateLimiter is a sliding-window limiter over a sorted set per key.
type RedisRateLimiter struct {
	client *redis.Client
}

func NewRedisRateLimiter(client *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{client: client}
}

func (r *RedisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now().UnixNano()
	windowStart := now - window.Nanoseconds()

	member := strconv.FormatInt(now, 10) + "-" + uuid.NewString()

	pipe := r.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: member})
	countCmd := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window*2)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	if countCmd.Val() <= int64(limit) {
		return true, nil
	}

	// Rejected attempts do not occupy the window.
	if err := r.client.ZRem(ctx, key, member).Err(); err != nil {
		return false, err
	}
	return false, nil
}

// Ping reports redis reachability for the readiness probe.
func (r *RedisRateLimiter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
