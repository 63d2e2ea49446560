package pkg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// DistributedLimiter combines a local token bucket with a Redis fixed-window counter shared by all instances.
// Without a Redis client only the local bucket applies.
type DistributedLimiter struct {
	localLimiter *rate.Limiter
	redisClient  *redis.Client
	key          string        // e.g: "gojenga:login_rate"
	window       time.Duration // length of one shared counter window
	windowLimit  int64
	logger       *zap.Logger
}

// NewDistributedLimiter creates a limiter; if perSecond=0, it's unlimited.
func NewDistributedLimiter(redisClient *redis.Client, key string, perSecond, burst int, window time.Duration, logger *zap.Logger) *DistributedLimiter {
	var local *rate.Limiter
	if perSecond > 0 {
		local = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
	if window <= 0 {
		window = time.Minute
	}
	return &DistributedLimiter{
		localLimiter: local,
		redisClient:  redisClient,
		key:          key,
		window:       window,
		windowLimit:  int64(float64(perSecond)*window.Seconds()) + int64(burst),
		logger:       logger,
	}
}

// Allow reports whether one more request fits. Redis failures fail open to the local decision.
func (d *DistributedLimiter) Allow(ctx context.Context) bool {
	if d.localLimiter == nil {
		return true
	}
	if !d.localLimiter.Allow() {
		return false
	}
	if d.redisClient == nil {
		return true
	}

	windowKey := fmt.Sprintf("%s:%d", d.key, time.Now().UnixNano()/int64(d.window))
	pipe := d.redisClient.Pipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, d.window)
	if _, err := pipe.Exec(ctx); err != nil {
		d.logger.Error("redis rate limit error; falling back to local", zap.Error(err))
		return true
	}

	if count := incr.Val(); count > d.windowLimit {
		d.logger.Warn("global rate limit exceeded", zap.String("key", d.key), zap.Int64("count", count))
		return false
	}
	return true
}
