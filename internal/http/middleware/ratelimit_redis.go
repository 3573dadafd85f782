package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter sets the client shared by the rate limiters. A nil
// client makes them fall back to the in-process limiter.
func InitRedisRateLimiter(client *redis.Client) {
	redisClient = client
}

// RedisRateLimit implements a fixed-window limit per client IP using Redis INCR/EXPIRE.
// key format: rl:<window_seconds>:<ip>
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	local := newLocalLimiter()
	return func(c *gin.Context) {
		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		limit(c, local, key, c.FullPath(), maxRequests, window)
	}
}

// EventRateLimit limits game events per authenticated player. Requires JWT
// to run first.
// key format: event_rl:<player_id>:<window_seconds>
func EventRateLimit(maxEvents int, window time.Duration) gin.HandlerFunc {
	local := newLocalLimiter()
	return func(c *gin.Context) {
		playerID, ok := PlayerID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		key := "event_rl:" + playerID + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		limit(c, local, key, "event:"+c.FullPath(), maxEvents, window)
	}
}

func limit(c *gin.Context, local *localLimiter, key, endpoint string, maxCount int, window time.Duration) {
	var count int64
	if redisClient != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		val, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			cancel()
			// fail-open on Redis errors
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}
		if val == 1 {
			redisClient.Expire(ctx, key, window)
		}
		cancel()
		count = val
	} else {
		count = local.incr(key, window)
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(maxCount))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxCount)-count), 10))

	if count > int64(maxCount) {
		RLBlocked.WithLabelValues(endpoint).Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"retry_after": int(window.Seconds()),
		})
		return
	}

	RLRequests.WithLabelValues(endpoint).Inc()
	c.Next()
}
