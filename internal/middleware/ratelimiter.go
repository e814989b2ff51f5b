package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oneday/onedayclass/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per client IP in Redis. Without a client it lets everything through.
type RateLimiter struct {
	redisClient *redis.Client
}

// NewRateLimiter creates a limiter; client may be nil
func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{redisClient: client}
}

// Limit allows limit requests per window for each client IP under keySuffix.
// Only the methods listed are counted; none means every method.
func (rl *RateLimiter) Limit(keySuffix string, limit int, window time.Duration, methods ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.redisClient == nil || limit <= 0 || !counted(c.Request.Method, methods) {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", keySuffix, c.ClientIP())

		count, err := rl.redisClient.Incr(c, key).Result()
		if err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		if count == 1 {
			rl.redisClient.Expire(c, key, window)
		}

		if count > int64(limit) {
			ttl, _ := rl.redisClient.TTL(c, key).Result()
			logger.Warn().Str("key", key).Int64("count", count).Msg("Rate limit exceeded")
			ErrorPage(c, http.StatusTooManyRequests,
				fmt.Sprintf("Too many attempts. Try again in %.0f seconds.", ttl.Seconds()))
			return
		}
		c.Next()
	}
}

func counted(method string, methods []string) bool {
	if len(methods) == 0 {
		return true
	}
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}
