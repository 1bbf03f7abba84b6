package middleware

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter kept in redis.
type RateLimiter struct {
	redisClient redis.Cmdable
}

func NewRateLimiter(client redis.Cmdable) *RateLimiter {
	return &RateLimiter{redisClient: client}
}

// Limit lets at most limit requests per window through for each caller: the
// authenticated user when the auth gate ran first, the client IP otherwise.
// When redis is unreachable requests pass unthrottled.
func (rl *RateLimiter) Limit(bucket string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:%s:%s", bucket, callerKey(c))

		count, err := rl.redisClient.Incr(c, key).Result()
		if err != nil {
			log.Printf("rate limiter: %v", err)
			c.Next()
			return
		}
		if count == 1 {
			if err := rl.redisClient.Expire(c, key, window).Err(); err != nil {
				log.Printf("rate limiter: expire %s: %v", key, err)
			}
		}

		if count > int64(limit) {
			retry := window
			if ttl, err := rl.redisClient.TTL(c, key).Result(); err == nil && ttl > 0 {
				retry = ttl
			}
			c.Header("Retry-After", strconv.Itoa(int(retry.Round(time.Second).Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Too many requests, please try again later",
			})
			return
		}
		c.Next()
	}
}

func callerKey(c *gin.Context) string {
	if caller, ok := Identity(c); ok {
		return "user:" + caller.UserID.String()
	}
	return "ip:" + c.ClientIP()
}
