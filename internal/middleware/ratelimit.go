package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/qbank-backend/internal/config"
	"github.com/stemsi/qbank-backend/internal/response"
)

// RateLimiter is a fixed-window per-IP limiter backed by Redis, so that
// every API instance shares the same counters.
type RateLimiter struct {
	rdb      *redis.Client
	scope    string
	rate     int           // Requests per window
	interval time.Duration // Window length
	log      zerolog.Logger
}

// NewRateLimiter creates a RateLimiter (e.g., 10 requests per minute).
func NewRateLimiter(rdb *redis.Client, scope string, rate int, interval time.Duration, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		rdb:      rdb,
		scope:    scope,
		rate:     rate,
		interval: interval,
		log:      log.With().Str("component", "ratelimit").Str("scope", scope).Logger(),
	}
}

// Middleware returns a Gin middleware that rate-limits requests by IP.
// Redis errors fail open.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		window := time.Now().UnixNano() / int64(rl.interval)
		key := config.CacheKey.RateLimitKey(rl.scope, c.ClientIP(), window)

		pipe := rl.rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, rl.interval)
		if _, err := pipe.Exec(ctx); err != nil {
			rl.log.Warn().Err(err).Msg("Rate limit counter unavailable")
			c.Next()
			return
		}

		count := int(incr.Val())
		remaining := rl.rate - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.rate))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > rl.rate {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}
