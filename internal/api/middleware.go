// internal/api/middleware.go
package api

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"advisor-ai/internal/common/auth"
	"advisor-ai/internal/common/config"
	"advisor-ai/internal/common/errors"
	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/common/metrics"
	"advisor-ai/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "advisorai:ratelimit:"

// RequestLogger logs one line per request through the application logger.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		log.Info("http request", fields)
	}
}

// Metrics records request count and latency per route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// CORS allows the configured frontend origins with credentials so the
// session cookie travels with Gmail requests.
func CORS(cfg config.ServerConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowWildcard:    true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// RateLimiter is a fixed window per client IP counted in Redis. Requests
// pass when Redis is unavailable.
type RateLimiter struct {
	client redis.Cmdable
	limit  int
	window time.Duration
	now    func() time.Time
	logger logger.Logger
}

func NewRateLimiter(client redis.Cmdable, cfg config.RateLimitConfig, log logger.Logger) *RateLimiter {
	window := time.Duration(cfg.Window) * time.Millisecond
	if window <= 0 {
		window = 15 * time.Minute
	}
	limit := cfg.Requests
	if limit <= 0 {
		limit = 100
	}
	return &RateLimiter{client: client, limit: limit, window: window, now: time.Now, logger: log}
}

// allow counts one request for key and reports whether it is within the limit.
func (r *RateLimiter) allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	now := r.now()
	windowStart := now.Truncate(r.window)
	reset := windowStart.Add(r.window)
	redisKey := fmt.Sprintf("%s%s:%d", rateLimitPrefix, key, windowStart.Unix())

	// Relative TTL, set in the same transaction as INCR.
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.PExpire(ctx, redisKey, reset.Sub(now))
		return nil
	})
	if err != nil {
		return true, r.limit, reset, err
	}
	count := incr.Val()

	remaining := r.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return count <= int64(r.limit), remaining, reset, nil
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, remaining, reset, err := r.allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			r.logger.Warn("rate limiter unavailable", map[string]interface{}{"error": err.Error()})
			c.Next()
			return
		}

		c.Header("RateLimit-Limit", strconv.Itoa(r.limit))
		c.Header("RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("RateLimit-Reset", strconv.Itoa(int(time.Until(reset).Seconds())))

		if !ok {
			metrics.RateLimitedTotal.Inc()
			stdErr := errors.NewRateLimitedError("")
			c.AbortWithStatusJSON(stdErr.HTTPStatus(), errorBody{Error: stdErr.Message, Code: string(stdErr.Code)})
			return
		}
		c.Next()
	}
}

// TokenVerifier checks an advisor bearer token.
type TokenVerifier interface {
	Verify(token string) (*models.Advisor, error)
}

// RequireAdvisor rejects requests without a valid Supabase access token.
func (h *Handler) RequireAdvisor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.deps.Verifier == nil {
			h.respondError(c, errors.NewNotAuthenticatedError("advisor authentication is not configured"))
			return
		}
		token := auth.ExtractBearer(c.GetHeader("Authorization"))
		if token == "" {
			h.respondError(c, errors.NewNotAuthenticatedError("missing bearer token"))
			return
		}
		a, err := h.deps.Verifier.Verify(token)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.Set(advisorKey, a)
		c.Next()
	}
}
