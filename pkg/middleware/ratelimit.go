package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/smilepricing/pkg/config"
	"github.com/wyfcoding/smilepricing/pkg/logger"
	"github.com/wyfcoding/smilepricing/pkg/ratelimit"
)

// KeyFunc 计算限流 key
type KeyFunc func(c *gin.Context) string

// ClientRouteKey 按路由模板与客户端 IP 分桶，上传与定价互不挤占
func ClientRouteKey(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	return "ratelimit:" + route + ":" + c.ClientIP()
}

// RateLimitMiddleware 使用默认 key 的限流中间件
func RateLimitMiddleware(limiter ratelimit.RateLimiter, cfg config.RateLimitConfig) gin.HandlerFunc {
	return RateLimitMiddlewareWithKey(limiter, cfg, ClientRouteKey)
}

// RateLimitMiddlewareWithKey 限流中间件，超限返回 429 与 {"error": ...}
func RateLimitMiddlewareWithKey(limiter ratelimit.RateLimiter, cfg config.RateLimitConfig, key KeyFunc) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	limit := ratelimit.PerSecond(cfg.QPS, cfg.Burst)

	return func(c *gin.Context) {
		res, err := limiter.Allow(c.Request.Context(), key(c), limit)
		if err != nil {
			// 限流器故障时放行
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "error", err)
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Burst))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if res.Allowed {
			c.Next()
			return
		}

		retry := int64((res.RetryAfter + time.Second - 1) / time.Second)
		h.Set("Retry-After", strconv.FormatInt(retry, 10))
		logger.Debug(c.Request.Context(), "request rate limited", "client_ip", c.ClientIP(), "retry_after", res.RetryAfter)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
	}
}
