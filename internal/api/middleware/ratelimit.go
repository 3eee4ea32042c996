package middleware

import (
	"log/slog"
	"net/http"

	"github.com/bakchoddost/bakchoddost/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

// LimitObserver is told when a request is rejected.
type LimitObserver interface {
	RateLimited(limit string)
}

// RateLimit rejects clients that exceed limiter with 429. Keys are client IPs.
// Limiter errors are logged and the request is let through.
func RateLimit(name string, limiter ratelimit.Limiter, obs LimitObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			slog.Warn("Rate limiter unavailable", "limit", name, "error", err)
		}
		if !allowed {
			if obs != nil {
				obs.RateLimited(name)
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later."})
			return
		}
		c.Next()
	}
}
