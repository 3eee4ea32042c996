package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestRecorder receives per-request measurements.
type RequestRecorder interface {
	RecordRequest(method, route string, status int, seconds float64)
}

// Metrics records request counts and latency by route template, so path
// parameters do not explode label cardinality.
func Metrics(rec RequestRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		rec.RecordRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start).Seconds())
	}
}
