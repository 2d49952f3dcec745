package middleware

import (
	"time"

	"workshop-host/services"

	"github.com/gin-gonic/gin"
)

/**
 * HTTP request accounting middleware
 * @description
 * - Counts requests received by the daemon API
 * - Records request handling time
 * - Separates successful and failed requests
 * - Feeds the request numbers shown by the health endpoint
 */
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := c.Writer.Status()

		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}

		services.IncrementRequestCount(path)
		services.RecordRequestDuration(path, duration)

		if statusCode >= 400 {
			services.IncrementErrorCount(path)
		}
	}
}
