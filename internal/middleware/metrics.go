package middleware

import (
	"time"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/metrics"
	"github.com/gin-gonic/gin"
)

// PrometheusMetrics records request counts and latency per route template,
// so /api/recipes/1 and /api/recipes/2 share one series.
func PrometheusMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		c.Next()

		metrics.RecordAPIRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
