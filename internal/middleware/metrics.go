package middleware

import (
	"strconv"
	"time"

	"sistemainventario/internal/infra"

	"github.com/gin-gonic/gin"
)

// Metrics records request count and latency per route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		infra.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		infra.HTTPDuracion.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
