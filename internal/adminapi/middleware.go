package adminapi

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// slogRequestLogger logs one structured line per admin API request, the
// same shape as the teacher's middleware.SlogRequestLogger.
func slogRequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		if logger == nil {
			return
		}
		logger.Info("admin api request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
