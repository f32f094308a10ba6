package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/servipro/marketplace-api/pkg/logger"
)

// RequestLogger logs one structured line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := map[string]interface{}{
			"method":     c.Request.Method,
			"path":       path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
			"request_id": RequestID(c),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case c.Writer.Status() >= 500:
			log.WithFields(fields).Error(nil, "request failed")
		case c.Writer.Status() >= 400:
			log.WithFields(fields).Warn("request rejected")
		default:
			log.WithFields(fields).Info("request")
		}
	}
}
