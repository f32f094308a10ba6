package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/servipro/marketplace-api/pkg/httputil"
	"github.com/servipro/marketplace-api/pkg/logger"
)

// Recovery converts panics into a 500 envelope instead of a dropped connection.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(map[string]interface{}{
					"panic":      r,
					"path":       c.Request.URL.Path,
					"request_id": RequestID(c),
				}).Error(nil, "panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, httputil.Response{
					Success: false,
					Error:   &httputil.Error{Code: http.StatusInternalServerError, Message: "internal server error"},
				})
			}
		}()
		c.Next()
	}
}
