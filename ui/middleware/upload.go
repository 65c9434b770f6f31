package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LimitUpload caps the request body so oversized uploads fail while parsing
// instead of filling memory or disk.
func LimitUpload(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
