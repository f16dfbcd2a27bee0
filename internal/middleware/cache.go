package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// CacheControl sets Cache-Control on responses whose path starts with prefix,
// usually static assets.
func CacheControl(prefix string, maxAgeSeconds int) gin.HandlerFunc {
	value := fmt.Sprintf("public, max-age=%d", maxAgeSeconds)
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, prefix) {
			c.Header("Cache-Control", value)
		}
		c.Next()
	}
}
