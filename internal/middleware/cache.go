package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// CacheControl sets a public Cache-Control header. Used for static
// documents such as the upload template.
func CacheControl(maxAgeSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAgeSeconds))
		c.Next()
	}
}

// NoStore marks responses as uncacheable, e.g. exported papers and job status.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
