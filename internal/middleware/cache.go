package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// CacheControl lets clients cache responses that never change for a URL,
// such as a survey definition. Error responses override it with no-store.
func CacheControl(maxAge time.Duration) gin.HandlerFunc {
	header := fmt.Sprintf("public, max-age=%d, immutable", int(maxAge.Seconds()))
	return func(c *gin.Context) {
		c.Header("Cache-Control", header)
		c.Next()
	}
}

// NoStore forbids caching, for responses like live statistics.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
