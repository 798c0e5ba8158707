package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StoreRequired answers 503 for routes that need a document store when none
// was configured at startup.
func StoreRequired(available bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !available {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"detail": "database not initialized"})
			return
		}
		c.Next()
	}
}
