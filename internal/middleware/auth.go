// Package middleware contains the Gin middleware of the stylist API: API-key
// auth, CORS, per-client rate limiting, request IDs and access logging.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextKeyAPIKey is where the authenticated key is stored on gin.Context.
const ContextKeyAPIKey = "api_key"

func keySet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

// APIKeyAuth checks the X-API-Key header against validKeys. With no keys
// configured the API is open and every request passes.
func APIKeyAuth(validKeys []string) gin.HandlerFunc {
	keys := keySet(validKeys)

	return func(c *gin.Context) {
		if len(keys) == 0 {
			c.Next()
			return
		}

		key := c.GetHeader("X-API-Key")
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}
		if _, ok := keys[key]; !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}

		c.Set(ContextKeyAPIKey, key)
		c.Next()
	}
}

// AdminKeyAuth guards admin endpoints. Unlike APIKeyAuth it never runs open:
// with no admin keys configured every request is refused.
func AdminKeyAuth(adminKeys []string) gin.HandlerFunc {
	keys := keySet(adminKeys)

	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing admin API key"})
			return
		}
		if _, ok := keys[key]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid admin API key"})
			return
		}

		c.Set(ContextKeyAPIKey, key)
		c.Next()
	}
}
