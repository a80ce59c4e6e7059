// Package cors implements the small cross-origin policy the API
// needs: an origin allowlist from config, credentials enabled, and
// short-circuited preflight requests.
package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	allowedMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	allowedHeaders = "Authorization, Content-Type, X-Requested-With, X-Request-ID"
	preflightAge   = "600"
)

// New returns a CORS middleware honoring the given origin allowlist.
// An empty list allows every origin.
func New(allowedOrigins []string) gin.HandlerFunc {
	allowlist := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowlist = append(allowlist, strings.TrimRight(origin, "/"))
	}

	return func(c *gin.Context) {
		header := c.Writer.Header()

		origin := c.GetHeader("Origin")
		switch {
		case origin != "" && permitted(allowlist, origin):
			header.Set("Access-Control-Allow-Origin", origin)
		case origin == "" && len(allowlist) == 0:
			header.Set("Access-Control-Allow-Origin", "*")
		}

		header.Set("Vary", "Origin")
		header.Set("Access-Control-Allow-Credentials", "true")
		header.Set("Access-Control-Allow-Headers", allowedHeaders)
		header.Set("Access-Control-Allow-Methods", allowedMethods)
		header.Set("Access-Control-Max-Age", preflightAge)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func permitted(allowlist []string, origin string) bool {
	if len(allowlist) == 0 {
		return true
	}
	origin = strings.TrimRight(origin, "/")
	for _, allowed := range allowlist {
		if allowed == origin {
			return true
		}
	}
	return false
}
