package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// readOnlyMessage is returned for blocked writes.
const readOnlyMessage = "The API is read-only right now"

// ReadOnly blocks content writes while READ_ONLY is set, for example during
// a database migration. Reads, CORS preflight and the auth endpoints keep
// working so clients can still sign in and browse.
func ReadOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if isAuthPath(c.Request.URL.Path) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": readOnlyMessage})
	}
}

func isAuthPath(path string) bool {
	path = strings.TrimPrefix(path, "/api")
	return strings.HasPrefix(path, "/auth/")
}
