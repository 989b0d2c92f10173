package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS answers preflight requests and sets the allow-origin header. origins is
// a comma separated list; "*" allows any origin.
func CORS(origins string) gin.HandlerFunc {
	permitidos := make(map[string]bool)
	todos := false
	for _, o := range strings.Split(origins, ",") {
		o = strings.TrimSpace(o)
		if o == "*" {
			todos = true
		}
		if o != "" {
			permitidos[o] = true
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case todos:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && permitidos[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, Content-Disposition")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
