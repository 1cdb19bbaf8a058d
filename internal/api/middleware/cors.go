package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/timmy/reelsearch/internal/config"
)

const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsMaxAge       = 12 * 60 * 60 // seconds
)

var corsAllowHeaders = strings.Join([]string{
	"Content-Type", "Content-Length", "Accept", "Accept-Encoding",
	"Authorization", "Cache-Control", "Origin", "X-Requested-With", RequestIDHeader,
}, ", ")

// CORS returns a middleware answering browser cross-origin checks for the
// search API. With AllowAllOrigins every origin gets "*" and no
// credentials; otherwise only listed origins (case-insensitive) are echoed
// back, and an empty list admits any origin. Preflight requests end here
// with 204.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	wildcard := cfg.AllowAllOrigins
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			wildcard = true
		}
		allowed[strings.ToLower(o)] = true
	}
	openList := len(allowed) == 0

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		h := c.Writer.Header()

		switch {
		case wildcard:
			h.Set("Access-Control-Allow-Origin", "*")
		case origin != "" && (openList || allowed[strings.ToLower(origin)]):
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		default:
			c.Next()
			return
		}

		h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		h.Set("Access-Control-Allow-Methods", corsAllowMethods)
		h.Set("Access-Control-Expose-Headers", "Content-Length, "+RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Max-Age", strconv.Itoa(corsMaxAge))
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
