package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"samvaad.app/intake/common/logger"
)

const maxStackLen = 8192

// Recovery converts handler panics into a 500 without leaking internals to
// the channel side. The channel adapter retries on 5xx, so the message is
// not lost.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				ctx := c.Request.Context()

				slog.ErrorContext(ctx, "panic recovered",
					"panic", r,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", logger.Truncate(string(debug.Stack()), maxStackLen),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()
		c.Next()
	}
}
