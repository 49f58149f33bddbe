package middleware

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger emits one line per request after the handler chain finished, so
// the response status, body size and any identity resolved by Auth are
// all available.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		line := fmt.Sprintf("[HTTP] request_id=%s method=%s path=%s status=%d bytes=%d latency_ms=%.3f ip=%s",
			GetRequestID(c),
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			c.Writer.Size(),
			float64(time.Since(start).Microseconds())/1000.0,
			c.ClientIP(),
		)
		if id, ok := c.Get(userIDKey); ok {
			line += fmt.Sprintf(" user_id=%v", id)
		}
		log.Print(line)
	}
}
