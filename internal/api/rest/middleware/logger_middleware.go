package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hanssonfredrik/customers/pkg/logger"
)

// LoggerMiddleware writes one access line per request: method, path, matched
// route, status, response size, latency, client IP and request id. 5xx are
// logged as errors and 4xx as warnings.
func LoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		logf := log.Info
		switch {
		case status >= 500:
			logf = log.Error
		case status >= 400:
			logf = log.Warn
		}

		logf("[%s] %s route=%s %d %dB %s %s rid=%s",
			c.Request.Method,
			c.Request.URL.RequestURI(),
			routeOf(c),
			status,
			responseSize(c),
			time.Since(start).Round(time.Microsecond),
			c.ClientIP(),
			c.GetString(RequestIDKey),
		)
	}
}

// routeOf is the matched route template, or "unmatched" for 404s that hit
// no route.
func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}

func responseSize(c *gin.Context) int {
	if size := c.Writer.Size(); size > 0 {
		return size
	}
	return 0
}
