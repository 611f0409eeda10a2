package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hanssonfredrik/customers/internal/metrics"
)

const unmatchedRoute = "unmatched"

// Metrics records every request under its route template, so ids do not
// explode label cardinality.
func Metrics(m metrics.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		m.ObserveRequest(c.Request.Method, routeOf(c), c.Writer.Status(), time.Since(start))
	}
}
