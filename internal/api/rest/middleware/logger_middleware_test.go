package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/hanssonfredrik/customers/pkg/logger"
)

func TestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		target string
		status int
		level  string
		route  string
	}{
		{name: "ok", target: "/customers/7?x=1", status: http.StatusOK, level: "[INFO]", route: "route=/customers/:id"},
		{name: "client error", target: "/customers/8", status: http.StatusConflict, level: "[WARN]", route: "route=/customers/:id"},
		{name: "server error", target: "/customers/9", status: http.StatusInternalServerError, level: "[ERROR]", route: "route=/customers/:id"},
		{name: "no route", target: "/nowhere", status: http.StatusNotFound, level: "[WARN]", route: "route=unmatched"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := gin.New()
			r.Use(RequestID(), LoggerMiddleware(logger.NewWithOutput(logger.DEBUG, &buf)))
			r.GET("/customers/:id", func(c *gin.Context) {
				c.String(tt.status, "body")
			})

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			req.Header.Set(RequestIDHeader, "rid-1")
			r.ServeHTTP(httptest.NewRecorder(), req)

			out := buf.String()
			assert.Contains(t, out, tt.level)
			assert.Contains(t, out, "[GET] "+tt.target)
			assert.Contains(t, out, tt.route)
			assert.Contains(t, out, "rid=rid-1")
		})
	}
}
