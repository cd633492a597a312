package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/voicewatch-backend/internal/observability"
)

// probeRoutes are scraped constantly and would drown the API series.
var probeRoutes = map[string]bool{
	"/healthcheck": true,
	"/readyz":      true,
	"/metrics":     true,
}

// Metrics records request count, latency and in-flight gauge per route template.
// Unmatched paths share one label so scanners cannot blow up cardinality.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if probeRoutes[route] {
			c.Next()
			return
		}

		start := time.Now()
		m.ApiInflightInc()
		c.Next()
		m.ApiInflightDec()

		if route == "" {
			route = "unmatched"
		}
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
