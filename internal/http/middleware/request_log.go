package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/voicewatch-backend/internal/platform/ctxutil"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

// RequestLogger writes one line per request. 5xx log at error, 4xx at warn, health probes at debug.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log = log.With("Middleware", "RequestLogger")

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", status,
			"bytes", c.Writer.Size(),
			"client_ip", c.ClientIP(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		fields = append(fields, ctxutil.LogFields(c.Request.Context())...)
		if sub := c.GetString(ContextSubject); sub != "" {
			fields = append(fields, "subject", sub)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("request failed", fields...)
		case status >= 400:
			log.Warn("request rejected", fields...)
		case probeRoutes[route]:
			log.Debug("probe", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
