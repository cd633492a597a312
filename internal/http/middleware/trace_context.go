package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/voicewatch-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	maxCorrelationIDLen = 128
)

// AttachTraceContext stores trace and request ids on the request context so every log line
// for the request can carry them, and echoes both back as response headers.
// An active OpenTelemetry span wins over an inbound X-Trace-Id so logs join exported traces.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		td := &ctxutil.TraceData{RequestID: correlationID(c.GetHeader(headerRequestID))}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			td.TraceID = sc.TraceID().String()
		} else {
			td.TraceID = correlationID(c.GetHeader(headerTraceID))
		}

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Writer.Header().Set(headerTraceID, td.TraceID)
		c.Writer.Header().Set(headerRequestID, td.RequestID)
		c.Next()
	}
}

// correlationID accepts a caller-supplied id when it is short and printable,
// otherwise mints a fresh one.
func correlationID(in string) string {
	in = strings.TrimSpace(in)
	if in == "" || len(in) > maxCorrelationIDLen {
		return uuid.NewString()
	}
	for _, r := range in {
		if r < 0x21 || r > 0x7e {
			return uuid.NewString()
		}
	}
	return in
}
