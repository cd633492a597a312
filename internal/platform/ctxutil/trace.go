package ctxutil

import "context"

type traceDataKey struct{}

// TraceData carries request correlation ids through the pipeline and into log lines.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(Default(ctx), traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// LogFields returns trace_id/request_id key-values for the logger, or nil.
func LogFields(ctx context.Context) []interface{} {
	td := GetTraceData(ctx)
	if td == nil {
		return nil
	}
	out := make([]interface{}, 0, 4)
	if td.TraceID != "" {
		out = append(out, "trace_id", td.TraceID)
	}
	if td.RequestID != "" {
		out = append(out, "request_id", td.RequestID)
	}
	return out
}
