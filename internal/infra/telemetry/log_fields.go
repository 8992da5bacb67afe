package telemetry

import (
	"time"

	"go.uber.org/zap"
)

const (
	FieldEvent      = "event"
	FieldTool       = "tool"
	FieldOperation  = "operation"
	FieldURI        = "uri"
	FieldStatus     = "status"
	FieldDurationMs = "duration_ms"
	FieldRequestID  = "request_id"
	FieldTraceID    = "trace_id"
	FieldSpanID     = "span_id"
)

const (
	EventToolCall     = "tool_call"
	EventToolFailure  = "tool_failure"
	EventToolPanic    = "tool_panic"
	EventResourceRead = "resource_read"
	EventAPIRetry     = "api_retry"
)

func EventField(event string) zap.Field {
	return zap.String(FieldEvent, event)
}

func ToolField(name string) zap.Field {
	return zap.String(FieldTool, name)
}

func OperationField(op string) zap.Field {
	return zap.String(FieldOperation, op)
}

func URIField(uri string) zap.Field {
	return zap.String(FieldURI, uri)
}

func StatusField(status int) zap.Field {
	return zap.Int(FieldStatus, status)
}

func DurationField(duration time.Duration) zap.Field {
	return zap.Int64(FieldDurationMs, duration.Milliseconds())
}

func RequestIDField(value string) zap.Field {
	return zap.String(FieldRequestID, value)
}

func TraceIDField(value string) zap.Field {
	return zap.String(FieldTraceID, value)
}

func SpanIDField(value string) zap.Field {
	return zap.String(FieldSpanID, value)
}
