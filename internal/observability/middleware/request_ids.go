package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type ctxKey string

const (
	CtxKeyRequestID ctxKey = "request_id"
	CtxKeyTraceID   ctxKey = "trace_id"

	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

// WithRequestAndTrace assigns request and trace ids (honouring inbound
// headers), echoes them on the response and logs one line per request.
func WithRequestAndTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		traceID := r.Header.Get(HeaderTraceID)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := ContextWithIDs(r.Context(), reqID, traceID)
		r = r.WithContext(ctx)

		w.Header().Set(HeaderRequestID, reqID)
		w.Header().Set(HeaderTraceID, traceID)

		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)

		slog.Default().InfoContext(ctx, "request",
			"request_id", reqID,
			"trace_id", traceID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", sr.status,
			"remote_ip", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func ContextWithIDs(ctx context.Context, requestID, traceID string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyRequestID, requestID)
	return context.WithValue(ctx, CtxKeyTraceID, traceID)
}

func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

func TraceIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyTraceID).(string); ok {
		return v
	}
	return ""
}

// LogAttrs returns the correlation ids of ctx as slog key/value pairs.
func LogAttrs(ctx context.Context) []any {
	return []any{"request_id", RequestIDFromContext(ctx), "trace_id", TraceIDFromContext(ctx)}
}
