package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

// Context keys. RequestIDKey matches the gin key set by the request id
// middleware.
const (
	LoggerKey    contextKey = "logger"
	RequestIDKey contextKey = "request_id"
	OwnerIDKey   contextKey = "owner_id"
)

func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext never returns nil.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(LoggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}

// WithRequestID records the id on ctx and on the logger stored with it.
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	return withField(ctx, logger, RequestIDKey, requestID)
}

// WithOwnerID records the session owner on ctx and on the logger stored with it.
func WithOwnerID(ctx context.Context, logger *zap.Logger, ownerID string) (context.Context, *zap.Logger) {
	return withField(ctx, logger, OwnerIDKey, ownerID)
}

func withField(ctx context.Context, logger *zap.Logger, key contextKey, value string) (context.Context, *zap.Logger) {
	enriched := logger.With(zap.String(string(key), value))
	ctx = context.WithValue(ctx, key, value)
	return WithContext(ctx, enriched), enriched
}

func GetRequestID(ctx context.Context) string { return stringValue(ctx, RequestIDKey) }

func GetOwnerID(ctx context.Context) string { return stringValue(ctx, OwnerIDKey) }

func stringValue(ctx context.Context, key contextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// WithTraceContext adds trace_id and span_id when ctx carries a valid span.
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

// L returns the request logger stored in ctx with the active span attached.
// The request and owner fields are already on it.
//
//	logger.L(ctx).Info("export finished", zap.Int("pages", n))
func L(ctx context.Context) *zap.Logger {
	return WithTraceContext(ctx, FromContext(ctx))
}

// Enrich adds the correlation fields found in ctx to a logger that did not
// come from the request, such as a service's own logger.
func Enrich(ctx context.Context, l *zap.Logger) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	var fields []zap.Field
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String(string(RequestIDKey), id))
	}
	if owner := GetOwnerID(ctx); owner != "" {
		fields = append(fields, zap.String(string(OwnerIDKey), owner))
	}
	return WithTraceContext(ctx, l.With(fields...))
}
