package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig configures the server span middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// SkipPaths get no server span, e.g. the probes
	SkipPaths []string
}

// Tracing opens a server span per request via otelgin. Spans are named
// "METHOD route", e.g. "GET /api/v1/invoices/:id/pdf".
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passThrough
	}
	var opts []otelgin.Option
	if len(cfg.SkipPaths) > 0 {
		skip := slices.Clone(cfg.SkipPaths)
		opts = append(opts, otelgin.WithFilter(func(r *http.Request) bool {
			return !slices.Contains(skip, r.URL.Path)
		}))
	}
	return otelgin.Middleware(cfg.ServiceName, opts...)
}

// SpanStatus runs inside the server span. It tags the span with the
// request id and marks 4xx and 5xx responses as errors. Owner ids are added
// by Session, which runs later in the chain.
func SpanStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}
		if id := GetRequestID(c); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}

		c.Next()

		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			span.SetAttributes(attribute.Int("http.status_code", status))
			span.SetStatus(codes.Error, spanStatusMessage(status))
		}
	}
}

func spanStatusMessage(status int) string {
	if status >= http.StatusInternalServerError {
		return "Internal Server Error"
	}
	switch status {
	case http.StatusNotFound, http.StatusConflict, http.StatusTooManyRequests:
		return http.StatusText(status)
	default:
		return "Client Error"
	}
}
