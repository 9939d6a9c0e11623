package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer sets up a test tracer provider and returns the span recorder.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})

	return sr
}

func findSpan(sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	return nil
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, attr := range span.Attributes() {
		if string(attr.Key) == key {
			return attr.Value.Emit(), true
		}
	}
	return "", false
}

func tracedRouter(cfg TracingConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(Tracing(cfg))
	router.Use(SpanStatus())
	return router
}

func TestTracing_Disabled(t *testing.T) {
	sr := setupTestTracer(t)
	router := tracedRouter(TracingConfig{Enabled: false, ServiceName: "test-service"})
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_SkipPaths(t *testing.T) {
	sr := setupTestTracer(t)
	router := tracedRouter(TracingConfig{Enabled: true, ServiceName: "test-service", SkipPaths: []string{"/health"}})
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api", nil))

	assert.Nil(t, findSpan(sr, "GET /health"))
	assert.NotNil(t, findSpan(sr, "GET /api"))
}

func TestTracing_RequestAndOwnerAttributes(t *testing.T) {
	sr := setupTestTracer(t)
	router := tracedRouter(TracingConfig{Enabled: true, ServiceName: "test-service"})
	router.GET("/test", Session(), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-ID", "test-request-id-123")
	req.Header.Set(OwnerHeaderKey, "studio-7")
	router.ServeHTTP(httptest.NewRecorder(), req)

	span := findSpan(sr, "GET /test")
	require.NotNil(t, span, "HTTP span not found")

	requestID, ok := spanAttr(span, "request_id")
	require.True(t, ok)
	assert.Equal(t, "test-request-id-123", requestID)

	owner, ok := spanAttr(span, "owner_id")
	require.True(t, ok)
	assert.Equal(t, "studio-7", owner)
}

func TestSpanStatus_ClientErrors(t *testing.T) {
	tests := []struct {
		status      int
		description string
	}{
		{http.StatusNotFound, "Not Found"},
		{http.StatusConflict, "Conflict"},
		{http.StatusTooManyRequests, "Too Many Requests"},
		{http.StatusBadRequest, "Client Error"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			sr := setupTestTracer(t)
			router := tracedRouter(TracingConfig{Enabled: true, ServiceName: "test-service"})
			router.GET("/test", func(c *gin.Context) { c.Status(tt.status) })

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))

			span := findSpan(sr, "GET /test")
			require.NotNil(t, span)
			assert.Equal(t, codes.Error, span.Status().Code)
			assert.Equal(t, tt.description, span.Status().Description)
			code, ok := spanAttr(span, "http.status_code")
			require.True(t, ok)
			assert.Equal(t, strconv.Itoa(tt.status), code)
		})
	}
}

func TestSpanStatus_ServerError(t *testing.T) {
	sr := setupTestTracer(t)
	router := tracedRouter(TracingConfig{Enabled: true, ServiceName: "test-service"})
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))

	span := findSpan(sr, "GET /test")
	require.NotNil(t, span)
	assert.Equal(t, codes.Error, span.Status().Code)
}

func TestSpanStatus_Success(t *testing.T) {
	sr := setupTestTracer(t)
	router := tracedRouter(TracingConfig{Enabled: true, ServiceName: "test-service"})
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))

	span := findSpan(sr, "GET /test")
	require.NotNil(t, span)
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestSpanStatus_WithoutSpan(t *testing.T) {
	router := gin.New()
	router.Use(SpanStatus())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetRequestID_LongHeader_Truncated(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("X-Request-ID", strings.Repeat("x", MaxRequestIDLength+50))

	assert.Len(t, GetRequestID(c), MaxRequestIDLength)
}
