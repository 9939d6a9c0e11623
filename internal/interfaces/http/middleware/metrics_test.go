package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/invoicesxpert/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

// meteredRouter is a gin engine behind HTTPMetricsWithMeter whose
// instruments are read back through a manual reader.
type meteredRouter struct {
	*gin.Engine
	reader *sdkmetric.ManualReader
}

func newMeteredRouter(t *testing.T, before ...gin.HandlerFunc) *meteredRouter {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	r := &meteredRouter{Engine: gin.New(), reader: reader}
	r.Use(before...)
	r.Use(HTTPMetricsWithMeter(mp.Meter("http.server")))
	return r
}

func (r *meteredRouter) send(method, path string, body io.Reader, headers ...string) {
	req := httptest.NewRequest(method, path, body)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	r.ServeHTTP(httptest.NewRecorder(), req)
}

func (r *meteredRouter) metric(t *testing.T, name string) metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, r.reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m.Data
			}
		}
	}
	t.Fatalf("metric %s not recorded", name)
	return nil
}

func (r *meteredRouter) counter(t *testing.T, name string) []metricdata.DataPoint[int64] {
	t.Helper()
	sum, ok := r.metric(t, name).(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", name)
	return sum.DataPoints
}

func TestHTTPMetrics_DisabledProviders(t *testing.T) {
	disabled, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{}, zap.NewNop())
	require.NoError(t, err)

	for name, handler := range map[string]gin.HandlerFunc{
		"nil provider":      HTTPMetrics(nil),
		"disabled provider": HTTPMetrics(disabled),
		"nil meter":         HTTPMetricsWithMeter(nil),
	} {
		t.Run(name, func(t *testing.T) {
			router := gin.New()
			router.Use(handler)
			router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestHTTPMetrics_CountsByRoutePattern(t *testing.T) {
	r := newMeteredRouter(t)
	r.GET("/api/v1/invoices/:id", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"number": "INV-1"}) })

	for _, id := range []string{"a", "b", "c"} {
		r.send(http.MethodGet, "/api/v1/invoices/"+id, nil)
	}

	points := r.counter(t, "http_server_request_total")
	require.Len(t, points, 1)
	assert.Equal(t, int64(3), points[0].Value)
	route, ok := points[0].Attributes.Value("http.route")
	require.True(t, ok)
	assert.Equal(t, "/api/v1/invoices/:id", route.AsString())

	assert.NotNil(t, r.metric(t, "http_server_request_duration_seconds"))
	assert.NotNil(t, r.metric(t, "http_server_response_size_bytes"))
}

func TestHTTPMetrics_StatusCodesSplitSeries(t *testing.T) {
	r := newMeteredRouter(t)
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/busy", func(c *gin.Context) { c.Status(http.StatusConflict) })

	r.send(http.MethodGet, "/ok", nil)
	r.send(http.MethodGet, "/busy", nil)
	r.send(http.MethodGet, "/busy", nil)

	assert.Len(t, r.counter(t, "http_server_request_total"), 2)
}

func TestHTTPMetrics_OwnerOnCounter(t *testing.T) {
	r := newMeteredRouter(t, Session())
	r.GET("/api/v1/clients", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.send(http.MethodGet, "/api/v1/clients", nil, OwnerHeaderKey, "studio-7")

	points := r.counter(t, "http_server_request_total")
	require.Len(t, points, 1)
	owner, ok := points[0].Attributes.Value("owner_id")
	require.True(t, ok)
	assert.Equal(t, "studio-7", owner.AsString())
}

func TestHTTPMetrics_RequestSize(t *testing.T) {
	const body = `{"currency":"USD"}`
	r := newMeteredRouter(t)
	r.POST("/api/v1/invoices", func(c *gin.Context) { c.Status(http.StatusCreated) })

	r.send(http.MethodPost, "/api/v1/invoices", strings.NewReader(body))

	hist, ok := r.metric(t, "http_server_request_size_bytes").(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, float64(len(body)), hist.DataPoints[0].Sum)
}

func TestHTTPMetrics_InFlightReturnsToZero(t *testing.T) {
	r := newMeteredRouter(t)
	r.GET("/api/v1/invoices", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.send(http.MethodGet, "/api/v1/invoices", nil)

	points := r.counter(t, "http_server_active_requests")
	require.Len(t, points, 1)
	assert.Zero(t, points[0].Value)
}

func TestRoutePattern_Unmatched(t *testing.T) {
	router := gin.New()
	var route string
	router.NoRoute(func(c *gin.Context) {
		route = routePattern(c)
		c.Status(http.StatusNotFound)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing/path", nil))
	assert.Equal(t, "unknown", route)
}
