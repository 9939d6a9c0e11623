// Package middleware holds the gin middleware in front of the invoicing API:
// request ids, sessions, limits, security headers and the telemetry hooks.
package middleware

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/invoicesxpert/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	requestSizeBuckets = []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000}
	// PDFs and previews dominate the upper buckets
	responseSizeBuckets = []float64{100, 1000, 10000, 100000, 500000, 1000000, 5000000, 20000000}
)

type httpInstruments struct {
	total    *telemetry.Counter
	duration *telemetry.Histogram
	reqSize  *telemetry.Histogram
	respSize *telemetry.Histogram
	inFlight *telemetry.UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	var errs []error
	track := func(err error) { errs = append(errs, err) }

	in := &httpInstruments{}
	var err error
	in.total, err = telemetry.NewCounter(meter, "http_server_request_total", "Total number of HTTP requests", "{request}")
	track(err)
	in.duration, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency distribution in seconds",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	track(err)
	in.reqSize, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_size_bytes",
		Description: "HTTP request body size distribution in bytes",
		Unit:        "By",
		Boundaries:  requestSizeBuckets,
	})
	track(err)
	in.respSize, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_response_size_bytes",
		Description: "HTTP response body size distribution in bytes",
		Unit:        "By",
		Boundaries:  responseSizeBuckets,
	})
	track(err)
	in.inFlight, err = telemetry.NewUpDownCounter(meter, "http_server_active_requests", "Number of in-flight HTTP requests", "{request}")
	track(err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return in, nil
}

// HTTPMetrics records request count, latency, body sizes and in-flight
// requests. It passes requests straight through when provider is nil or
// disabled.
func HTTPMetrics(provider *telemetry.MeterProvider) gin.HandlerFunc {
	if provider == nil || !provider.IsEnabled() {
		return passThrough
	}
	return HTTPMetricsWithMeter(provider.Meter("http.server"))
}

// HTTPMetricsWithMeter is HTTPMetrics on an explicit meter. A nil meter
// disables it.
func HTTPMetricsWithMeter(meter metric.Meter) gin.HandlerFunc {
	if meter == nil {
		return passThrough
	}
	in, err := newHTTPInstruments(meter)
	if err != nil {
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		in.inFlight.Add(ctx, 1)
		c.Next()
		in.inFlight.Add(ctx, -1)

		// route pattern and method only; status and owner go on the counter
		series := []attribute.KeyValue{
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(routePattern(c)),
		}
		counted := append(series[:len(series):len(series)], telemetry.AttrHTTPStatusCode.Int(c.Writer.Status()))
		if owner := c.GetString(OwnerIDKey); owner != "" {
			counted = append(counted, telemetry.AttrOwnerID.String(owner))
		}

		in.total.Inc(ctx, counted...)
		in.duration.RecordDuration(ctx, time.Since(start), series...)
		if n := c.Request.ContentLength; n > 0 {
			in.reqSize.Record(ctx, float64(n), series...)
		}
		if n := c.Writer.Size(); n > 0 {
			in.respSize.Record(ctx, float64(n), series...)
		}
	}
}

func passThrough(c *gin.Context) {
	c.Next()
}

// routePattern keeps metric cardinality bounded: /api/v1/invoices/:id, not
// the concrete id.
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}
