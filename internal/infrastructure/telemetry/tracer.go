// Package telemetry wires OpenTelemetry traces, metrics and logs plus
// Pyroscope profiling for the invoice service.
package telemetry

import (
	"context"
	"fmt"
	"sync/atomic"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Config enables tracing. SamplingRatio applies to new root spans only.
type Config struct {
	Enabled bool
	Endpoint
	SamplingRatio float64
}

// TracerProvider is the process-wide span pipeline.
type TracerProvider struct {
	lifecycle
	provider     *sdktrace.TracerProvider
	config       Config
	spanProfiles atomic.Bool
}

// NewTracerProvider registers a batching OTLP provider globally when
// cfg.Enabled. The W3C propagator is installed either way so inbound trace
// headers still reach the logs.
func NewTracerProvider(ctx context.Context, cfg Config, logger *zap.Logger) (*TracerProvider, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	tp := &TracerProvider{lifecycle: lifecycle{signal: "traces", logger: logger}, config: cfg}
	if !cfg.Enabled {
		logger.Info("Tracing disabled")
		return tp, nil
	}

	exporter, err := newSpanExporter(ctx, cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	res, err := cfg.resource()
	if err != nil {
		return nil, err
	}
	tp.provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(cfg.SamplingRatio)),
	)
	tp.sdk = tp.provider
	otel.SetTracerProvider(tp.provider)

	logger.Info("Tracing initialized",
		zap.String("collector_endpoint", cfg.Address),
		zap.String("protocol", cfg.Protocol),
		zap.Float64("sampling_ratio", cfg.SamplingRatio),
	)
	return tp, nil
}

func newSpanExporter(ctx context.Context, e Endpoint) (sdktrace.SpanExporter, error) {
	if e.overHTTP() {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(e.Address)}
		if e.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	}
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(e.Address)}
	if e.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	return otlptracegrpc.New(ctx, opts...)
}

// samplerFor keeps the caller's decision for propagated traces so one export
// is never split across sampled and dropped spans.
func samplerFor(ratio float64) sdktrace.Sampler {
	root := sdktrace.TraceIDRatioBased(ratio)
	switch {
	case ratio >= 1:
		root = sdktrace.AlwaysSample()
	case ratio <= 0:
		root = sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(root)
}

// EnableSpanProfiles labels CPU samples with the active span id, linking a
// slow export span to its flame graph. It needs a running profiler.
func (tp *TracerProvider) EnableSpanProfiles() error {
	if tp.provider == nil {
		return nil
	}
	if tp.spanProfiles.CompareAndSwap(false, true) {
		otel.SetTracerProvider(otelpyroscope.NewTracerProvider(tp.provider))
		tp.logger.Info("Span profiles enabled")
	}
	return nil
}

func (tp *TracerProvider) IsSpanProfilesEnabled() bool {
	return tp.spanProfiles.Load()
}

// Tracer falls back to the global provider while tracing is disabled.
func (tp *TracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if tp.provider == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return tp.provider.Tracer(name, opts...)
}

func (tp *TracerProvider) IsEnabled() bool {
	return tp.config.Enabled && tp.started()
}
