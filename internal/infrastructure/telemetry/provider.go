package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// ServiceVersion is reported on every exported signal
const ServiceVersion = "1.0.0"

// OTLP transports
const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http"
)

const shutdownTimeout = 10 * time.Second

// Endpoint is the collector all signals push to and the service identity
// they report.
type Endpoint struct {
	Address     string
	Protocol    string
	Insecure    bool
	ServiceName string
	Environment string
}

func (e Endpoint) overHTTP() bool {
	return strings.EqualFold(e.Protocol, ProtocolHTTP)
}

func (e Endpoint) resource() (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(e.ServiceName),
		semconv.ServiceVersion(ServiceVersion),
	}
	if e.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironmentName(e.Environment))
	}
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(semconv.SchemaURL, attrs...))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

type flusher interface {
	Shutdown(ctx context.Context) error
	ForceFlush(ctx context.Context) error
}

// lifecycle is embedded by each signal's provider. sdk stays nil while the
// signal is disabled, turning both calls into no-ops.
type lifecycle struct {
	signal string
	sdk    flusher
	logger *zap.Logger
}

// Shutdown flushes what is buffered and closes the exporter, giving up after
// shutdownTimeout.
func (l *lifecycle) Shutdown(ctx context.Context) error {
	if l.sdk == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := l.sdk.Shutdown(ctx); err != nil {
		l.logger.Error("Telemetry shutdown failed", zap.String("signal", l.signal), zap.Error(err))
		return fmt.Errorf("failed to shutdown %s provider: %w", l.signal, err)
	}
	l.logger.Info("Telemetry signal shut down", zap.String("signal", l.signal))
	return nil
}

func (l *lifecycle) ForceFlush(ctx context.Context) error {
	if l.sdk == nil {
		return nil
	}
	return l.sdk.ForceFlush(ctx)
}

func (l *lifecycle) started() bool { return l.sdk != nil }
