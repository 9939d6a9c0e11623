package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrLogsOverHTTP is returned when logs are enabled with the http protocol;
// the log exporter is gRPC only.
var ErrLogsOverHTTP = errors.New("OTLP log export requires the grpc protocol")

type LogsConfig struct {
	Enabled bool
	Endpoint
}

// LoggerProvider batches log records for the collector.
type LoggerProvider struct {
	lifecycle
	provider *sdklog.LoggerProvider
}

func NewLoggerProvider(ctx context.Context, cfg LogsConfig, logger *zap.Logger) (*LoggerProvider, error) {
	lp := &LoggerProvider{lifecycle: lifecycle{signal: "logs", logger: logger}}
	if !cfg.Enabled {
		return lp, nil
	}
	if cfg.overHTTP() {
		return nil, ErrLogsOverHTTP
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.Address)}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP logs exporter: %w", err)
	}
	res, err := cfg.resource()
	if err != nil {
		return nil, err
	}
	lp.provider = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	lp.sdk = lp.provider
	global.SetLoggerProvider(lp.provider)
	logger.Info("Log export initialized", zap.String("collector_endpoint", cfg.Address))
	return lp, nil
}

func (lp *LoggerProvider) IsEnabled() bool { return lp.started() }

// Core returns a zap core that forwards entries at min or above to the
// collector, or a no-op core while log export is off. Pass it to logger.New.
func (lp *LoggerProvider) Core(serviceName string, min zapcore.Level) zapcore.Core {
	if lp == nil || lp.provider == nil {
		return zapcore.NewNopCore()
	}
	return &minLevelCore{
		Core: otelzap.NewCore(serviceName, otelzap.WithLoggerProvider(lp.provider)),
		min:  min,
	}
}

// minLevelCore filters the bridge, which forwards every level on its own.
type minLevelCore struct {
	zapcore.Core
	min zapcore.Level
}

func (c *minLevelCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.min && c.Core.Enabled(lvl)
}

func (c *minLevelCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(entry.Level) {
		return ce
	}
	return c.Core.Check(entry, ce)
}

func (c *minLevelCore) With(fields []zapcore.Field) zapcore.Core {
	return &minLevelCore{Core: c.Core.With(fields), min: c.min}
}
