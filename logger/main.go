package logger

import (
	"context"

	"github.com/hyperdxio/opentelemetry-go/otelzap"
	sdk "github.com/hyperdxio/opentelemetry-logs-go/sdk/logs"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "introspeech"

type LoggerConnectProps struct {
	Production     bool
	LoggerProvider *sdk.LoggerProvider
	// Core overrides the zap core. Tests use it to capture log entries.
	Core zapcore.Core
}

type LogMiddleware struct {
	logger *zap.Logger
}

func Connect(args LoggerConnectProps) *LogMiddleware {
	var logger *zap.Logger

	switch {
	case args.Core != nil:
		logger = zap.New(args.Core)
	case args.Production && args.LoggerProvider != nil:
		logger = zap.New(otelzap.NewOtelCore(args.LoggerProvider))
		zap.ReplaceGlobals(logger)
		logger.Info("[Logger] Starting Logger with Prod Config")
	case args.Production:
		logger, _ = zap.NewProduction()
	default:
		logger, _ = zap.NewDevelopment()
	}

	return &LogMiddleware{logger: logger.With(zap.String("service", serviceName))}
}

// Logger returns the base logger, annotated with the trace and span ids of
// the span carried by ctx when there is one.
func (l *LogMiddleware) Logger(ctx context.Context) *zap.Logger {
	spanContext := trace.SpanContextFromContext(ctx)
	if !spanContext.IsValid() {
		return l.logger
	}

	return l.logger.With(
		zap.String("trace_id", spanContext.TraceID().String()),
		zap.String("span_id", spanContext.SpanID().String()),
	)
}

func (l *LogMiddleware) Sync() error {
	return l.logger.Sync()
}
