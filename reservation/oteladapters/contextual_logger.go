package oteladapters

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/equiprent/reservation-engine/reservation"
)

const (
	logAttrTraceID = "trace_id"
	logAttrSpanID  = "span_id"
)

var (
	_ reservation.ContextualLogger = (*SlogBridgeLogger)(nil)
	_ reservation.ContextualLogger = (*OTelLogger)(nil)
)

// SlogBridgeLogger is a contextual logger on log/slog.
type SlogBridgeLogger struct {
	logger         *slog.Logger
	addTraceFields bool
}

// NewSlogBridgeLogger sends records through the otelslog bridge to the global LoggerProvider.
// The bridge correlates records with the span in the context by itself.
func NewSlogBridgeLogger(name string) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: otelslog.NewLogger(name)}
}

// NewSlogBridgeLoggerWithHandler logs to handler and adds trace_id and span_id attributes
// whenever the context carries a valid span.
func NewSlogBridgeLoggerWithHandler(handler slog.Handler) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: slog.New(handler), addTraceFields: true}
}

func (l *SlogBridgeLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, l.withTrace(ctx, args)...)
}

func (l *SlogBridgeLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, l.withTrace(ctx, args)...)
}

func (l *SlogBridgeLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, l.withTrace(ctx, args)...)
}

func (l *SlogBridgeLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, l.withTrace(ctx, args)...)
}

func (l *SlogBridgeLogger) withTrace(ctx context.Context, args []any) []any {
	if !l.addTraceFields {
		return args
	}

	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return args
	}

	return append(args, logAttrTraceID, spanCtx.TraceID().String(), logAttrSpanID, spanCtx.SpanID().String())
}

// OTelLogger emits records through the OpenTelemetry log API directly.
type OTelLogger struct {
	logger log.Logger
}

// NewOTelLogger creates an OTelLogger on a logger from your LoggerProvider.
func NewOTelLogger(logger log.Logger) *OTelLogger {
	return &OTelLogger{logger: logger}
}

func (l *OTelLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityDebug, msg, args...)
}

func (l *OTelLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityInfo, msg, args...)
}

func (l *OTelLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityWarn, msg, args...)
}

func (l *OTelLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityError, msg, args...)
}

// emit turns slog-style key/value pairs into typed log attributes. A dangling key is dropped.
func (l *OTelLogger) emit(ctx context.Context, severity log.Severity, msg string, args ...any) {
	record := log.Record{}
	record.SetSeverity(severity)
	record.SetSeverityText(severityText(severity))
	record.SetBody(log.StringValue(msg))

	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}

		record.AddAttributes(toLogAttribute(key, args[i+1]))
	}

	l.logger.Emit(ctx, record)
}

func toLogAttribute(key string, value any) log.KeyValue {
	switch v := value.(type) {
	case string:
		return log.String(key, v)
	case int:
		return log.Int(key, v)
	case int64:
		return log.Int64(key, v)
	case uint64:
		return log.Int64(key, int64(v))
	case float64:
		return log.Float64(key, v)
	case bool:
		return log.Bool(key, v)
	default:
		return log.String(key, slog.AnyValue(v).String())
	}
}

func severityText(severity log.Severity) string {
	switch severity {
	case log.SeverityDebug:
		return "DEBUG"
	case log.SeverityInfo:
		return "INFO"
	case log.SeverityWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}
