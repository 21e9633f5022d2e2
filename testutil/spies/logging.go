package spies

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// LogRecord is one captured log call.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// Attr returns the attribute key of the record.
func (r LogRecord) Attr(key string) (any, bool) {
	v, ok := r.Attrs[key]
	return v, ok
}

type logBook struct {
	mu      sync.Mutex
	records []LogRecord
}

func (b *logBook) add(record LogRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.records = append(b.records, record)
}

// Records returns a copy of all captured records.
func (b *logBook) Records() []LogRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]LogRecord, len(b.records))
	copy(out, b.records)

	return out
}

// Find returns the first record at level with message msg.
func (b *logBook) Find(level slog.Level, msg string) (LogRecord, bool) {
	for _, r := range b.Records() {
		if r.Level == level && r.Message == msg {
			return r, true
		}
	}

	return LogRecord{}, false
}

func (b *logBook) HasDebug(msg string) bool {
	_, ok := b.Find(slog.LevelDebug, msg)
	return ok
}

func (b *logBook) HasInfo(msg string) bool {
	_, ok := b.Find(slog.LevelInfo, msg)
	return ok
}

func (b *logBook) HasWarn(msg string) bool {
	_, ok := b.Find(slog.LevelWarn, msg)
	return ok
}

func (b *logBook) HasError(msg string) bool {
	_, ok := b.Find(slog.LevelError, msg)
	return ok
}

// LogHandlerSpy is a slog.Handler capturing every record. Wrap it with slog.New to get a Logger.
type LogHandlerSpy struct {
	logBook
	logToStdout bool
}

// NewLogHandlerSpy creates the handler. With logToStdout the records are also printed as JSON,
// which helps when debugging a failing test.
func NewLogHandlerSpy(logToStdout bool) *LogHandlerSpy {
	return &LogHandlerSpy{logToStdout: logToStdout}
}

func (s *LogHandlerSpy) Handle(ctx context.Context, record slog.Record) error {
	attrs := map[string]any{}
	record.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	s.add(LogRecord{Level: record.Level, Message: record.Message, Attrs: attrs})

	if s.logToStdout {
		return slog.NewJSONHandler(os.Stdout, nil).Handle(ctx, record)
	}

	return nil
}

func (s *LogHandlerSpy) Enabled(context.Context, slog.Level) bool { return true }
func (s *LogHandlerSpy) WithAttrs([]slog.Attr) slog.Handler      { return s }
func (s *LogHandlerSpy) WithGroup(string) slog.Handler           { return s }

// ContextualLoggerSpy implements the contextual logger interface directly.
type ContextualLoggerSpy struct {
	logBook
}

func NewContextualLoggerSpy() *ContextualLoggerSpy {
	return &ContextualLoggerSpy{}
}

func (l *ContextualLoggerSpy) DebugContext(_ context.Context, msg string, args ...any) {
	l.add(LogRecord{Level: slog.LevelDebug, Message: msg, Attrs: argsToAttrs(args)})
}

func (l *ContextualLoggerSpy) InfoContext(_ context.Context, msg string, args ...any) {
	l.add(LogRecord{Level: slog.LevelInfo, Message: msg, Attrs: argsToAttrs(args)})
}

func (l *ContextualLoggerSpy) WarnContext(_ context.Context, msg string, args ...any) {
	l.add(LogRecord{Level: slog.LevelWarn, Message: msg, Attrs: argsToAttrs(args)})
}

func (l *ContextualLoggerSpy) ErrorContext(_ context.Context, msg string, args ...any) {
	l.add(LogRecord{Level: slog.LevelError, Message: msg, Attrs: argsToAttrs(args)})
}

func argsToAttrs(args []any) map[string]any {
	attrs := map[string]any{}

	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			attrs[key] = args[i+1]
		}
	}

	return attrs
}
