// Package logger provides the structured application logger.
package logger

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Level represents a logging severity.
type Level slog.Level

// Severities supported by the logger.
const (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// TraceIDFn extracts a trace ID from the context for log correlation.
type TraceIDFn func(ctx context.Context) string

// Logger writes JSON records with the service name and, when available,
// the current trace ID attached.
type Logger struct {
	handler   slog.Handler
	traceIDFn TraceIDFn
}

// New constructs a Logger writing to w at the given minimum level.
func New(w io.Writer, minLevel Level, serviceName string, traceIDFn TraceIDFn) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.Level(minLevel)})
	attrs := []slog.Attr{slog.String("service", serviceName)}
	return &Logger{
		handler:   handler.WithAttrs(attrs),
		traceIDFn: traceIDFn,
	}
}

// Debug logs at debug level.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelDebug, msg, args...)
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelInfo, msg, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelWarn, msg, args...)
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelError, msg, args...)
}

func (l *Logger) write(ctx context.Context, level Level, msg string, args ...any) {
	slogLevel := slog.Level(level)
	if !l.handler.Enabled(ctx, slogLevel) {
		return
	}

	if l.traceIDFn != nil {
		if id := l.traceIDFn(ctx); id != "" {
			args = append(args, "trace_id", id)
		}
	}

	r := slog.NewRecord(time.Now(), slogLevel, msg, 0)
	r.Add(args...)
	_ = l.handler.Handle(ctx, r)
}
