package flatsite

import (
	"io"
	"log/slog"
	"os"
)

// Logger provides structured logging for builds and the preview server.
type Logger struct {
	slog *slog.Logger
}

// NewLogger creates a Logger that writes JSON to stdout at INFO level.
func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout, slog.LevelInfo)
}

// NewLoggerTo creates a Logger that writes JSON to w, dropping records below
// level.
func NewLoggerTo(w io.Writer, level slog.Level) *Logger {
	return &Logger{
		slog: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})),
	}
}

// Discard returns a Logger that drops every record.
func Discard() *Logger {
	return &Logger{slog: slog.New(slog.NewJSONHandler(io.Discard, nil))}
}

// Info logs at INFO level.
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// Warn logs at WARN level.
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

// Error logs at ERROR level.
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}

// Debug logs at DEBUG level.
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

// With returns a new Logger with the given key-value pairs attached to every log entry.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

// Slog exposes the underlying *slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}
