// Package logging writes request scoped log lines in the
// "[level] request_id=... operation=..." form shared by every service.
package logging

import (
	"context"
	"log"
	"strings"
	"sync/atomic"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var minLevel atomic.Int32

func init() { minLevel.Store(int32(LevelInfo)) }

// SetLevel sets the lowest level that is written. Unknown names mean info.
func SetLevel(name string) {
	minLevel.Store(int32(ParseLevel(name)))
}

func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

func enabled(l Level) bool { return int32(l) >= minLevel.Load() }

type requestIDKey struct{}

// WithRequestID stores the request id on ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}

// Logger tags every line with the request id it was created for.
type Logger struct {
	requestID string
}

// New creates a logger for ctx. Contexts without a request id (cron jobs,
// MCP calls) are logged as "-".
func New(ctx context.Context) *Logger {
	rid := RequestID(ctx)
	if rid == "" {
		rid = "-"
	}
	return &Logger{requestID: rid}
}

func (l *Logger) Debugf(operation, format string, args ...any) {
	l.printf(LevelDebug, "debug", operation, format, args...)
}

func (l *Logger) Info(operation, message string) {
	l.printf(LevelInfo, "info", operation, "message=%s", message)
}

func (l *Logger) Infof(operation, format string, args ...any) {
	l.printf(LevelInfo, "info", operation, format, args...)
}

func (l *Logger) Warn(operation, message string) {
	l.printf(LevelWarn, "warn", operation, "message=%s", message)
}

func (l *Logger) Warnf(operation, format string, args ...any) {
	l.printf(LevelWarn, "warn", operation, format, args...)
}

func (l *Logger) Error(operation string, err error) {
	l.printf(LevelError, "error", operation, "error=%v", err)
}

func (l *Logger) Errorf(operation, format string, args ...any) {
	l.printf(LevelError, "error", operation, format, args...)
}

func (l *Logger) printf(level Level, tag, operation, format string, args ...any) {
	if !enabled(level) {
		return
	}
	log.Printf("["+tag+"] request_id=%s operation=%s "+format,
		append([]any{l.requestID, operation}, args...)...)
}
