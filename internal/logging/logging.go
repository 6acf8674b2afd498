package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu            sync.Mutex
	defaultLogger *slog.Logger
)

// Init configures the process logger. Unknown levels fall back to info.
func Init(level string, json bool) {
	InitTo(os.Stdout, level, json)
}

// InitTo is Init with an explicit destination.
func InitTo(w io.Writer, level string, json bool) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	mu.Lock()
	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
	mu.Unlock()
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Get returns the process logger, initialising it at info level on first use.
func Get() *slog.Logger {
	mu.Lock()
	l := defaultLogger
	mu.Unlock()
	if l == nil {
		Init("info", false)
		return Get()
	}
	return l
}

// Info logs at info level
func Info(msg string, args ...any) { Get().Info(msg, args...) }

// Debug logs at debug level
func Debug(msg string, args ...any) { Get().Debug(msg, args...) }

// Warn logs at warn level
func Warn(msg string, args ...any) { Get().Warn(msg, args...) }

// Error logs at error level
func Error(msg string, args ...any) { Get().Error(msg, args...) }

// With returns a logger with the given attributes
func With(args ...any) *slog.Logger { return Get().With(args...) }

// Debugf logs a formatted debug message when the debug level is enabled.
func Debugf(format string, v ...any) {
	l := Get()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.Debug(fmt.Sprintf(format, v...))
}
