// Package logger provides the structured logger memfs uses for its
// DEBUG-level per-operation tracing and WARNING-level pool-exhaustion
// diagnostics: log/slog with two extra severities layered on top of the
// four built in, and an optional rotated file sink.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Severity levels: TRACE/DEBUG/INFO/WARNING/ERROR. slog.LevelInfo/Warn/Error
// already exist; TRACE and WARNING are the two non-standard ones, defined
// relative to slog's built-ins.
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelWarn:  "WARNING",
}

// Config selects the logger's output shape.
type Config struct {
	// Format is "json" or "text". Anything else defaults to "text".
	Format string
	// Level is the minimum severity that gets emitted.
	Level slog.Level
	// FilePath, when non-empty, rotates output through lumberjack
	// instead of writing to Stderr.
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New builds a *slog.Logger per cfg.
func New(cfg Config) *slog.Logger {
	return slog.New(createJsonOrTextHandler(sink(cfg), cfg))
}

func sink(cfg Config) io.Writer {
	if cfg.FilePath == "" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    orDefault(cfg.MaxSizeMB, 100),
		MaxBackups: orDefault(cfg.MaxBackups, 3),
		MaxAge:     orDefault(cfg.MaxAgeDays, 28),
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func createJsonOrTextHandler(w io.Writer, cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: cfg.Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				level := a.Value.Any().(slog.Level)
				if name, ok := levelNames[level]; ok {
					a.Value = slog.StringValue(name)
				}
			}
			return a
		},
	}

	if cfg.Format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Noop returns a logger that discards everything, used as the default
// when a Filesystem is constructed without an explicit *slog.Logger.
func Noop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: LevelError + 1}))
}

// Trace logs at the TRACE level, below slog's built-in Debug.
func Trace(ctx context.Context, l *slog.Logger, msg string, args ...any) {
	l.Log(ctx, LevelTrace, msg, args...)
}

// Warning logs at the WARNING level (an alias of slog.LevelWarn, kept to
// complete the five-name severity vocabulary).
func Warning(ctx context.Context, l *slog.Logger, msg string, args ...any) {
	l.Log(ctx, LevelWarn, msg, args...)
}
