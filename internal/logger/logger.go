// Package logger provides structured logging for the portal.
// It wraps log/slog with JSON output, request-scoped attributes taken from
// the context, and an optional Better Stack sink.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	slogbetterstack "github.com/samber/slog-betterstack"
)

// Logger is the application logger.
type Logger struct {
	*slog.Logger
	level  *slog.LevelVar
	remote *AsyncHandler
}

// Options configures NewWithOptions. Zero values mean stdout, info level and
// no remote shipping.
type Options struct {
	Level               string
	Writer              io.Writer
	BetterStackToken    string
	BetterStackEndpoint string
}

// New creates a JSON logger on stdout.
func New(level string) *Logger {
	return NewWithOptions(Options{Level: level})
}

// NewWithWriter creates a JSON logger writing to w.
func NewWithWriter(level string, w io.Writer) *Logger {
	return NewWithOptions(Options{Level: level, Writer: w})
}

// NewWithOptions builds the handler chain:
// ContextHandler -> MultiHandler(JSON, async Better Stack).
func NewWithOptions(opts Options) *Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))

	local := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       levelVar,
		ReplaceAttr: replaceAttr,
	})

	l := &Logger{level: levelVar}
	var handler slog.Handler = local
	if opts.BetterStackToken != "" {
		bs := slogbetterstack.Option{
			Level:    levelVar,
			Token:    opts.BetterStackToken,
			Endpoint: opts.BetterStackEndpoint,
			Timeout:  10 * time.Second,
		}.NewBetterstackHandler()
		l.remote = NewAsyncHandler(bs, AsyncOptions{})
		handler = NewMultiHandler(local, l.remote)
	}

	l.Logger = slog.New(NewContextHandler(handler))
	return l
}

func parseLevel(level string) slog.Level {
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

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "timestamp"
	case slog.LevelKey:
		a.Key = "level"
		lvl := a.Value.String()
		if lvl == "WARN" {
			lvl = "warning"
		}
		a.Value = slog.StringValue(strings.ToLower(lvl))
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}

func (l *Logger) derive(s *slog.Logger) *Logger {
	return &Logger{Logger: s, level: l.level, remote: l.remote}
}

// SetLevel changes the minimum level of this logger and all loggers derived from it.
func (l *Logger) SetLevel(level string) {
	l.level.Set(parseLevel(level))
}

// Level returns the current minimum level.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// WithModule creates a new entry with module field
func (l *Logger) WithModule(module string) *Logger {
	return l.derive(l.With("module", module))
}

// WithRequestID creates a new entry with request ID field
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.derive(l.With("request_id", requestID))
}

// WithError creates a new entry with error field
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.derive(l.With("error", err.Error()))
}

// WithField creates a new entry with a single field
func (l *Logger) WithField(key string, value any) *Logger {
	return l.derive(l.With(key, value))
}

// Shutdown flushes pending remote log records.
func (l *Logger) Shutdown(ctx context.Context) error {
	return l.remote.Shutdown(ctx)
}
