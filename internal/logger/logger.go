// Package logger provides structured logging for the application.
// It wraps log/slog with JSON formatting and optional shipping of records
// to Better Stack alongside the local stream.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogbetterstack "github.com/samber/slog-betterstack"
)

// Logger is the application logger
type Logger struct {
	*slog.Logger
}

// Options configures optional logger features.
type Options struct {
	// BetterStackToken enables remote log shipping when non-empty.
	BetterStackToken string
	// BetterStackEndpoint overrides the default ingesting endpoint.
	BetterStackEndpoint string
}

// New creates a new logger instance with JSON formatting
func New(level string) *Logger {
	return NewWithOptions(level, os.Stdout, Options{})
}

// NewWithWriter creates a new logger instance writing JSON to the provided writer
func NewWithWriter(level string, w io.Writer) *Logger {
	return NewWithOptions(level, w, Options{})
}

// NewWithOptions creates a logger writing JSON locally and, when a Better
// Stack token is configured, fanning records out to the remote handler too.
func NewWithOptions(level string, w io.Writer, opts Options) *Logger {
	logLevel := parseLevel(level)

	handlerOpts := &slog.HandlerOptions{
		Level: logLevel,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				a.Key = "timestamp"
			case slog.LevelKey:
				a.Key = "level"
				lvl := a.Value.String()
				if lvl == "WARN" {
					lvl = "warning"
				} else {
					lvl = strings.ToLower(lvl)
				}
				a.Value = slog.StringValue(lvl)
			case slog.MessageKey:
				a.Key = "message"
			}
			return a
		},
	}

	local := slog.NewJSONHandler(w, handlerOpts)

	if opts.BetterStackToken == "" {
		return &Logger{Logger: slog.New(local)}
	}

	remote := slogbetterstack.Option{
		Token:    opts.BetterStackToken,
		Endpoint: opts.BetterStackEndpoint,
		Level:    logLevel,
	}.NewBetterstackHandler()

	return &Logger{Logger: slog.New(NewMultiHandler(local, remote))}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithModule creates a new entry with module field
func (l *Logger) WithModule(module string) *Logger {
	return &Logger{Logger: l.With("module", module)}
}

// WithRequestID creates a new entry with request ID field
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.With("request_id", requestID)}
}

// WithSender creates a new entry with a truncated sender id field.
// Sender identifiers are phone numbers, so only a prefix is logged.
func (l *Logger) WithSender(sender string) *Logger {
	if len(sender) > 6 {
		sender = sender[:6] + "..."
	}
	return &Logger{Logger: l.With("sender", sender)}
}

// WithError creates a new entry with error field
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.With("error", err)}
}

// WithField creates a new entry with a single field
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{Logger: l.With(key, value)}
}

// WithFields creates a new entry with multiple fields
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{Logger: l.With(args...)}
}

// Fatal logs the message at error level and exits the process.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}

// Infof logs a formatted message at info level.
func (l *Logger) Infof(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

// Warnf logs a formatted message at warn level.
func (l *Logger) Warnf(format string, args ...any) {
	l.Warn(fmt.Sprintf(format, args...))
}

// Errorf logs a formatted message at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
}

// Debugf logs a formatted message at debug level.
func (l *Logger) Debugf(format string, args ...any) {
	l.Debug(fmt.Sprintf(format, args...))
}
