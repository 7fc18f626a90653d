// Package logger provides structured logging for the site tools service
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with service-specific helpers
type Logger struct {
	zlog zerolog.Logger
}

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error
	Pretty     bool   // pretty-print for development
	Output     io.Writer
	WithCaller bool
}

// New creates a new structured logger
func New(cfg Config) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	zlog := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("service", "sitetools").
		Logger()

	if cfg.WithCaller {
		zlog = zlog.With().Caller().Logger()
	}

	return &Logger{zlog: zlog}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// Zerolog returns the underlying zerolog logger
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zlog
}

func (l *Logger) Info() *zerolog.Event  { return l.zlog.Info() }
func (l *Logger) Debug() *zerolog.Event { return l.zlog.Debug() }
func (l *Logger) Warn() *zerolog.Event  { return l.zlog.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zlog.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zlog.Fatal() }

// With returns a logger with an additional string field
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zlog: l.zlog.With().Str(key, value).Logger()}
}

// HTTPLogger returns a logger for HTTP request handling
func (l *Logger) HTTPLogger() *Logger {
	return l.With("component", "http")
}

// DBLogger returns a logger for database operations
func (l *Logger) DBLogger(operation string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "database").
			Str("operation", operation).
			Logger(),
	}
}

// LogRequest logs a completed HTTP request with structured fields. Call it on HTTPLogger().
func (l *Logger) LogRequest(method, path, clientIP string, status int, latency time.Duration, size int, errMsg string) {
	event := l.zlog.Info()
	switch {
	case status >= 500:
		event = l.zlog.Error()
	case status >= 400:
		event = l.zlog.Warn()
	}

	event = event.
		Str("method", method).
		Str("path", path).
		Str("client_ip", clientIP).
		Int("status", status).
		Dur("latency", latency).
		Int("size", size)

	if errMsg != "" {
		event = event.Str("error", errMsg)
	}

	event.Msg("request completed")
}
