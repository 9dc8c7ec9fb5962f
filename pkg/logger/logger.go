// Package logger provides the shared slog logger and attribute helpers.
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/fx"
)

// Module provides the logger dependencies
var Module = fx.Module("logger",
	fx.Provide(
		NewLogger,
		NewHTTPLogger,
	),
)

// NewLogger creates the application logger.
// Level comes from LOG_LEVEL (debug|info|warn|error, default info).
// In production (GO_ENV=production) output is JSON, otherwise text.
func NewLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if os.Getenv("GO_ENV") == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// Scope returns a scope attribute identifying the logging component
func Scope(scope string) slog.Attr {
	return slog.String("scope", scope)
}

// Error returns an error attribute
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// HTTPLogger appends one line per request to an access log file.
// The file path comes from HTTP_LOG_FILE; when unset, logging to
// file is disabled and LogRequest is a no-op.
type HTTPLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewHTTPLogger creates the HTTP access logger
func NewHTTPLogger(log *slog.Logger) *HTTPLogger {
	path := os.Getenv("HTTP_LOG_FILE")
	if path == "" {
		return &HTTPLogger{}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Warn("failed to create http log directory", Error(err))
		return &HTTPLogger{}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Warn("failed to open http log file", slog.String("path", path), Error(err))
		return &HTTPLogger{}
	}

	return &HTTPLogger{file: f}
}

// LogRequest writes a single access log line
func (l *HTTPLogger) LogRequest(ip, method, uri string, status int, latency time.Duration, userAgent, requestID string) {
	if l.file == nil {
		return
	}

	line := fmt.Sprintf("%s %s %s %s %d %s %q %s\n",
		time.Now().UTC().Format(time.RFC3339),
		ip, method, uri, status, latency, userAgent, requestID,
	)

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.file.WriteString(line)
}

// Close closes the underlying log file if one is open
func (l *HTTPLogger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
