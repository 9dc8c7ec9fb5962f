package logger

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestScope(t *testing.T) {
	tests := []struct {
		name  string
		scope string
		want  string
	}{
		{"basic scope", "invites", "invites"},
		{"nested scope", "invites.repo", "invites.repo"},
		{"empty scope", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := Scope(tt.scope)
			if attr.Key != "scope" {
				t.Errorf("Scope() key = %q, want %q", attr.Key, "scope")
			}
			if attr.Value.String() != tt.want {
				t.Errorf("Scope() value = %q, want %q", attr.Value.String(), tt.want)
			}
		})
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"simple error", errors.New("something went wrong")},
		{"nil error", nil},
		{"wrapped error", errors.Join(errors.New("outer"), errors.New("inner"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := Error(tt.err)
			if attr.Key != "error" {
				t.Errorf("Error() key = %q, want %q", attr.Key, "error")
			}
			gotErr := attr.Value.Any()
			if gotErr != tt.err {
				t.Errorf("Error() value = %v, want %v", gotErr, tt.err)
			}
		})
	}
}

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		enabled  slog.Level
		disabled slog.Level
	}{
		{"default is info", "", slog.LevelInfo, slog.LevelDebug},
		{"debug", "debug", slog.LevelDebug, slog.Level(-8)},
		{"info", "info", slog.LevelInfo, slog.LevelDebug},
		{"warn", "warn", slog.LevelWarn, slog.LevelInfo},
		{"warning alias", "warning", slog.LevelWarn, slog.LevelInfo},
		{"error", "error", slog.LevelError, slog.LevelWarn},
		{"case insensitive", "DeBuG", slog.LevelDebug, slog.Level(-8)},
		{"invalid defaults to info", "verbose", slog.LevelInfo, slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.level)
			t.Setenv("GO_ENV", "")

			log := NewLogger()
			if log == nil {
				t.Fatal("NewLogger() returned nil")
			}
			if !log.Enabled(nil, tt.enabled) {
				t.Errorf("NewLogger() should enable %v when LOG_LEVEL=%q", tt.enabled, tt.level)
			}
			if log.Enabled(nil, tt.disabled) {
				t.Errorf("NewLogger() should NOT enable %v when LOG_LEVEL=%q", tt.disabled, tt.level)
			}
		})
	}
}

func TestNewLogger_ProductionJSON(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("GO_ENV", "production")

	log := NewLogger()
	if log == nil {
		t.Fatal("NewLogger() returned nil")
	}
	if !log.Enabled(nil, slog.LevelInfo) {
		t.Error("NewLogger() should have info level enabled in production")
	}
}

func TestHTTPLogger_NoFileIsNoOp(t *testing.T) {
	t.Setenv("HTTP_LOG_FILE", "")

	l := NewHTTPLogger(NewLogger())
	// Must not panic without a backing file
	l.LogRequest("127.0.0.1", "GET", "/health", 200, time.Millisecond, "test", "req-1")
	if err := l.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestHTTPLogger_WritesToFile(t *testing.T) {
	path := t.TempDir() + "/http.log"
	t.Setenv("HTTP_LOG_FILE", path)

	l := NewHTTPLogger(NewLogger())
	l.LogRequest("127.0.0.1", "GET", "/health", 200, time.Millisecond, "test", "req-1")
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}
