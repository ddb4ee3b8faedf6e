package sentry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInitialize_EmptyDSN(t *testing.T) {
	t.Parallel()

	if err := Initialize(Config{}); err != nil {
		t.Errorf("Expected nil error for empty DSN, got %v", err)
	}
}

func TestInitialize_InvalidDSN(t *testing.T) {
	t.Parallel()

	for _, dsn := range []string{"not a dsn", "https://sentry.example.com/1", "://bad"} {
		if err := Initialize(Config{DSN: dsn}); err == nil {
			t.Errorf("Initialize(%q) expected error", dsn)
		}
	}
}

func TestInitialize_ValidConfig(t *testing.T) {
	// Cannot use t.Parallel() as Sentry uses global state

	err := Initialize(Config{
		DSN:         "https://public@sentry.example.com/1",
		Environment: "test",
		SampleRate:  0, // defaults to 1.0
	})
	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}

	if !IsEnabled() {
		t.Error("Expected IsEnabled() to return true after initialization")
	}

	// No hub in context: falls back to the global hub without panicking.
	CaptureExceptionWithContext(context.Background(), errors.New("boom"), map[string]string{"route": "/test"})
	CaptureExceptionWithContext(context.Background(), nil, nil)

	Flush(time.Second)
}
