package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"
)

var timeZero = time.Time{}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestMultiHandler_FanOut(t *testing.T) {
	t.Parallel()
	var a, b bytes.Buffer
	mh := NewMultiHandler(
		nil,
		slog.NewJSONHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	if len(mh.handlers) != 2 {
		t.Fatalf("expected nil handlers to be dropped, got %d", len(mh.handlers))
	}

	log := slog.New(mh).With("module", "site")
	log.Info("page rendered")

	var entry map[string]any
	if err := json.Unmarshal(a.Bytes(), &entry); err != nil {
		t.Fatalf("handler a: %v", err)
	}
	if entry["module"] != "site" {
		t.Errorf("module attr lost: %v", entry)
	}
	if b.Len() != 0 {
		t.Errorf("error-level handler should skip info, got %q", b.String())
	}
}

func TestMultiHandler_JoinsErrors(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ok := slog.NewJSONHandler(&buf, nil)
	mh := NewMultiHandler(ok, failingHandler{ok})

	err := mh.Handle(context.Background(), slog.NewRecord(timeZero, slog.LevelInfo, "x", 0))
	if err == nil {
		t.Fatal("expected joined error")
	}
	if buf.Len() == 0 {
		t.Error("healthy handler should still receive the record")
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Len()
}

func TestAsyncHandler_FlushOnShutdown(t *testing.T) {
	t.Parallel()
	sink := &syncBuffer{}
	h := NewAsyncHandler(slog.NewJSONHandler(sink, nil), AsyncOptions{BufferSize: 16})
	log := slog.New(h).With("module", "async")

	ctx, cancel := context.WithCancel(context.Background())
	for range 5 {
		log.InfoContext(ctx, "queued")
	}
	cancel()

	if err := h.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}
	if sink.Len() == 0 {
		t.Error("expected queued records to be written")
	}
	if h.Dropped() != 0 {
		t.Errorf("Dropped() = %d, want 0", h.Dropped())
	}
	// Second shutdown is a no-op.
	if err := h.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown() = %v", err)
	}
}
