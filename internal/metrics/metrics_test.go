package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew(t *testing.T) {
	t.Parallel()
	registry := prometheus.NewRegistry()
	m := New(registry)

	if m == nil {
		t.Fatal("New() returned nil")
	}
	if m.ChatRequestsTotal == nil || m.LLMRequestsTotal == nil || m.Programs == nil {
		t.Error("collectors not initialized")
	}
}

func TestNew_SeparateRegistries(t *testing.T) {
	t.Parallel()
	// promauto panics on duplicate registration within one registry.
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}

func TestRecordChat(t *testing.T) {
	t.Parallel()
	m := New(prometheus.NewRegistry())

	m.RecordChat("greeting", "local", 2*time.Millisecond)
	m.RecordChat("greeting", "local", time.Millisecond)
	m.RecordChat("none", "llm", time.Second)

	if got := testutil.ToFloat64(m.ChatRequestsTotal.WithLabelValues("greeting", "local")); got != 2 {
		t.Errorf("greeting/local = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(m.ChatDurationSeconds); got != 2 {
		t.Errorf("duration series = %d, want 2 (local, llm)", got)
	}
}

func TestRecordLLM(t *testing.T) {
	t.Parallel()
	m := New(prometheus.NewRegistry())

	m.RecordLLM("gemini", "success", 800*time.Millisecond)
	m.RecordLLM("gemini", "rate_limit", 100*time.Millisecond)
	m.RecordLLMFallback("gemini", "groq")

	if got := testutil.ToFloat64(m.LLMRequestsTotal.WithLabelValues("gemini", "rate_limit")); got != 1 {
		t.Errorf("gemini/rate_limit = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LLMFallbackTotal.WithLabelValues("gemini", "groq")); got != 1 {
		t.Errorf("fallback gemini->groq = %v, want 1", got)
	}
}

func TestDirectoryMetrics(t *testing.T) {
	t.Parallel()
	m := New(prometheus.NewRegistry())

	m.RecordProgramMutation("agregar", "success")
	m.RecordProgramMutation("agregar", "duplicate")
	m.RecordFeedback("success")
	m.SetPrograms(7)
	m.SetPrograms(6)

	if got := testutil.ToFloat64(m.Programs); got != 6 {
		t.Errorf("programs gauge = %v, want 6", got)
	}
	if got := testutil.ToFloat64(m.ProgramMutationsTotal.WithLabelValues("agregar", "duplicate")); got != 1 {
		t.Errorf("agregar/duplicate = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.FeedbackTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("feedback success = %v, want 1", got)
	}
}

func TestRateLimiterMetrics(t *testing.T) {
	t.Parallel()
	m := New(prometheus.NewRegistry())

	m.RecordRateLimiterDrop("chat")
	m.RecordRateLimiterDrop("chat")
	m.SetRateLimiterKeys("llm", 3)

	if got := testutil.ToFloat64(m.RateLimiterDropped.WithLabelValues("chat")); got != 2 {
		t.Errorf("chat drops = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RateLimiterKeys.WithLabelValues("llm")); got != 3 {
		t.Errorf("llm keys = %v, want 3", got)
	}
}

func TestRecordHTTPRequestAndBackup(t *testing.T) {
	t.Parallel()
	m := New(prometheus.NewRegistry())

	m.RecordHTTPRequest("GET", "/programas", "200", 3*time.Millisecond)
	m.RecordBackup("push", "success")

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/programas", "200")); got != 1 {
		t.Errorf("GET /programas 200 = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.BackupTotal.WithLabelValues("push", "success")); got != 1 {
		t.Errorf("push success = %v, want 1", got)
	}
}
