package genai

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"
)

type stubAugmenter struct {
	provider Provider
	replies  []string
	errs     []error
	calls    int
	closed   bool
}

func (s *stubAugmenter) Generate(_ context.Context, _, _ string) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.replies) {
		return s.replies[i], nil
	}
	if len(s.replies) > 0 {
		return s.replies[len(s.replies)-1], nil
	}
	return "", nil
}

func (s *stubAugmenter) Provider() Provider { return s.provider }

func (s *stubAugmenter) Close() error {
	s.closed = true
	return nil
}

type llmCall struct {
	provider string
	status   string
}

type stubRecorder struct {
	mu        sync.Mutex
	calls     []llmCall
	fallbacks [][2]string
}

func (r *stubRecorder) RecordLLM(provider, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, llmCall{provider, status})
}

func (r *stubRecorder) RecordLLMFallback(from, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks = append(r.fallbacks, [2]string{from, to})
}

var fastRetry = RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

func TestFallbackAugmenter_PrimarySucceeds(t *testing.T) {
	t.Parallel()
	primary := &stubAugmenter{provider: ProviderGemini, replies: []string{"hola"}}
	secondary := &stubAugmenter{provider: ProviderGroq, replies: []string{"otro"}}
	rec := &stubRecorder{}

	f := NewFallbackAugmenter(fastRetry, rec, primary, secondary)
	got, err := f.Generate(context.Background(), "msg", "ctx")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "hola" {
		t.Errorf("Generate() = %q, want hola", got)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary called %d times, want 0", secondary.calls)
	}
	if len(rec.calls) != 1 || rec.calls[0] != (llmCall{"gemini", "success"}) {
		t.Errorf("recorded calls = %v", rec.calls)
	}
	if len(rec.fallbacks) != 0 {
		t.Errorf("recorded fallbacks = %v, want none", rec.fallbacks)
	}
}

func TestFallbackAugmenter_RetriesTransientError(t *testing.T) {
	t.Parallel()
	primary := &stubAugmenter{
		provider: ProviderGroq,
		errs:     []error{WrapError(errors.New("busy"), ProviderGroq, http.StatusServiceUnavailable)},
		replies:  []string{"", "listo"},
	}

	f := NewFallbackAugmenter(fastRetry, nil, primary)
	got, err := f.Generate(context.Background(), "msg", "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "listo" {
		t.Errorf("Generate() = %q, want listo", got)
	}
	if primary.calls != 2 {
		t.Errorf("primary called %d times, want 2", primary.calls)
	}
}

func TestFallbackAugmenter_FallsBackAcrossProviders(t *testing.T) {
	t.Parallel()
	quota := errors.New("RESOURCE_EXHAUSTED: quota exceeded")
	primary := &stubAugmenter{provider: ProviderGemini, errs: []error{quota, quota}}
	secondary := &stubAugmenter{provider: ProviderCerebras, replies: []string{"respaldo"}}
	rec := &stubRecorder{}

	f := NewFallbackAugmenter(fastRetry, rec, primary, secondary)
	got, err := f.Generate(context.Background(), "msg", "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "respaldo" {
		t.Errorf("Generate() = %q, want respaldo", got)
	}
	if primary.calls != 1 {
		t.Errorf("quota error should not be retried, primary calls = %d", primary.calls)
	}
	if len(rec.fallbacks) != 1 || rec.fallbacks[0] != [2]string{"gemini", "cerebras"} {
		t.Errorf("recorded fallbacks = %v", rec.fallbacks)
	}
	if len(rec.calls) != 2 || rec.calls[0].status != "quota_exhausted" || rec.calls[1].status != "success" {
		t.Errorf("recorded calls = %v", rec.calls)
	}
}

func TestFallbackAugmenter_QuotaSkipsProviderModels(t *testing.T) {
	t.Parallel()
	quota := errors.New("RESOURCE_EXHAUSTED: quota exceeded")
	flash := &stubAugmenter{provider: ProviderGemini, errs: []error{quota}}
	lite := &stubAugmenter{provider: ProviderGemini, replies: []string{"mismo proveedor"}}
	groq := &stubAugmenter{provider: ProviderGroq, replies: []string{"respaldo"}}

	f := NewFallbackAugmenter(fastRetry, nil, flash, lite, groq)
	got, err := f.Generate(context.Background(), "msg", "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "respaldo" {
		t.Errorf("Generate() = %q, want respaldo", got)
	}
	if lite.calls != 0 {
		t.Errorf("second model of an exhausted provider called %d times", lite.calls)
	}
}

func TestFallbackAugmenter_PermanentErrorTriesNextModel(t *testing.T) {
	t.Parallel()
	unknownModel := &LLMError{Err: errors.New("model not found"), StatusCode: http.StatusNotFound, Provider: ProviderOpenAI}
	first := &stubAugmenter{provider: ProviderOpenAI, errs: []error{unknownModel}}
	second := &stubAugmenter{provider: ProviderOpenAI, replies: []string{"ok"}}

	f := NewFallbackAugmenter(fastRetry, nil, first, second)
	got, err := f.Generate(context.Background(), "msg", "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "ok" || first.calls != 1 {
		t.Errorf("Generate() = %q with %d calls to the first model, want ok after 1", got, first.calls)
	}
}

func TestFallbackAugmenter_SameProviderFallbackNotRecorded(t *testing.T) {
	t.Parallel()
	bad := errors.New("invalid api key")
	first := &stubAugmenter{provider: ProviderGroq, errs: []error{bad}}
	second := &stubAugmenter{provider: ProviderGroq, replies: []string{"ok"}}
	rec := &stubRecorder{}

	f := NewFallbackAugmenter(fastRetry, rec, first, second)
	if _, err := f.Generate(context.Background(), "msg", ""); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(rec.fallbacks) != 0 {
		t.Errorf("model fallback within one provider recorded: %v", rec.fallbacks)
	}
}

func TestFallbackAugmenter_AllFail(t *testing.T) {
	t.Parallel()
	bad := errors.New("invalid api key")
	f := NewFallbackAugmenter(fastRetry, nil,
		&stubAugmenter{provider: ProviderOpenAI, errs: []error{bad}},
		&stubAugmenter{provider: ProviderGroq, errs: []error{bad}},
	)

	_, err := f.Generate(context.Background(), "msg", "")
	if err == nil {
		t.Fatal("Generate() expected error")
	}
	if !errors.Is(err, bad) {
		t.Errorf("Generate() error = %v, want wrapping %v", err, bad)
	}
}

func TestFallbackAugmenter_CanceledContext(t *testing.T) {
	t.Parallel()
	primary := &stubAugmenter{provider: ProviderGemini, replies: []string{"hola"}}
	f := NewFallbackAugmenter(fastRetry, nil, primary)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Generate(ctx, "msg", "")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, want context.Canceled", err)
	}
	if primary.calls != 0 {
		t.Errorf("primary called %d times after cancel", primary.calls)
	}
}

func TestFallbackAugmenter_StopsOnCanceledLink(t *testing.T) {
	t.Parallel()
	primary := &stubAugmenter{provider: ProviderGemini, errs: []error{context.Canceled}}
	secondary := &stubAugmenter{provider: ProviderGroq, replies: []string{"no"}}
	f := NewFallbackAugmenter(fastRetry, nil, primary, secondary)

	if _, err := f.Generate(context.Background(), "msg", ""); err == nil {
		t.Fatal("Generate() expected error")
	}
	if secondary.calls != 0 {
		t.Errorf("secondary called %d times after cancellation", secondary.calls)
	}
}

func TestFallbackAugmenter_NilAndEmpty(t *testing.T) {
	t.Parallel()
	var nilChain *FallbackAugmenter
	if _, err := nilChain.Generate(context.Background(), "m", ""); err == nil {
		t.Error("nil chain Generate() expected error")
	}
	if nilChain.Len() != 0 || nilChain.Provider() != "" || nilChain.Close() != nil {
		t.Error("nil chain accessors should be zero values")
	}

	f := NewFallbackAugmenter(RetryConfig{}, nil, nil, nil)
	if f.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after dropping nil links", f.Len())
	}
	if f.retryConfig != DefaultRetryConfig() {
		t.Errorf("retryConfig = %+v, want defaults", f.retryConfig)
	}
}

func TestFallbackAugmenter_Close(t *testing.T) {
	t.Parallel()
	a := &stubAugmenter{provider: ProviderGemini}
	b := &stubAugmenter{provider: ProviderGroq}
	f := NewFallbackAugmenter(fastRetry, nil, a, b)

	if f.Provider() != ProviderGemini {
		t.Errorf("Provider() = %q, want gemini", f.Provider())
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !a.closed || !b.closed {
		t.Error("Close() should close every link")
	}
}
