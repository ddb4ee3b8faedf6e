package genai

import (
	"context"
	"testing"
)

func TestCreateAugmenter_NoKeys(t *testing.T) {
	t.Parallel()
	a, err := CreateAugmenter(context.Background(), Config{Providers: DefaultProviders}, nil)
	if err != nil {
		t.Fatalf("CreateAugmenter() error = %v", err)
	}
	if a != nil {
		t.Errorf("CreateAugmenter() = %v, want nil when no provider has a key", a)
	}
}

func TestCreateAugmenter_ChainFollowsProvidersAndModels(t *testing.T) {
	t.Parallel()
	cfg := Config{
		Providers: []Provider{ProviderCerebras, ProviderGroq, ProviderOpenAI},
		Groq:      ProviderConfig{APIKey: "groq-key", Models: []string{"m1", "m2", "m3"}},
		Cerebras:  ProviderConfig{APIKey: "cerebras-key"},
	}

	a, err := CreateAugmenter(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("CreateAugmenter() error = %v", err)
	}
	if a == nil {
		t.Fatal("CreateAugmenter() returned nil")
	}
	defer func() { _ = a.Close() }()

	wantLen := len(DefaultCerebrasModels) + 3
	if a.Len() != wantLen {
		t.Errorf("Len() = %d, want %d", a.Len(), wantLen)
	}
	if a.Provider() != ProviderCerebras {
		t.Errorf("Provider() = %q, want cerebras (first in order)", a.Provider())
	}
}

func TestCreateAugmenter_ProviderNotListedIsSkipped(t *testing.T) {
	t.Parallel()
	cfg := Config{
		Providers: []Provider{ProviderGroq},
		OpenAI:    ProviderConfig{APIKey: "sk-test"},
	}
	a, err := CreateAugmenter(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("CreateAugmenter() error = %v", err)
	}
	if a != nil {
		t.Error("provider with a key but outside Providers should not be used")
	}
}

func TestNewOpenAIAugmenter(t *testing.T) {
	t.Parallel()

	a, err := newOpenAIAugmenter(ProviderGroq, "", "", "")
	if err != nil || a != nil {
		t.Errorf("empty key: got (%v, %v), want (nil, nil)", a, err)
	}

	a, err = newOpenAIAugmenter(ProviderGroq, "key", "", "")
	if err != nil {
		t.Fatalf("newOpenAIAugmenter() error = %v", err)
	}
	if a.model != DefaultGroqModels[0] {
		t.Errorf("model = %q, want default %q", a.model, DefaultGroqModels[0])
	}

	if _, err := newOpenAIAugmenter(ProviderGemini, "key", "m", ""); err == nil {
		t.Error("gemini without a base URL should be rejected")
	}

	a, err = newOpenAIAugmenter(ProviderOpenAI, "key", "local-model", "http://localhost:8080/v1/")
	if err != nil {
		t.Fatalf("newOpenAIAugmenter() with base URL error = %v", err)
	}
	if a.Provider() != ProviderOpenAI || a.model != "local-model" {
		t.Errorf("got provider=%q model=%q", a.Provider(), a.model)
	}
}

func TestNewGeminiAugmenter_EmptyKey(t *testing.T) {
	t.Parallel()
	a, err := newGeminiAugmenter(context.Background(), "", "")
	if err != nil || a != nil {
		t.Errorf("got (%v, %v), want (nil, nil)", a, err)
	}

	var nilAug *geminiAugmenter
	reply, err := nilAug.Generate(context.Background(), "hola", "")
	if reply != "" || err != nil {
		t.Errorf("nil Generate() = (%q, %v), want empty", reply, err)
	}
}
