package genai

import (
	"slices"
	"testing"
)

func TestParseProvider(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want Provider
		ok   bool
	}{
		{"gemini", ProviderGemini, true},
		{"openai", ProviderOpenAI, true},
		{"groq", ProviderGroq, true},
		{"cerebras", ProviderCerebras, true},
		{"Gemini", "", false},
		{"", "", false},
		{"anthropic", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseProvider(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseProvider(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestProvider_IsOpenAICompatible(t *testing.T) {
	t.Parallel()
	if ProviderGemini.IsOpenAICompatible() {
		t.Error("gemini should not be OpenAI-compatible")
	}
	for _, p := range []Provider{ProviderOpenAI, ProviderGroq, ProviderCerebras} {
		if !p.IsOpenAICompatible() {
			t.Errorf("%s should be OpenAI-compatible", p)
		}
	}
}

func TestConfig_ConfiguredProviders(t *testing.T) {
	t.Parallel()
	cfg := Config{
		Providers: []Provider{ProviderGroq, ProviderGemini, ProviderOpenAI},
		Gemini:    ProviderConfig{APIKey: "g"},
		Groq:      ProviderConfig{APIKey: "q"},
		Cerebras:  ProviderConfig{APIKey: "c"},
	}
	got := cfg.ConfiguredProviders()
	want := []Provider{ProviderGroq, ProviderGemini}
	if !slices.Equal(got, want) {
		t.Errorf("ConfiguredProviders() = %v, want %v", got, want)
	}
	if !cfg.HasAnyProvider() {
		t.Error("HasAnyProvider() = false, want true")
	}
	if (&Config{}).HasAnyProvider() {
		t.Error("empty config HasAnyProvider() = true")
	}
}

func TestConfig_ModelsFor(t *testing.T) {
	t.Parallel()
	cfg := Config{Groq: ProviderConfig{Models: []string{"custom"}}}
	if got := cfg.ModelsFor(ProviderGroq); !slices.Equal(got, []string{"custom"}) {
		t.Errorf("ModelsFor(groq) = %v, want [custom]", got)
	}
	if got := cfg.ModelsFor(ProviderGemini); !slices.Equal(got, DefaultGeminiModels) {
		t.Errorf("ModelsFor(gemini) = %v, want defaults", got)
	}
	if got := cfg.ModelsFor("unknown"); got != nil {
		t.Errorf("ModelsFor(unknown) = %v, want nil", got)
	}
}
