// Package genai answers chat messages the rule-based assistant could not
// understand by calling an external LLM with a locally built context.
//
// Architecture:
// - Gemini: Uses google.golang.org/genai (official SDK)
// - OpenAI/Groq/Cerebras: Uses github.com/openai/openai-go/v3 (OpenAI-compatible API)
//
// Fallback Strategy (3-layer):
// 1. Model Retry: Same model retried with exponential backoff
// 2. Model Chain: Next model in same provider's model list
// 3. Provider Chain: Next provider in the configured provider order
package genai

import (
	"context"
	"time"
)

// Provider represents an LLM provider.
type Provider string

const (
	// ProviderGemini represents Google's Gemini API (non-OpenAI-compatible).
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI represents OpenAI or any endpoint set through a custom base URL.
	ProviderOpenAI Provider = "openai"
	// ProviderGroq represents Groq's OpenAI-compatible API.
	ProviderGroq Provider = "groq"
	// ProviderCerebras represents Cerebras's OpenAI-compatible API.
	ProviderCerebras Provider = "cerebras"
)

// ProviderEndpoint defines the base URL for OpenAI-compatible providers.
// Gemini is not included as it uses a different SDK.
var ProviderEndpoint = map[Provider]string{
	ProviderOpenAI:   "https://api.openai.com/v1/",
	ProviderGroq:     "https://api.groq.com/openai/v1/",
	ProviderCerebras: "https://api.cerebras.ai/v1/",
}

// IsOpenAICompatible returns true if the provider uses OpenAI-compatible API.
func (p Provider) IsOpenAICompatible() bool {
	_, ok := ProviderEndpoint[p]
	return ok
}

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// ParseProvider maps a configuration name to a Provider.
func ParseProvider(name string) (Provider, bool) {
	switch p := Provider(name); p {
	case ProviderGemini, ProviderOpenAI, ProviderGroq, ProviderCerebras:
		return p, true
	default:
		return "", false
	}
}

// Augmenter produces a free-text reply for a message given a context summary.
type Augmenter interface {
	// Generate returns the model's reply. An empty reply is not an error.
	Generate(ctx context.Context, message, contextText string) (string, error)
	// Provider returns the provider type for metrics.
	Provider() Provider
	// Close releases any resources held by the augmenter.
	Close() error
}

// Recorder receives LLM call observations. *metrics.Metrics implements it.
type Recorder interface {
	RecordLLM(provider, status string, duration time.Duration)
	RecordLLMFallback(from, to string)
}

// RetryConfig defines retry behavior for LLM API calls.
// Uses AWS-recommended Full Jitter exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 2 (1 initial + 1 retry)
	MaxAttempts int

	// InitialDelay is the base delay before first retry.
	// Default: 500ms
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries.
	// Default: 3s
	MaxDelay time.Duration
}

// ProviderConfig holds configuration for a single LLM provider.
type ProviderConfig struct {
	APIKey string

	// Models is the ordered model chain; the first is primary.
	Models []string

	// BaseURL overrides the provider endpoint (OpenAI-compatible only).
	BaseURL string
}

// Config holds configuration for all LLM providers.
type Config struct {
	// Providers is the ordered list of providers to try.
	// Only providers with an API key take part in the chain.
	Providers []Provider

	Gemini   ProviderConfig
	OpenAI   ProviderConfig
	Groq     ProviderConfig
	Cerebras ProviderConfig

	RetryConfig RetryConfig
}

// Default model chains. First element is primary, the rest are fallbacks.
var (
	DefaultGeminiModels   = []string{"gemini-2.5-flash", "gemini-2.5-flash-lite"}
	DefaultOpenAIModels   = []string{"gpt-4o-mini"}
	DefaultGroqModels     = []string{"llama-3.3-70b-versatile", "llama-3.1-8b-instant"}
	DefaultCerebrasModels = []string{"llama-3.3-70b", "llama-3.1-8b"}

	// DefaultProviders is the default provider order for fallback.
	DefaultProviders = []Provider{ProviderGemini, ProviderOpenAI, ProviderGroq, ProviderCerebras}
)

// Retry configuration defaults
const (
	DefaultMaxRetryAttempts  = 2
	DefaultInitialRetryDelay = 500 * time.Millisecond
	DefaultMaxRetryDelay     = 3 * time.Second
)

// Generation parameters shared by every provider.
const (
	generationTemperature = 0.3
	maxOutputTokens       = 300
)

// provider returns the configuration block for p.
func (c *Config) provider(p Provider) ProviderConfig {
	switch p {
	case ProviderGemini:
		return c.Gemini
	case ProviderOpenAI:
		return c.OpenAI
	case ProviderGroq:
		return c.Groq
	case ProviderCerebras:
		return c.Cerebras
	default:
		return ProviderConfig{}
	}
}

// HasProvider returns true if the specified provider is configured with an API key.
func (c *Config) HasProvider(p Provider) bool {
	return c.provider(p).APIKey != ""
}

// HasAnyProvider returns true if at least one provider is configured.
func (c *Config) HasAnyProvider() bool {
	for _, p := range DefaultProviders {
		if c.HasProvider(p) {
			return true
		}
	}
	return false
}

// ConfiguredProviders returns providers in order that have API keys.
func (c *Config) ConfiguredProviders() []Provider {
	var result []Provider
	for _, p := range c.Providers {
		if c.HasProvider(p) {
			result = append(result, p)
		}
	}
	return result
}

// ModelsFor returns the configured model chain for p, or its defaults.
func (c *Config) ModelsFor(p Provider) []string {
	if models := c.provider(p).Models; len(models) > 0 {
		return models
	}
	switch p {
	case ProviderGemini:
		return DefaultGeminiModels
	case ProviderOpenAI:
		return DefaultOpenAIModels
	case ProviderGroq:
		return DefaultGroqModels
	case ProviderCerebras:
		return DefaultCerebrasModels
	default:
		return nil
	}
}
