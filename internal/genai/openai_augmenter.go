package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openaiAugmenter implements Augmenter for any OpenAI-compatible endpoint.
type openaiAugmenter struct {
	client   openai.Client
	model    string
	provider Provider
}

// newOpenAIAugmenter creates an OpenAI-compatible augmenter.
// Returns nil if apiKey is empty (feature disabled). An empty baseURL uses
// the provider's public endpoint.
func newOpenAIAugmenter(provider Provider, apiKey, model, baseURL string) (*openaiAugmenter, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: feature disabled when no API key
	}

	if baseURL == "" {
		endpoint, ok := ProviderEndpoint[provider]
		if !ok {
			return nil, fmt.Errorf("unsupported OpenAI-compatible provider: %s", provider)
		}
		baseURL = endpoint
	}

	if model == "" {
		cfg := Config{}
		defaults := cfg.ModelsFor(provider)
		if len(defaults) == 0 {
			return nil, fmt.Errorf("no default model for provider: %s", provider)
		}
		model = defaults[0]
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0), // retries are handled by FallbackAugmenter
	)

	return &openaiAugmenter{
		client:   client,
		model:    model,
		provider: provider,
	}, nil
}

// Generate asks the chat completion endpoint for a reply grounded on contextText.
func (a *openaiAugmenter) Generate(ctx context.Context, message, contextText string) (string, error) {
	if a == nil {
		return "", nil
	}

	params := openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(BuildPrompt(message, contextText)),
		},
		Temperature: openai.Float(generationTemperature),
		MaxTokens:   openai.Int(maxOutputTokens),
	}

	start := time.Now()
	resp, err := a.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "augmentation API call failed",
			"provider", a.provider,
			"model", a.model,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	if resp.Usage.TotalTokens > 0 {
		slog.DebugContext(ctx, "augmentation completed",
			"provider", a.provider,
			"model", a.model,
			"input_tokens", resp.Usage.PromptTokens,
			"output_tokens", resp.Usage.CompletionTokens,
			"duration_ms", duration.Milliseconds())
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Provider returns the provider type for this augmenter.
func (a *openaiAugmenter) Provider() Provider {
	if a == nil {
		return ""
	}
	return a.provider
}

// Close releases resources.
// Safe to call on nil receiver.
func (a *openaiAugmenter) Close() error {
	return nil
}
