package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// geminiAugmenter implements Augmenter with the Gemini SDK.
type geminiAugmenter struct {
	client *genai.Client
	model  string
}

// newGeminiAugmenter creates a Gemini augmenter.
// Returns nil if apiKey is empty (feature disabled).
func newGeminiAugmenter(ctx context.Context, apiKey, model string) (*geminiAugmenter, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: feature disabled when no API key
	}

	if model == "" {
		model = DefaultGeminiModels[0]
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiAugmenter{
		client: client,
		model:  model,
	}, nil
}

// Generate asks Gemini for a reply grounded on contextText.
func (a *geminiAugmenter) Generate(ctx context.Context, message, contextText string) (string, error) {
	if a == nil || a.client == nil {
		return "", nil
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](generationTemperature),
		MaxOutputTokens:   maxOutputTokens,
	}

	start := time.Now()
	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(BuildPrompt(message, contextText)), config)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "augmentation API call failed",
			"provider", ProviderGemini,
			"model", a.model,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var reply strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			reply.WriteString(part.Text)
		}
	}

	if resp.UsageMetadata != nil {
		slog.DebugContext(ctx, "augmentation completed",
			"provider", ProviderGemini,
			"model", a.model,
			"input_tokens", resp.UsageMetadata.PromptTokenCount,
			"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
			"duration_ms", duration.Milliseconds())
	}

	return strings.TrimSpace(reply.String()), nil
}

// Provider returns the provider type for this augmenter.
func (a *geminiAugmenter) Provider() Provider {
	return ProviderGemini
}

// Close releases resources.
// Safe to call on nil receiver.
func (a *geminiAugmenter) Close() error {
	return nil
}
