package genai

import (
	"context"
	"log/slog"
)

// CreateAugmenter builds the augmentation chain from cfg: for each
// configured provider in order, one link per model in its chain.
// Returns nil when no provider has an API key (feature disabled).
func CreateAugmenter(ctx context.Context, cfg Config, recorder Recorder) (*FallbackAugmenter, error) {
	providers := cfg.ConfiguredProviders()
	if len(providers) == 0 {
		slog.InfoContext(ctx, "no LLM provider configured for augmentation")
		return nil, nil //nolint:nilnil // Intentional: feature disabled
	}

	var links []Augmenter
	for _, p := range providers {
		pc := cfg.provider(p)
		for _, model := range cfg.ModelsFor(p) {
			a, err := newAugmenter(ctx, p, pc, model)
			if err != nil {
				slog.WarnContext(ctx, "failed to create augmenter", "provider", p, "model", model, "error", err)
				continue
			}
			if a != nil {
				links = append(links, a)
			}
		}
	}

	if len(links) == 0 {
		slog.InfoContext(ctx, "no usable LLM model for augmentation")
		return nil, nil //nolint:nilnil // Intentional: feature disabled
	}

	slog.InfoContext(ctx, "augmenter configured",
		"primary", links[0].Provider(),
		"chainSize", len(links))

	return NewFallbackAugmenter(cfg.RetryConfig, recorder, links...), nil
}

func newAugmenter(ctx context.Context, p Provider, pc ProviderConfig, model string) (Augmenter, error) {
	if p == ProviderGemini {
		a, err := newGeminiAugmenter(ctx, pc.APIKey, model)
		if a == nil || err != nil {
			return nil, err
		}
		return a, nil
	}
	a, err := newOpenAIAugmenter(p, pc.APIKey, model, pc.BaseURL)
	if a == nil || err != nil {
		return nil, err
	}
	return a, nil
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  DefaultMaxRetryAttempts,
		InitialDelay: DefaultInitialRetryDelay,
		MaxDelay:     DefaultMaxRetryDelay,
	}
}
