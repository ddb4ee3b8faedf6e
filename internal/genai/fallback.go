package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// FallbackAugmenter walks an ordered chain of augmenters (models, then
// providers). Each link is retried on transient errors; any error left
// after retrying moves on to the next link. Quota exhaustion is per API key,
// so it also skips the remaining models of that provider. A cancelled
// context stops the walk.
type FallbackAugmenter struct {
	chain       []Augmenter
	retryConfig RetryConfig
	recorder    Recorder
}

// NewFallbackAugmenter creates a fallback chain. Nil links are dropped.
// recorder may be nil.
func NewFallbackAugmenter(cfg RetryConfig, recorder Recorder, chain ...Augmenter) *FallbackAugmenter {
	links := make([]Augmenter, 0, len(chain))
	for _, a := range chain {
		if a != nil {
			links = append(links, a)
		}
	}
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultRetryConfig()
	}
	return &FallbackAugmenter{
		chain:       links,
		retryConfig: cfg,
		recorder:    recorder,
	}
}

// Generate returns the first non-error reply along the chain.
func (f *FallbackAugmenter) Generate(ctx context.Context, message, contextText string) (string, error) {
	if f == nil || len(f.chain) == 0 {
		return "", errors.New("augmenter not configured")
	}

	start := time.Now()
	var lastErr error
	exhausted := make(map[Provider]bool)
	for i, link := range f.chain {
		if ctx.Err() != nil {
			break
		}
		if exhausted[link.Provider()] {
			continue
		}

		linkStart := time.Now()
		reply, err := f.generateWithRetry(ctx, link, message, contextText)
		f.record(link.Provider(), classifyErrorType(err), time.Since(linkStart))
		if err == nil {
			if i > 0 {
				f.recordFallback(f.chain[0].Provider(), link.Provider())
				slog.InfoContext(ctx, "augmentation served by fallback",
					"from", f.chain[0].Provider(),
					"to", link.Provider(),
					"position", i,
					"duration", time.Since(start))
			}
			return reply, nil
		}

		lastErr = err
		if errors.Is(err, context.Canceled) {
			break
		}
		if ShouldFallback(err) {
			exhausted[link.Provider()] = true
		}
		if IsPermanent(err) {
			// Bad keys and unknown models do not heal by themselves.
			slog.ErrorContext(ctx, "augmenter rejected request, check its configuration",
				"provider", link.Provider(),
				"position", i,
				"error", err)
			continue
		}
		slog.WarnContext(ctx, "augmenter failed, trying next",
			"provider", link.Provider(),
			"action", ClassifyError(err),
			"position", i,
			"error", err)
	}

	if lastErr == nil {
		lastErr = ctx.Err()
	}
	return "", fmt.Errorf("all augmenters failed: %w", lastErr)
}

func (f *FallbackAugmenter) generateWithRetry(ctx context.Context, link Augmenter, message, contextText string) (string, error) {
	var reply string
	err := WithRetry(ctx, f.retryConfig, func(attempt int, err error, delay time.Duration) {
		slog.DebugContext(ctx, "retrying augmentation",
			"provider", link.Provider(),
			"attempt", attempt,
			"backoff", delay,
			"error", err)
	}, func() error {
		var err error
		reply, err = link.Generate(ctx, message, contextText)
		return err
	})
	return reply, err
}

func (f *FallbackAugmenter) record(provider Provider, status string, d time.Duration) {
	if f.recorder != nil {
		f.recorder.RecordLLM(provider.String(), status, d)
	}
}

func (f *FallbackAugmenter) recordFallback(from, to Provider) {
	if f.recorder != nil && from != to {
		f.recorder.RecordLLMFallback(from.String(), to.String())
	}
}

// Len returns the number of links in the chain.
func (f *FallbackAugmenter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.chain)
}

// Provider returns the primary provider type.
func (f *FallbackAugmenter) Provider() Provider {
	if f == nil || len(f.chain) == 0 {
		return ""
	}
	return f.chain[0].Provider()
}

// Close closes every link.
func (f *FallbackAugmenter) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, a := range f.chain {
		if err := a.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
