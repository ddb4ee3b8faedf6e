package ratelimit

import (
	"sync"
	"time"
)

// defaultCleanupPeriod applies when KeyedConfig.CleanupPeriod is unset.
const defaultCleanupPeriod = 5 * time.Minute

// Recorder receives limiter observations. *metrics.Metrics implements it.
type Recorder interface {
	RecordRateLimiterDrop(limiter string)
	SetRateLimiterKeys(limiter string, count int)
}

// KeyedConfig configures a KeyedLimiter instance.
type KeyedConfig struct {
	// Name identifies this limiter in metrics (e.g., "chat", "llm").
	Name string

	// Token bucket settings
	Burst      float64 // Maximum tokens (burst capacity)
	RefillRate float64 // Tokens refilled per second

	// DailyLimit caps requests per key over a rolling 24h window (0 = disabled).
	DailyLimit int

	// CleanupPeriod is how often idle keys are dropped.
	CleanupPeriod time.Duration

	// Recorder is optional.
	Recorder Recorder
}

// KeyedLimiter tracks rate limits per key (client IP for the portal).
// Each key gets its own bucket; idle keys are removed periodically.
type KeyedLimiter struct {
	mu      sync.RWMutex
	entries map[string]*keyedEntry
	config  KeyedConfig
	stopCh  chan struct{}
	stopped sync.Once
}

// keyedEntry holds per-key state. mu makes the two-layer check-then-consume atomic.
type keyedEntry struct {
	mu      sync.Mutex
	limiter *Limiter
	daily   *SlidingWindowCounter // nil when DailyLimit is disabled
}

// NewKeyedLimiter creates a per-key limiter and starts its cleanup loop.
//
//	limiter := NewKeyedLimiter(KeyedConfig{
//	    Name:       "chat",
//	    Burst:      10,
//	    RefillRate: PerMinute(20),
//	})
//	defer limiter.Stop()
//
//	if !limiter.Allow(clientIP) {
//	    // 429
//	}
func NewKeyedLimiter(cfg KeyedConfig) *KeyedLimiter {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = defaultCleanupPeriod
	}
	kl := &KeyedLimiter{
		entries: make(map[string]*keyedEntry),
		config:  cfg,
		stopCh:  make(chan struct{}),
	}

	go kl.cleanupLoop()

	return kl
}

// Allow reports whether a request for key may proceed, consuming quota if so.
// An empty key is always allowed. With DailyLimit set, both the bucket and
// the daily window must have room; neither is charged on rejection.
func (kl *KeyedLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	entry := kl.getOrCreateEntry(key)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !entry.daily.Check() || !entry.limiter.Check() {
		kl.recordDrop()
		return false
	}

	entry.daily.Consume()
	entry.limiter.Consume()

	return true
}

func (kl *KeyedLimiter) recordDrop() {
	if kl.config.Recorder != nil {
		kl.config.Recorder.RecordRateLimiterDrop(kl.config.Name)
	}
}

// getOrCreateEntry returns the entry for a key, creating it if needed.
func (kl *KeyedLimiter) getOrCreateEntry(key string) *keyedEntry {
	kl.mu.RLock()
	entry, exists := kl.entries[key]
	kl.mu.RUnlock()

	if exists {
		return entry
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()

	// Double-check after acquiring write lock
	entry, exists = kl.entries[key]
	if exists {
		return entry
	}

	entry = &keyedEntry{
		limiter: New(kl.config.Burst, kl.config.RefillRate),
		daily:   NewSlidingWindowCounter(kl.config.DailyLimit, 24*time.Hour),
	}
	kl.entries[key] = entry
	return entry
}

func (kl *KeyedLimiter) lookup(key string) (*keyedEntry, bool) {
	kl.mu.RLock()
	defer kl.mu.RUnlock()
	entry, ok := kl.entries[key]
	return entry, ok
}

// GetAvailable returns the number of available tokens for a key.
// Returns Burst if the key has no limiter yet.
func (kl *KeyedLimiter) GetAvailable(key string) float64 {
	entry, ok := kl.lookup(key)
	if !ok {
		return kl.config.Burst
	}
	return entry.limiter.Available()
}

// GetDailyRemaining returns the remaining daily quota for a key.
// Returns -1 if daily limit is disabled, or the full limit for unknown keys.
func (kl *KeyedLimiter) GetDailyRemaining(key string) int {
	if kl.config.DailyLimit <= 0 {
		return -1
	}
	entry, ok := kl.lookup(key)
	if !ok {
		return kl.config.DailyLimit
	}
	return entry.daily.GetRemaining()
}

// RetryAfter estimates when key may send again. Zero if it may now or if
// only the daily window is exhausted.
func (kl *KeyedLimiter) RetryAfter(key string) time.Duration {
	entry, ok := kl.lookup(key)
	if !ok {
		return 0
	}
	return entry.limiter.NextToken()
}

// GetActiveCount returns the number of tracked keys.
func (kl *KeyedLimiter) GetActiveCount() int {
	kl.mu.RLock()
	defer kl.mu.RUnlock()
	return len(kl.entries)
}

// cleanupLoop periodically removes idle keys.
func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(kl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			kl.cleanup()
		}
	}
}

// cleanup drops keys whose bucket is full and whose daily window is empty.
// Keys with daily usage stay so the cap survives idle periods.
func (kl *KeyedLimiter) cleanup() {
	kl.mu.Lock()
	for key, entry := range kl.entries {
		if entry.limiter.IsFull() && entry.daily.GetEffectiveCount() == 0 {
			delete(kl.entries, key)
		}
	}
	active := len(kl.entries)
	kl.mu.Unlock()

	if kl.config.Recorder != nil {
		kl.config.Recorder.SetRateLimiterKeys(kl.config.Name, active)
	}
}

// Stop stops the cleanup goroutine. Safe to call multiple times.
func (kl *KeyedLimiter) Stop() {
	kl.stopped.Do(func() { close(kl.stopCh) })
}
