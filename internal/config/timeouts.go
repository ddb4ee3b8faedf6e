package config

import "time"

// HTTP server timeouts
const (
	// ServerRead bounds reading a request, including the body of a form post.
	ServerRead = 10 * time.Second

	// ServerWrite must exceed ChatProcessing plus rendering.
	ServerWrite = 40 * time.Second

	// ServerIdle is the keep-alive idle timeout.
	ServerIdle = 120 * time.Second

	// ServerShutdown is the default graceful shutdown budget.
	ServerShutdown = 30 * time.Second
)

// Request processing timeouts
const (
	// ChatProcessing bounds a whole /api/chat request, LLM call included.
	ChatProcessing = 30 * time.Second

	// LLMRequest is the default budget for the augmentation call.
	LLMRequest = 15 * time.Second

	// DatabaseQuery bounds CRUD handlers and readiness probes.
	DatabaseQuery = 5 * time.Second

	// ReadinessCheck bounds /readyz.
	ReadinessCheck = 2 * time.Second
)

// Backup timeouts
const (
	// BackupUpload bounds snapshot + compression + upload.
	BackupUpload = 5 * time.Minute
)

// Background job intervals
const (
	// RateLimiterCleanupInterval drops idle per-client limiters.
	RateLimiterCleanupInterval = 5 * time.Minute

	// MetricsUpdateInterval refreshes gauges read from the database.
	MetricsUpdateInterval = time.Minute
)
