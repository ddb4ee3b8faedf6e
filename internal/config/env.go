// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "PORTAL_PORT"
	EnvLogLevel        = "PORTAL_LOG_LEVEL"
	EnvShutdownTimeout = "PORTAL_SHUTDOWN_TIMEOUT"
	EnvGinMode         = "PORTAL_GIN_MODE"
	EnvTimezone        = "PORTAL_TIMEZONE"

	// Data
	EnvDataDir = "PORTAL_DATA_DIR"
	EnvDBFile  = "PORTAL_DB_FILE"

	// Rate Limits
	EnvChatRateBurst  = "PORTAL_CHAT_RATE_BURST"
	EnvChatRateRefill = "PORTAL_CHAT_RATE_REFILL"
	EnvLLMRateBurst   = "PORTAL_LLM_RATE_BURST"
	EnvLLMRateRefill  = "PORTAL_LLM_RATE_REFILL"
	EnvLLMRateDaily   = "PORTAL_LLM_RATE_DAILY"

	// LLM Feature
	EnvLLMEnabled     = "PORTAL_LLM_ENABLED"
	EnvLLMProviders   = "PORTAL_LLM_PROVIDERS"
	EnvLLMTimeout     = "PORTAL_LLM_TIMEOUT"
	EnvGeminiAPIKey   = "PORTAL_GEMINI_API_KEY"
	EnvOpenAIAPIKey   = "PORTAL_OPENAI_API_KEY"
	EnvOpenAIBaseURL  = "PORTAL_OPENAI_BASE_URL"
	EnvGroqAPIKey     = "PORTAL_GROQ_API_KEY"
	EnvCerebrasAPIKey = "PORTAL_CEREBRAS_API_KEY"
	EnvGeminiModels   = "PORTAL_GEMINI_MODELS"
	EnvOpenAIModels   = "PORTAL_OPENAI_MODELS"
	EnvGroqModels     = "PORTAL_GROQ_MODELS"
	EnvCerebrasModels = "PORTAL_CEREBRAS_MODELS"

	// Backup Feature (S3-compatible object storage)
	EnvBackupEnabled     = "PORTAL_BACKUP_ENABLED"
	EnvBackupEndpoint    = "PORTAL_BACKUP_ENDPOINT"
	EnvBackupRegion      = "PORTAL_BACKUP_REGION"
	EnvBackupAccessKeyID = "PORTAL_BACKUP_ACCESS_KEY_ID"
	EnvBackupSecretKey   = "PORTAL_BACKUP_SECRET_ACCESS_KEY"
	EnvBackupBucket      = "PORTAL_BACKUP_BUCKET"
	EnvBackupPrefix      = "PORTAL_BACKUP_PREFIX"
	EnvBackupInterval    = "PORTAL_BACKUP_INTERVAL" // 0 disables scheduled pushes

	// Sentry Feature
	EnvSentryEnabled     = "PORTAL_SENTRY_ENABLED"
	EnvSentryDSN         = "PORTAL_SENTRY_DSN"
	EnvSentryEnvironment = "PORTAL_SENTRY_ENVIRONMENT"
	EnvSentryRelease     = "PORTAL_SENTRY_RELEASE"
	EnvSentrySampleRate  = "PORTAL_SENTRY_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackEnabled  = "PORTAL_BETTERSTACK_ENABLED"
	EnvBetterStackToken    = "PORTAL_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "PORTAL_BETTERSTACK_ENDPOINT"

	// Metrics Auth Feature
	EnvMetricsAuthEnabled = "PORTAL_METRICS_AUTH_ENABLED"
	EnvMetricsUsername    = "PORTAL_METRICS_USERNAME"
	EnvMetricsPassword    = "PORTAL_METRICS_PASSWORD"
)
