// Package config provides application configuration management.
// Settings come from environment variables (optionally seeded from a .env
// file) with the PORTAL_ prefix; see env.go for the full key list.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Server
	Port            string
	LogLevel        string
	GinMode         string
	Timezone        string
	ShutdownTimeout time.Duration

	// Data
	DataDir string
	DBFile  string

	// Rate limits (token bucket)
	ChatRateBurst  float64 // Max burst of chat messages per client
	ChatRateRefill float64 // Chat tokens refilled per second
	LLMRateBurst   float64 // Max burst of LLM calls per client
	LLMRateRefill  float64 // LLM tokens refilled per hour
	LLMRateDaily   int     // Max LLM calls per client per day (0 = unlimited)

	LLM         LLMConfig
	Backup      BackupConfig
	Sentry      SentryConfig
	BetterStack BetterStackConfig
	Metrics     MetricsConfig
}

// LLMConfig configures the optional augmentation of unmatched chat messages.
type LLMConfig struct {
	Enabled        bool
	Providers      []string
	Timeout        time.Duration
	GeminiAPIKey   string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	GroqAPIKey     string
	CerebrasAPIKey string
	GeminiModels   []string
	OpenAIModels   []string
	GroqModels     []string
	CerebrasModels []string
}

// HasAnyKey reports whether any provider has an API key.
func (c LLMConfig) HasAnyKey() bool {
	return c.GeminiAPIKey != "" || c.OpenAIAPIKey != "" || c.GroqAPIKey != "" || c.CerebrasAPIKey != ""
}

// BackupConfig configures database snapshots to S3-compatible storage.
type BackupConfig struct {
	Enabled     bool
	Endpoint    string
	Region      string
	AccessKeyID string
	SecretKey   string
	Bucket      string
	Prefix      string
	Interval    time.Duration
}

// SentryConfig configures error tracking.
type SentryConfig struct {
	Enabled     bool
	DSN         string
	Environment string
	Release     string
	SampleRate  float64
}

// BetterStackConfig configures remote log shipping.
type BetterStackConfig struct {
	Enabled  bool
	Token    string
	Endpoint string
}

// MetricsConfig configures Basic Auth on /metrics.
type MetricsConfig struct {
	AuthEnabled bool
	Username    string
	Password    string
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv(EnvPort, "5000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		GinMode:         getEnv(EnvGinMode, "release"),
		Timezone:        getEnv(EnvTimezone, ""),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, ServerShutdown),

		DataDir: getEnv(EnvDataDir, "./data"),
		DBFile:  getEnv(EnvDBFile, "portal.db"),

		ChatRateBurst:  getFloatEnv(EnvChatRateBurst, 10),
		ChatRateRefill: getFloatEnv(EnvChatRateRefill, 0.5),
		LLMRateBurst:   getFloatEnv(EnvLLMRateBurst, 20),
		LLMRateRefill:  getFloatEnv(EnvLLMRateRefill, 30),
		LLMRateDaily:   getIntEnv(EnvLLMRateDaily, 200),

		LLM: LLMConfig{
			Enabled:        getBoolEnv(EnvLLMEnabled, true),
			Providers:      getListEnv(EnvLLMProviders, []string{"gemini", "openai", "groq", "cerebras"}),
			Timeout:        getDurationEnv(EnvLLMTimeout, LLMRequest),
			GeminiAPIKey:   getEnv(EnvGeminiAPIKey, ""),
			OpenAIAPIKey:   getEnv(EnvOpenAIAPIKey, ""),
			OpenAIBaseURL:  getEnv(EnvOpenAIBaseURL, ""),
			GroqAPIKey:     getEnv(EnvGroqAPIKey, ""),
			CerebrasAPIKey: getEnv(EnvCerebrasAPIKey, ""),
			GeminiModels:   getListEnv(EnvGeminiModels, nil),
			OpenAIModels:   getListEnv(EnvOpenAIModels, nil),
			GroqModels:     getListEnv(EnvGroqModels, nil),
			CerebrasModels: getListEnv(EnvCerebrasModels, nil),
		},

		Backup: BackupConfig{
			Enabled:     getBoolEnv(EnvBackupEnabled, false),
			Endpoint:    getEnv(EnvBackupEndpoint, ""),
			Region:      getEnv(EnvBackupRegion, "auto"),
			AccessKeyID: getEnv(EnvBackupAccessKeyID, ""),
			SecretKey:   getEnv(EnvBackupSecretKey, ""),
			Bucket:      getEnv(EnvBackupBucket, ""),
			Prefix:      getEnv(EnvBackupPrefix, "backups/"),
			Interval:    getDurationEnv(EnvBackupInterval, 24*time.Hour),
		},

		Sentry: SentryConfig{
			Enabled:     getBoolEnv(EnvSentryEnabled, false),
			DSN:         getEnv(EnvSentryDSN, ""),
			Environment: getEnv(EnvSentryEnvironment, "production"),
			Release:     getEnv(EnvSentryRelease, ""),
			SampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),
		},

		BetterStack: BetterStackConfig{
			Enabled:  getBoolEnv(EnvBetterStackEnabled, false),
			Token:    getEnv(EnvBetterStackToken, ""),
			Endpoint: getEnv(EnvBetterStackEndpoint, ""),
		},

		Metrics: MetricsConfig{
			AuthEnabled: getBoolEnv(EnvMetricsAuthEnabled, false),
			Username:    getEnv(EnvMetricsUsername, "prometheus"),
			Password:    getEnv(EnvMetricsPassword, ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvPort))
	} else if n, err := strconv.Atoi(c.Port); err != nil || n <= 0 || n > 65535 {
		errs = append(errs, fmt.Errorf("%s must be a TCP port, got %q", EnvPort, c.Port))
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("%s must be debug, release or test, got %q", EnvGinMode, c.GinMode))
	}
	if c.DataDir == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvDataDir))
	}
	if c.DBFile == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvDBFile))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvShutdownTimeout, c.ShutdownTimeout))
	}
	if c.ChatRateBurst <= 0 || c.ChatRateRefill <= 0 {
		errs = append(errs, errors.New("chat rate limit burst and refill must be positive"))
	}
	if c.LLMRateBurst <= 0 || c.LLMRateRefill <= 0 {
		errs = append(errs, errors.New("LLM rate limit burst and refill must be positive"))
	}
	if c.LLMRateDaily < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative, got %d", EnvLLMRateDaily, c.LLMRateDaily))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvLLMTimeout, c.LLM.Timeout))
	}

	if c.Backup.Enabled {
		if c.Backup.Endpoint == "" || c.Backup.AccessKeyID == "" || c.Backup.SecretKey == "" || c.Backup.Bucket == "" {
			errs = append(errs, errors.New("backup requires endpoint, access key, secret key and bucket"))
		}
	}
	if c.Sentry.Enabled && c.Sentry.DSN == "" {
		errs = append(errs, fmt.Errorf("%s is required when Sentry is enabled", EnvSentryDSN))
	}
	if c.Sentry.SampleRate < 0 || c.Sentry.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("%s must be between 0 and 1, got %v", EnvSentrySampleRate, c.Sentry.SampleRate))
	}
	if c.BetterStack.Enabled && c.BetterStack.Token == "" {
		errs = append(errs, fmt.Errorf("%s is required when Better Stack is enabled", EnvBetterStackToken))
	}
	if c.Metrics.AuthEnabled && c.Metrics.Password == "" {
		errs = append(errs, fmt.Errorf("%s is required when metrics auth is enabled", EnvMetricsPassword))
	}

	return errors.Join(errs...)
}

// SQLitePath returns the full path to the SQLite database file.
func (c *Config) SQLitePath() string {
	if filepath.IsAbs(c.DBFile) {
		return c.DBFile
	}
	return filepath.Join(c.DataDir, c.DBFile)
}

// LLMActive reports whether chat augmentation should be wired.
func (c *Config) LLMActive() bool {
	return c.LLM.Enabled && c.LLM.HasAnyKey()
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getListEnv splits a comma-separated value, dropping blanks.
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
