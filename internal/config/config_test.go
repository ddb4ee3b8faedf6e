package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "5000" {
		t.Errorf("Expected default port '5000', got '%s'", cfg.Port)
	}
	if cfg.ShutdownTimeout != ServerShutdown {
		t.Errorf("Expected default shutdown timeout %v, got %v", ServerShutdown, cfg.ShutdownTimeout)
	}
	if got := cfg.SQLitePath(); !strings.HasSuffix(got, "portal.db") {
		t.Errorf("Expected SQLite path to end in portal.db, got %s", got)
	}
	if cfg.LLMActive() {
		t.Error("Expected LLM to be inactive without API keys")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvPort, "8080")
	t.Setenv(EnvLLMProviders, " Groq, ,gemini ")
	t.Setenv(EnvGroqAPIKey, "gsk_test")
	t.Setenv(EnvLLMTimeout, "3s")
	t.Setenv(EnvChatRateBurst, "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if want := []string{"groq", "gemini"}; strings.Join(cfg.LLM.Providers, ",") != strings.Join(want, ",") {
		t.Errorf("Providers = %v, want %v", cfg.LLM.Providers, want)
	}
	if cfg.LLM.Timeout != 3*time.Second {
		t.Errorf("LLM timeout = %v, want 3s", cfg.LLM.Timeout)
	}
	if cfg.ChatRateBurst != 10 {
		t.Errorf("invalid float should fall back to default, got %v", cfg.ChatRateBurst)
	}
	if !cfg.LLMActive() {
		t.Error("Expected LLM to be active with a Groq key")
	}
}

func TestSQLitePath_Absolute(t *testing.T) {
	t.Parallel()
	cfg := &Config{DataDir: "/data", DBFile: "/tmp/other.db"}
	if got := cfg.SQLitePath(); got != "/tmp/other.db" {
		t.Errorf("SQLitePath() = %q", got)
	}
}

func validConfig() *Config {
	return &Config{
		Port:            "5000",
		GinMode:         "release",
		DataDir:         "./data",
		DBFile:          "portal.db",
		ShutdownTimeout: time.Second,
		ChatRateBurst:   1,
		ChatRateRefill:  1,
		LLMRateBurst:    1,
		LLMRateRefill:   1,
		LLM:             LLMConfig{Timeout: time.Second},
		Sentry:          SentryConfig{SampleRate: 1},
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Port = "http" }, errContains: EnvPort},
		{name: "port out of range", mutate: func(c *Config) { c.Port = "70000" }, errContains: EnvPort},
		{name: "unknown gin mode", mutate: func(c *Config) { c.GinMode = "prod" }, errContains: EnvGinMode},
		{name: "negative daily", mutate: func(c *Config) { c.LLMRateDaily = -1 }, errContains: EnvLLMRateDaily},
		{name: "backup incomplete", mutate: func(c *Config) { c.Backup.Enabled = true }, errContains: "backup requires"},
		{name: "sentry without dsn", mutate: func(c *Config) { c.Sentry.Enabled = true }, errContains: EnvSentryDSN},
		{name: "metrics auth without password", mutate: func(c *Config) { c.Metrics.AuthEnabled = true }, errContains: EnvMetricsPassword},
		{name: "sample rate", mutate: func(c *Config) { c.Sentry.SampleRate = 2 }, errContains: EnvSentrySampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errContains == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Fatalf("Validate() error = %v, want it to mention %q", err, tt.errContains)
			}
		})
	}
}

func TestValidate_JoinsAllErrors(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Port = ""
	cfg.DataDir = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), EnvPort) || !strings.Contains(err.Error(), EnvDataDir) {
		t.Errorf("expected both problems to be reported, got %v", err)
	}
}
