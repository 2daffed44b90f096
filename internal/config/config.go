package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"abkpi/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	AI       AIConfig
	Server   ServerConfig
	Analysis AnalysisDefaults
	LogLevel string
}

// DatabaseConfig holds database connection settings. An empty URL selects
// the in-memory run store.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// Enabled reports whether runs are persisted to PostgreSQL.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// AIConfig holds AI/LLM related settings
type AIConfig struct {
	Provider      string
	GeminiKey     string
	OpenAIKey     string
	OpenAIBaseURL string
	Model         string
	MaxTokens     int
	Timeout       time.Duration
}

// Enabled reports whether the configured provider has a key.
func (a AIConfig) Enabled() bool {
	switch a.Provider {
	case ProviderGemini:
		return a.GeminiKey != ""
	case ProviderOpenAI:
		return a.OpenAIKey != ""
	}
	return false
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port          string
	GinMode       string
	MaxUploadSize int64
}

// AnalysisDefaults holds engine settings that are not per-run.
type AnalysisDefaults struct {
	Workers         int
	AnchorKeyword   string
	FallbackCountry string
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: loadDatabaseConfig(),
		Server:   loadServerConfig(),
		Analysis: loadAnalysisDefaults(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	aiConfig, err := loadAIConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AI configuration")
	}
	config.AI = *aiConfig

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:             os.Getenv("DATABASE_URL"),
		MaxOpenConns:    getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
		ConnMaxLifetime: getEnvDurationOrDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute),
	}
}

func loadAIConfig() (*AIConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderGemini))
	if provider != ProviderGemini && provider != ProviderOpenAI {
		return nil, errors.ConfigInvalid("AI_PROVIDER must be gemini or openai, got " + provider)
	}

	model := os.Getenv("LLM_MODEL")
	if model == "" {
		if provider == ProviderGemini {
			model = "gemini-2.5-flash"
		} else {
			model = "gpt-4o-mini"
		}
	}

	return &AIConfig{
		Provider:      provider,
		GeminiKey:     os.Getenv("GEMINI_API_KEY"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		Model:         model,
		MaxTokens:     getEnvIntOrDefault("AI_MAX_TOKENS", 2000),
		Timeout:       getEnvDurationOrDefault("AI_TIMEOUT", 60*time.Second),
	}, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:          getEnvOrDefault("PORT", "8080"),
		GinMode:       getEnvOrDefault("GIN_MODE", "release"),
		MaxUploadSize: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 32)) << 20,
	}
}

func loadAnalysisDefaults() AnalysisDefaults {
	return AnalysisDefaults{
		Workers:         getEnvIntOrDefault("ANALYSIS_WORKERS", 0),
		AnchorKeyword:   getEnvOrDefault("ANCHOR_KEYWORD", "Segments"),
		FallbackCountry: strings.ToUpper(getEnvOrDefault("FALLBACK_COUNTRY", "UK")),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.AI.Timeout <= 0 {
		return errors.ConfigInvalid("AI_TIMEOUT must be positive")
	}
	if config.Analysis.Workers < 0 {
		return errors.ConfigInvalid("ANALYSIS_WORKERS cannot be negative")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
