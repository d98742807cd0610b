package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// geminiKeyEnv must match the environment variable name exactly
// (case-sensitive); see lookupGeminiKey for the BOM-tolerant fallback.
const geminiKeyEnv = "GEMINI_API_KEY"

type Config struct {
	// Backend API
	APIURL   string `env:"BOOKHUB_API_URL" default:"http://localhost:3000"`
	AssetURL string `env:"BOOKHUB_ASSET_URL" default:"http://localhost:3080"`

	// Assistant
	GeminiAPIKey string `env:"GEMINI_API_KEY"`

	// Development
	LogLevel string `env:"LOG_LEVEL" default:"info"`
}

// Load loads configuration from environment variables, with an optional
// .env file in the working directory.
func Load() (*Config, error) {
	// A missing .env file is fine, system env vars still apply.
	_ = godotenv.Load()

	config := &Config{}

	if err := loadEnvString(&config.APIURL, "BOOKHUB_API_URL", "http://localhost:3000"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.AssetURL, "BOOKHUB_ASSET_URL", "http://localhost:3080"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.LogLevel, "LOG_LEVEL", "info"); err != nil {
		return nil, err
	}

	config.GeminiAPIKey = lookupGeminiKey()

	return config, nil
}

// HasGeminiKey reports whether an assistant API key is configured.
func (c *Config) HasGeminiKey() bool {
	return c.GeminiAPIKey != ""
}

// lookupGeminiKey reads the assistant API key from the environment. Some
// .env files written on Windows carry a UTF-8 byte order mark that ends up
// glued to the first variable name, so when the exact lookup misses we scan
// the environment for a name that matches after stripping a leading BOM
// and surrounding whitespace.
func lookupGeminiKey() string {
	if value := os.Getenv(geminiKeyEnv); value != "" {
		return value
	}

	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		normalized := strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))
		if normalized == geminiKeyEnv && value != "" {
			return value
		}
	}
	return ""
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) error {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
	return nil
}
