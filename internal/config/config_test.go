package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOOKHUB_API_URL", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.APIURL)
	assert.Equal(t, "http://localhost:3080", cfg.AssetURL)
	assert.False(t, cfg.HasGeminiKey())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BOOKHUB_API_URL", "http://api.example:9000")
	t.Setenv("GEMINI_API_KEY", "abc123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://api.example:9000", cfg.APIURL)
	assert.True(t, cfg.HasGeminiKey())
	assert.Equal(t, "abc123", cfg.GeminiAPIKey)
}

func TestLookupGeminiKey_BOMTolerant(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("\uFEFFGEMINI_API_KEY", "bom-key")

	assert.Equal(t, "bom-key", lookupGeminiKey())
}

func TestLookupGeminiKey_CaseSensitive(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("gemini_api_key", "lower")

	assert.Empty(t, lookupGeminiKey(), "the variable name must match case-sensitively")
}
