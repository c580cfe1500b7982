package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonathan/strategy-report/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"PORT", "PUBLIC_ORIGIN", "BACKEND_URL", "BACKEND_TOKEN", "DATABASE_URL",
	"LLM_PROVIDER", "GEMINI_API_KEY", "ANTHROPIC_API_KEY", "GENERATION_URL",
	"GENERATION_TOKEN", "STAGE_CHANGE_TIMEOUT", "GENERATION_TIMEOUT", "VERBOSE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range envVars {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, `{
		"backend_url": "https://api.example.com",
		"llm_provider": "anthropic",
		"stage_change_timeout_seconds": 10,
		"verbose": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.BackendURL)
	assert.Equal(t, "anthropic", cfg.LLMProvider)
	assert.Equal(t, 10, cfg.StageChangeTimeoutSeconds)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_Errors(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{ invalid json }`))
	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "failed to parse config JSON")

	cfg, err = LoadConfig("/nonexistent/path/config.json")
	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "failed to read config file")

	cfg, err = LoadConfig("")
	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "empty")
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("BACKEND_URL", "https://env.example.com")
	t.Setenv("STAGE_CHANGE_TIMEOUT", "5")

	path := writeConfig(t, `{"backend_url": "https://file.example.com", "port": "9090", "generation_timeout_seconds": 60}`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.BackendURL, "env wins over file")
	assert.Equal(t, "9090", cfg.Port, "file wins over defaults")
	assert.Equal(t, DefaultPublicOrigin, cfg.PublicOrigin)
	assert.Equal(t, 5*time.Second, cfg.StageChangeTimeout())
	assert.Equal(t, time.Minute, cfg.GenerationTimeout())
}

func TestLoad_DefaultsOnly(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, llm.ProviderGemini, cfg.Provider())
	assert.Equal(t, 30*time.Second, cfg.StageChangeTimeout())
}

func TestLoad_InvalidEnvNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("STAGE_CHANGE_TIMEOUT", "soon")
	_, err := Load("")
	assert.ErrorContains(t, err, "stage_change_timeout_seconds")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{Port: "8080", BackendURL: "http://localhost:3000", LLMProvider: "claude"}, ""},
		{"empty", Config{}, ""},
		{"bad port", Config{Port: "http"}, "invalid port"},
		{"port out of range", Config{Port: "70000"}, "invalid port"},
		{"bad backend url", Config{BackendURL: "localhost:3000"}, "backend_url"},
		{"bad generation url", Config{GenerationURL: "ftp://x"}, "generation_url"},
		{"bad provider", Config{LLMProvider: "openai"}, "unsupported"},
		{"negative timeout", Config{GenerationTimeoutSeconds: -1}, "generation_timeout_seconds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{BackendURL: "https://mine.example.com"}
	merged := cfg.MergeWithDefaults(Config{
		BackendURL:   "https://default.example.com",
		DatabaseURL:  "postgres://localhost/report",
		Verbose:      true,
		GeminiAPIKey: "g-key",
	})

	assert.Equal(t, "https://mine.example.com", merged.BackendURL)
	assert.Equal(t, "postgres://localhost/report", merged.DatabaseURL)
	assert.True(t, merged.Verbose)
	assert.Equal(t, "g-key", merged.LLMAPIKey())
	assert.Empty(t, cfg.DatabaseURL, "receiver is not modified")
}

func TestLLMAPIKey_Anthropic(t *testing.T) {
	cfg := Config{LLMProvider: "anthropic", GeminiAPIKey: "g", AnthropicAPIKey: "a"}
	assert.Equal(t, llm.ProviderAnthropic, cfg.Provider())
	assert.Equal(t, "a", cfg.LLMAPIKey())
}
