// Package config provides configuration loading and validation for the
// report agent. Values come from the environment and an optional JSON file;
// the environment wins.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/strategy-report/internal/llm"
)

// Defaults
const (
	DefaultPort                      = "8080"
	DefaultStageChangeTimeoutSeconds = 30
	DefaultGenerationTimeoutSeconds  = 300
	DefaultPublicOrigin              = "http://localhost:8080"
)

// Config is the service configuration. All fields are optional in the file.
type Config struct {
	Port         string `json:"port,omitempty"`
	PublicOrigin string `json:"public_origin,omitempty"` // origin used in share links

	// Backend: either a REST backend or a direct Postgres connection
	BackendURL   string `json:"backend_url,omitempty"`
	BackendToken string `json:"backend_token,omitempty"`
	DatabaseURL  string `json:"database_url,omitempty"`

	// Wizard generation
	LLMProvider     string `json:"llm_provider,omitempty"` // gemini or anthropic
	GeminiAPIKey    string `json:"gemini_api_key,omitempty"`
	AnthropicAPIKey string `json:"anthropic_api_key,omitempty"`
	GenerationURL   string `json:"generation_url,omitempty"` // external service; takes precedence over the LLM
	GenerationToken string `json:"generation_token,omitempty"`

	StageChangeTimeoutSeconds int `json:"stage_change_timeout_seconds,omitempty"`
	GenerationTimeoutSeconds  int `json:"generation_timeout_seconds,omitempty"`

	Verbose bool `json:"verbose,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:                      DefaultPort,
		PublicOrigin:              DefaultPublicOrigin,
		LLMProvider:               string(llm.ProviderGemini),
		StageChangeTimeoutSeconds: DefaultStageChangeTimeoutSeconds,
		GenerationTimeoutSeconds:  DefaultGenerationTimeoutSeconds,
	}
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// FromEnv reads the configuration from environment variables. Unparseable
// numbers are reported as negative so Validate rejects them.
func FromEnv() Config {
	return Config{
		Port:                      os.Getenv("PORT"),
		PublicOrigin:              os.Getenv("PUBLIC_ORIGIN"),
		BackendURL:                os.Getenv("BACKEND_URL"),
		BackendToken:              os.Getenv("BACKEND_TOKEN"),
		DatabaseURL:               os.Getenv("DATABASE_URL"),
		LLMProvider:               os.Getenv("LLM_PROVIDER"),
		GeminiAPIKey:              os.Getenv("GEMINI_API_KEY"),
		AnthropicAPIKey:           os.Getenv("ANTHROPIC_API_KEY"),
		GenerationURL:             os.Getenv("GENERATION_URL"),
		GenerationToken:           os.Getenv("GENERATION_TOKEN"),
		StageChangeTimeoutSeconds: envInt("STAGE_CHANGE_TIMEOUT"),
		GenerationTimeoutSeconds:  envInt("GENERATION_TIMEOUT"),
		Verbose:                   os.Getenv("VERBOSE") == "true",
	}
}

func envInt(name string) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

// Load merges the environment, the optional file at path, and Defaults, in
// that order of precedence.
func Load(path string) (*Config, error) {
	cfg := FromEnv()
	if path != "" {
		file, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = cfg.MergeWithDefaults(*file)
	}
	cfg = cfg.MergeWithDefaults(Defaults())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values. Which backend is
// required depends on the command, so none is enforced here.
func (c *Config) Validate() error {
	if c.Port != "" {
		if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
			return fmt.Errorf("config error: invalid port %q", c.Port)
		}
	}
	for name, raw := range map[string]string{
		"backend_url":    c.BackendURL,
		"generation_url": c.GenerationURL,
		"public_origin":  c.PublicOrigin,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config error: '%s' must be an http(s) URL, got %q", name, raw)
		}
	}
	if _, err := llm.ParseProvider(c.LLMProvider); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.StageChangeTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'stage_change_timeout_seconds' must be non-negative")
	}
	if c.GenerationTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'generation_timeout_seconds' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&result.Port, defaults.Port)
	fill(&result.PublicOrigin, defaults.PublicOrigin)
	fill(&result.BackendURL, defaults.BackendURL)
	fill(&result.BackendToken, defaults.BackendToken)
	fill(&result.DatabaseURL, defaults.DatabaseURL)
	fill(&result.LLMProvider, defaults.LLMProvider)
	fill(&result.GeminiAPIKey, defaults.GeminiAPIKey)
	fill(&result.AnthropicAPIKey, defaults.AnthropicAPIKey)
	fill(&result.GenerationURL, defaults.GenerationURL)
	fill(&result.GenerationToken, defaults.GenerationToken)

	if result.StageChangeTimeoutSeconds == 0 {
		result.StageChangeTimeoutSeconds = defaults.StageChangeTimeoutSeconds
	}
	if result.GenerationTimeoutSeconds == 0 {
		result.GenerationTimeoutSeconds = defaults.GenerationTimeoutSeconds
	}

	// Bools cannot distinguish unset from false; either source enables.
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}

// Provider returns the parsed LLM provider, Gemini when unset or invalid.
func (c *Config) Provider() llm.Provider {
	p, err := llm.ParseProvider(c.LLMProvider)
	if err != nil {
		return llm.ProviderGemini
	}
	return p
}

// LLMAPIKey returns the API key for the configured provider.
func (c *Config) LLMAPIKey() string {
	if c.Provider() == llm.ProviderAnthropic {
		return c.AnthropicAPIKey
	}
	return c.GeminiAPIKey
}

// StageChangeTimeout is the deadline applied to each stage-change call.
func (c *Config) StageChangeTimeout() time.Duration {
	return time.Duration(c.StageChangeTimeoutSeconds) * time.Second
}

// GenerationTimeout is the deadline applied to each wizard generation call.
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.GenerationTimeoutSeconds) * time.Second
}
