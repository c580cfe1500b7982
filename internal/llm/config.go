// Package llm provides LLM configuration and client abstractions used by the
// framework generator.
package llm

import (
	"fmt"
	"maps"
	"strings"

	"github.com/jonathan/strategy-report/internal/types"
)

// DefaultSystemPrompt frames every generation call.
const DefaultSystemPrompt = "Você é um consultor de estratégia empresarial. Responda em português do Brasil, sem inventar fatos."

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short rewrites and summaries
	TierLite ModelTier = "lite"
	// TierStandard is for single-framework generation
	TierStandard ModelTier = "standard"
	// TierAdvanced is for the steps that read every other framework
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Supported providers
const (
	ProviderGemini    Provider = "gemini"
	ProviderAnthropic Provider = "anthropic"
)

// ParseProvider maps a config string onto a provider. Empty means Gemini.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case "", ProviderGemini:
		return ProviderGemini, nil
	case ProviderAnthropic, "claude":
		return ProviderAnthropic, nil
	default:
		return "", fmt.Errorf("unsupported LLM provider: %q", s)
	}
}

// Config holds the model configuration for the application
type Config struct {
	Provider     Provider
	Models       map[ModelTier]string
	Temperatures map[ModelTier]float32
	// SystemPrompt defaults to DefaultSystemPrompt when empty.
	SystemPrompt    string
	MaxOutputTokens int32
}

// defaultTemperatures keep single frameworks close to the inputs and give
// the cross-framework steps more room.
func defaultTemperatures() map[ModelTier]float32 {
	return map[ModelTier]float32{
		TierLite:     0.1,
		TierStandard: 0.2,
		TierAdvanced: 0.4,
	}
}

// TierFor picks the model tier for a framework. Synthesis, scenarios and the
// decision matrix weigh the other frameworks against each other.
func TierFor(key types.FrameworkKey) ModelTier {
	switch key {
	case types.FrameworkSynthesis, types.FrameworkScenarios, types.FrameworkDecisionMatrix:
		return TierAdvanced
	default:
		return TierStandard
	}
}

// DefaultConfig returns the default configuration (Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// ConfigFor returns the default configuration for provider.
func ConfigFor(provider Provider) *Config {
	if provider == ProviderAnthropic {
		return DefaultAnthropicConfig()
	}
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperatures:    defaultTemperatures(),
		MaxOutputTokens: 8192,
	}
}

// DefaultAnthropicConfig returns the default Claude configuration
func DefaultAnthropicConfig() *Config {
	return &Config{
		Provider: ProviderAnthropic,
		Models: map[ModelTier]string{
			TierLite:     "claude-3-5-haiku-latest",
			TierStandard: "claude-sonnet-4-20250514",
			TierAdvanced: "claude-opus-4-20250514",
		},
		Temperatures:    defaultTemperatures(),
		MaxOutputTokens: 8192,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// Temperature returns the sampling temperature for tier.
func (c *Config) Temperature(tier ModelTier) float32 {
	if t, ok := c.Temperatures[tier]; ok {
		return t
	}
	return defaultTemperatures()[TierStandard]
}

// System returns the system prompt sent with every call.
func (c *Config) System() string {
	if strings.TrimSpace(c.SystemPrompt) == "" {
		return DefaultSystemPrompt
	}
	return c.SystemPrompt
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	cp := *c
	cp.Models = maps.Clone(c.Models)
	if cp.Models == nil {
		cp.Models = make(map[ModelTier]string)
	}
	cp.Temperatures = maps.Clone(c.Temperatures)
	cp.Models[tier] = model
	return &cp
}
