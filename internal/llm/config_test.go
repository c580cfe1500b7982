package llm

import (
	"testing"

	"github.com/jonathan/strategy-report/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := ConfigFor(ProviderGemini)

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	// Unknown tier should fallback to TierStandard, then TierLite
	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
}

func TestGetModel_EmptyConfig(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models:   map[ModelTier]string{},
	}

	// Empty config should return empty string
	assert.Equal(t, "", config.GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithModel(TierAdvanced, "custom-model")

	// Original should be unchanged
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))

	// New config should have custom model
	assert.Equal(t, "custom-model", newConfig.GetModel(TierAdvanced))

	// Other tiers should be copied
	assert.Equal(t, "gemini-2.5-flash-lite", newConfig.GetModel(TierLite))
}

func TestModelTierConstants(t *testing.T) {
	assert.Equal(t, ModelTier("lite"), TierLite)
	assert.Equal(t, ModelTier("standard"), TierStandard)
	assert.Equal(t, ModelTier("advanced"), TierAdvanced)
}

func TestDefaultAnthropicConfig(t *testing.T) {
	config := ConfigFor(ProviderAnthropic)

	assert.Equal(t, ProviderAnthropic, config.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", config.GetModel(TierStandard))
	assert.Equal(t, "claude-opus-4-20250514", config.GetModel(TierAdvanced))
}

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in      string
		want    Provider
		wantErr bool
	}{
		{"", ProviderGemini, false},
		{"Gemini", ProviderGemini, false},
		{"anthropic", ProviderAnthropic, false},
		{"claude", ProviderAnthropic, false},
		{"openai", "", true},
	}
	for _, tt := range tests {
		got, err := ParseProvider(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, TierStandard, TierFor(types.FrameworkPestel))
	assert.Equal(t, TierStandard, TierFor(types.FrameworkSwot))
	assert.Equal(t, TierAdvanced, TierFor(types.FrameworkSynthesis))
	assert.Equal(t, TierAdvanced, TierFor(types.FrameworkScenarios))
	assert.Equal(t, TierAdvanced, TierFor(types.FrameworkDecisionMatrix))
}

func TestConfig_TemperatureAndSystem(t *testing.T) {
	cfg := DefaultGeminiConfig()
	assert.Less(t, cfg.Temperature(TierStandard), cfg.Temperature(TierAdvanced))
	assert.Equal(t, DefaultSystemPrompt, cfg.System())

	cfg = &Config{SystemPrompt: "Seja breve."}
	assert.Equal(t, float32(0.2), cfg.Temperature(TierAdvanced))
	assert.Equal(t, "Seja breve.", cfg.System())
}

func TestWithModel_DoesNotShareMaps(t *testing.T) {
	base := DefaultGeminiConfig()
	next := base.WithModel(TierLite, "gemini-test")
	next.Temperatures[TierLite] = 0.9

	assert.Equal(t, "gemini-2.5-flash-lite", base.GetModel(TierLite))
	assert.Equal(t, float32(0.1), base.Temperature(TierLite))
	assert.Equal(t, base.MaxOutputTokens, next.MaxOutputTokens)
}
