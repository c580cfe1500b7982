package llm

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicMessager is the subset of the Anthropic SDK used by AnthropicClient.
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...anthropicopt.RequestOption) (*anthropic.Message, error)
}

// AnthropicClient implements Client for Anthropic Claude
type AnthropicClient struct {
	messages AnthropicMessager
	config   *Config
}

// NewAnthropicClient creates a new Claude client
func NewAnthropicClient(config *Config, apiKey string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	c := anthropic.NewClient(anthropicopt.WithAPIKey(apiKey))
	return NewAnthropicClientWithMessager(config, &c.Messages), nil
}

// NewAnthropicClientWithMessager wires an existing messager, used by tests.
func NewAnthropicClientWithMessager(config *Config, messages AnthropicMessager) *AnthropicClient {
	if config == nil {
		config = DefaultAnthropicConfig()
	}
	return &AnthropicClient{messages: messages, config: config}
}

// GenerateContent generates text content using the specified model tier
func (c *AnthropicClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	maxTokens := int64(c.config.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	resp, err := c.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(modelName),
		MaxTokens:   maxTokens,
		System:      []anthropic.TextBlockParam{{Text: c.config.System()}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(float64(c.config.Temperature(tier))),
	})
	if err != nil {
		return "", fmt.Errorf("claude %s: %w", tier, err)
	}
	if resp.StopReason == anthropic.StopReasonMaxTokens {
		return "", ErrTruncated
	}

	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return sb.String(), nil
}

// GenerateJSON generates JSON content using the specified model tier
func (c *AnthropicClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	text, err := c.GenerateContent(ctx, prompt+"\n\nRetorne apenas JSON válido.", tier)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// GetModel returns the model name for a tier
func (c *AnthropicClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the SDK holds no long-lived resources.
func (c *AnthropicClient) Close() error {
	return nil
}
