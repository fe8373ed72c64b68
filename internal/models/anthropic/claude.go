// Package anthropic relays prompts to the Claude Messages API.
package anthropic

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/lewisedginton/gemini_relay_bot/internal/relay"
	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
)

const defaultMaxTokens = 4000

// Config holds client settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// ClaudeGenerator implements relay.Generator for Anthropic Claude models.
type ClaudeGenerator struct {
	client    *anthropic.Client
	modelName string
	log       logger.Logger
}

// NewClaudeGenerator creates a generator. Without an API key every call fails.
func NewClaudeGenerator(cfg Config, log logger.Logger) *ClaudeGenerator {
	modelName := cfg.Model
	if modelName == "" {
		modelName = string(anthropic.ModelClaudeSonnet4_5_20250929)
	}

	c := &ClaudeGenerator{
		modelName: modelName,
		log:       log.WithFields(logger.StringField("component", "claude"), logger.ModelField(modelName)),
	}
	if cfg.APIKey == "" {
		c.log.Warn("Anthropic API key is not set, requests will fail")
		return c
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)
	c.client = &client
	return c
}

// Name returns the provider name.
func (c *ClaudeGenerator) Name() string {
	return "anthropic"
}

// Model returns the configured model name.
func (c *ClaudeGenerator) Model() string {
	return c.modelName
}

// Generate sends prompt as a single user turn and joins the text blocks of the reply.
func (c *ClaudeGenerator) Generate(ctx context.Context, prompt string) relay.Result {
	if c.client == nil {
		return relay.Failedf("anthropic API key is not configured")
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.modelName),
		MaxTokens: defaultMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return relay.Failed(err)
	}

	var parts []string
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok && text.Text != "" {
			parts = append(parts, text.Text)
		}
	}
	if len(parts) == 0 {
		return relay.Failedf("response contained no text (stop reason %s)", resp.StopReason)
	}

	c.log.Debug("Received response", logger.IntField("content_blocks", len(resp.Content)))
	return relay.Success(strings.Join(parts, "\n"))
}
