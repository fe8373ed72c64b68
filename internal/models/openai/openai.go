// Package openai relays prompts to OpenAI chat completions.
package openai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/lewisedginton/gemini_relay_bot/internal/relay"
	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// Config holds client settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Generator implements relay.Generator for OpenAI's GPT models.
type Generator struct {
	client    *openai.Client
	modelName string
	log       logger.Logger
}

// New creates a Generator. Without an API key every call fails.
func New(cfg Config, log logger.Logger) *Generator {
	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultModel
	}

	g := &Generator{
		modelName: modelName,
		log:       log.WithFields(logger.StringField("component", "openai"), logger.ModelField(modelName)),
	}
	if cfg.APIKey == "" {
		g.log.Warn("OpenAI API key is not set, requests will fail")
		return g
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	g.client = &client
	return g
}

// Name returns the provider name.
func (g *Generator) Name() string {
	return "openai"
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	return g.modelName
}

// Generate sends prompt as the only user message of a chat completion.
func (g *Generator) Generate(ctx context.Context, prompt string) relay.Result {
	if g.client == nil {
		return relay.Failedf("openai API key is not configured")
	}

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.modelName,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return relay.Failed(err)
	}

	if len(completion.Choices) == 0 {
		return relay.Failedf("no choices in response")
	}
	choice := completion.Choices[0]
	if choice.Message.Content == "" {
		return relay.Failedf("response contained no text (finish reason %s)", choice.FinishReason)
	}

	g.log.Debug("Received response", logger.IntField("response_len", len(choice.Message.Content)))
	return relay.Success(choice.Message.Content)
}
