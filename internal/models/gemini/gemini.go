// Package gemini relays prompts to Google's Gemini API.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/lewisedginton/gemini_relay_bot/internal/relay"
	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Config holds client settings.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint. Empty uses the SDK default.
	BaseURL string
}

// Generator implements relay.Generator on top of the genai client.
type Generator struct {
	client *genai.Client
	model  string
	log    logger.Logger
}

// New creates a Generator. A missing API key is not an error: every
// Generate call then fails with a diagnostic instead.
func New(ctx context.Context, cfg Config, log logger.Logger) (*Generator, error) {
	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultModel
	}

	g := &Generator{
		model: modelName,
		log:   log.WithFields(logger.StringField("component", "gemini"), logger.ModelField(modelName)),
	}
	if cfg.APIKey == "" {
		g.log.Warn("Gemini API key is not set, requests will fail")
		return g, nil
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	g.client = client
	return g, nil
}

// Name returns the provider name.
func (g *Generator) Name() string {
	return "gemini"
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	return g.model
}

// Generate sends prompt as a single-turn request.
func (g *Generator) Generate(ctx context.Context, prompt string) relay.Result {
	if g.client == nil {
		return relay.Failedf("gemini API key is not configured")
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return relay.Failed(err)
	}

	text := resp.Text()
	if text == "" {
		return relay.Failedf("%s", emptyReason(resp))
	}

	g.log.Debug("Received response", logger.IntField("response_len", len(text)))
	return relay.Success(text)
}

// emptyReason explains a response that carried no text.
func emptyReason(resp *genai.GenerateContentResponse) string {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return fmt.Sprintf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
		return fmt.Sprintf("response contained no text (finish reason %s)", resp.Candidates[0].FinishReason)
	}
	return "response contained no text"
}
