// Package models builds the generation client selected by configuration.
package models

import (
	"context"
	"fmt"

	"github.com/lewisedginton/gemini_relay_bot/internal/config"
	"github.com/lewisedginton/gemini_relay_bot/internal/models/anthropic"
	"github.com/lewisedginton/gemini_relay_bot/internal/models/gemini"
	"github.com/lewisedginton/gemini_relay_bot/internal/models/openai"
	"github.com/lewisedginton/gemini_relay_bot/internal/relay"
	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
)

// Generator is a relay.Generator that also reports the model it calls.
type Generator interface {
	relay.Generator
	Model() string
}

// New returns the generator for cfg.LLM.Provider.
func New(ctx context.Context, cfg *config.AppConfig, log logger.Logger) (relay.Generator, error) {
	var gen Generator
	switch cfg.LLM.Normalized() {
	case config.ProviderGemini:
		g, err := gemini.New(ctx, gemini.Config{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			BaseURL: cfg.Gemini.BaseURL,
		}, log)
		if err != nil {
			return nil, err
		}
		gen = g
	case config.ProviderOpenAI:
		gen = openai.New(openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.APIBaseURL,
		}, log)
	case config.ProviderAnthropic:
		gen = anthropic.NewClaudeGenerator(anthropic.Config{
			APIKey:  cfg.Anthropic.APIKey,
			Model:   cfg.Anthropic.Model,
			BaseURL: cfg.Anthropic.APIBaseURL,
		}, log)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLM.Provider)
	}

	log.Info("Generation provider ready", logger.ProviderField(gen.Name()), logger.ModelField(gen.Model()))
	return gen, nil
}
