package config

import (
	"strings"
)

// LLM provider constants
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// LLMConfig holds generation provider selection.
type LLMConfig struct {
	// Provider is one of gemini, openai or anthropic. "claude" is accepted for anthropic.
	Provider string `env:"LLM_PROVIDER" yaml:"provider" default:"gemini"`
}

// Normalized returns the canonical provider name.
func (c LLMConfig) Normalized() string {
	p := strings.ToLower(strings.TrimSpace(c.Provider))
	if p == "claude" {
		return ProviderAnthropic
	}
	return p
}

// Validate rejects unknown providers.
func (c LLMConfig) Validate() error {
	switch c.Normalized() {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
		return nil
	default:
		return invalid("llm_provider", "must be one of [gemini, openai, anthropic], got %q", c.Provider)
	}
}
