package models

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewisedginton/gemini_relay_bot/internal/config"
	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
)

func TestNew(t *testing.T) {
	log := logger.NewLogger(logger.Config{Level: logger.ErrorLevel, Output: io.Discard})

	tests := []struct {
		provider string
		wantName string
		wantErr  bool
	}{
		{provider: "gemini", wantName: "gemini"},
		{provider: "openai", wantName: "openai"},
		{provider: "anthropic", wantName: "anthropic"},
		{provider: "claude", wantName: "anthropic"},
		{provider: "llama", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := &config.AppConfig{LLM: config.LLMConfig{Provider: tt.provider}}
			gen, err := New(context.Background(), cfg, log)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, gen.Name())

			res := gen.Generate(context.Background(), "hello")
			require.False(t, res.OK())
			assert.Contains(t, res.Failure.Description, "API key is not configured")
		})
	}
}

func TestNew_LogsProviderAndModel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(logger.Config{Level: logger.InfoLevel, Output: &buf})
	cfg := &config.AppConfig{
		LLM:    config.LLMConfig{Provider: "openai"},
		OpenAI: config.OpenAIConfig{Model: "gpt-4o"},
	}

	gen, err := New(context.Background(), cfg, log)
	require.NoError(t, err)

	mg, ok := gen.(Generator)
	require.True(t, ok)
	assert.Equal(t, "gpt-4o", mg.Model())
	assert.Contains(t, buf.String(), "Generation provider ready")
	assert.Contains(t, buf.String(), `"model":"gpt-4o"`)
	assert.Contains(t, buf.String(), `"provider":"openai"`)
}
