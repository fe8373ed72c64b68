package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	pkgconfig "github.com/lewisedginton/gemini_relay_bot/pkg/config"
	"github.com/lewisedginton/gemini_relay_bot/pkg/logger"
)

// AppConfig holds all application configuration. It is loaded once at
// startup and treated as read-only afterwards.
type AppConfig struct {
	ServiceName string `env:"SERVICE_NAME" yaml:"service_name" default:"gemini-relay-bot"`

	Logging pkgconfig.CommonConfig     `yaml:"logging"`
	Ops     pkgconfig.HTTPServerConfig `yaml:"ops"`
	Metrics pkgconfig.MetricsConfig    `yaml:"metrics"`

	Relay RelayConfig `yaml:"relay"`
	LLM   LLMConfig   `yaml:"llm"`

	Gemini    GeminiConfig    `yaml:"gemini"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`

	Discord  DiscordConfig  `yaml:"discord"`
	Telegram TelegramConfig `yaml:"telegram"`
	Slack    SlackConfig    `yaml:"slack"`
}

// Load reads the optional YAML file at path and overlays environment variables.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := pkgconfig.GetConfig(cfg, path, false); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration and returns every problem found.
func (c *AppConfig) Validate() error {
	var result error

	if err := c.Logging.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.Ops.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.Metrics.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.Relay.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.LLM.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.Telegram.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.Slack.Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	return result
}

// GetLogLevel returns the parsed logger level.
func (c *AppConfig) GetLogLevel() logger.Level {
	return logger.ParseLevel(c.Logging.LogLevel)
}

// LoggerConfig builds the logger settings for this service.
func (c *AppConfig) LoggerConfig() logger.Config {
	return logger.Config{
		Level:   c.GetLogLevel(),
		Format:  strings.ToLower(c.Logging.LogFormat),
		Service: c.ServiceName,
	}
}

// LogConfig logs the current configuration without secrets.
func (c *AppConfig) LogConfig(log logger.Logger) {
	log.Info("Application configuration loaded",
		logger.StringField("service_name", c.ServiceName),
		logger.StringField("llm_provider", c.LLM.Provider),
		logger.ModelField(c.ModelName()),
		logger.StringField("trigger", c.Relay.Trigger),
		logger.BoolField("ignore_bots", c.Relay.IgnoreBots),
		logger.BoolField("discord_configured", c.Discord.Enabled()),
		logger.BoolField("telegram_configured", c.Telegram.Enabled()),
		logger.BoolField("slack_configured", c.Slack.Enabled()),
		logger.BoolField("ops_enabled", c.Ops.Enabled),
		logger.StringField("log_level", c.Logging.LogLevel),
		logger.StringField("log_format", c.Logging.LogFormat),
	)
}

// ModelName returns the model configured for the selected provider.
func (c *AppConfig) ModelName() string {
	switch c.LLM.Normalized() {
	case ProviderOpenAI:
		return c.OpenAI.Model
	case ProviderAnthropic:
		return c.Anthropic.Model
	default:
		return c.Gemini.Model
	}
}

// HasConnector reports whether any chat platform has credentials.
func (c *AppConfig) HasConnector() bool {
	return c.Discord.Enabled() || c.Telegram.Enabled() || c.Slack.Enabled()
}

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%s: %s", field, fmt.Sprintf(format, args...))
}
