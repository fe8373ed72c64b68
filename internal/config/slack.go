package config

import "strings"

// SlackConfig enables the Slack Socket Mode connector. Both tokens are needed:
// the bot token posts replies and the app-level token opens the socket.
type SlackConfig struct {
	BotToken string `env:"SLACK_BOT_TOKEN" yaml:"bot_token"`
	AppToken string `env:"SLACK_APP_TOKEN" yaml:"app_token"`
	Debug    bool   `env:"SLACK_DEBUG" yaml:"debug"`
}

// Enabled reports whether Slack messages should be relayed.
func (c *SlackConfig) Enabled() bool {
	return c.BotToken != "" && c.AppToken != ""
}

// Validate rejects a half-configured token pair and tokens of the wrong kind.
func (c SlackConfig) Validate() error {
	if c.BotToken == "" && c.AppToken == "" {
		return nil
	}
	if c.BotToken == "" || c.AppToken == "" {
		return invalid("slack", "SLACK_BOT_TOKEN and SLACK_APP_TOKEN must be set together")
	}
	if !strings.HasPrefix(c.BotToken, "xoxb-") {
		return invalid("slack_bot_token", "must start with xoxb-")
	}
	if !strings.HasPrefix(c.AppToken, "xapp-") {
		return invalid("slack_app_token", "must start with xapp-")
	}
	return nil
}
