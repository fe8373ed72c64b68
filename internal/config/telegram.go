package config

import (
	"strconv"
	"strings"
)

// TelegramConfig enables the Telegram long-polling connector.
type TelegramConfig struct {
	BotToken string `env:"TELEGRAM_BOT_TOKEN" yaml:"bot_token"`
	Debug    bool   `env:"TELEGRAM_DEBUG" yaml:"debug"`
}

// Enabled reports whether Telegram messages should be relayed.
func (c *TelegramConfig) Enabled() bool {
	return c.BotToken != ""
}

// Validate checks the BotFather token shape, <numeric bot id>:<secret>.
func (c TelegramConfig) Validate() error {
	if c.BotToken == "" {
		return nil
	}
	id, secret, ok := strings.Cut(c.BotToken, ":")
	if _, err := strconv.ParseInt(id, 10, 64); !ok || err != nil || secret == "" {
		return invalid("telegram_bot_token", "must look like <bot id>:<secret>")
	}
	return nil
}
