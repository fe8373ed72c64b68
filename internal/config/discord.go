package config

// DiscordConfig holds Discord-specific configuration
type DiscordConfig struct {
	BotToken string `env:"DISCORD_BOT_TOKEN" yaml:"bot_token"`
}

// Enabled returns true if Discord is configured with a bot token
func (c *DiscordConfig) Enabled() bool {
	return c.BotToken != ""
}
